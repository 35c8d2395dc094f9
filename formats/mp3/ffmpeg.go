// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

const defaultFFmpegPath = "ffmpeg"

// FFmpegEncoder pipes raw PCM through an ffmpeg binary built with
// libmp3lame and produces constant-bitrate MP3.
type FFmpegEncoder struct {
	// Path to the binary; "ffmpeg" resolved through PATH when empty.
	Path string
	// Bitrate in kbps; DefaultBitrate when zero.
	Bitrate int
}

func (e FFmpegEncoder) path() string {
	if e.Path == "" {
		return defaultFFmpegPath
	}
	return e.Path
}

func (e FFmpegEncoder) bitrate() int {
	if e.Bitrate <= 0 {
		return DefaultBitrate
	}
	return e.Bitrate
}

func (e FFmpegEncoder) args(sampleRate, channels int) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-f", "s16le",
		"-ar", strconv.Itoa(sampleRate),
		"-ac", strconv.Itoa(channels),
		"-i", "pipe:0",
		"-vn",
		"-codec:a", "libmp3lame",
		"-b:a", strconv.Itoa(e.bitrate()) + "k",
		"-f", "mp3",
		"pipe:1",
	}
}

func (e FFmpegEncoder) Encode(ctx context.Context, w io.Writer, sampleRate, channels int, pcm []int16) error {
	if err := validate(sampleRate, channels, pcm); err != nil {
		return err
	}

	raw := make([]byte, len(pcm)*2)
	for i, s := range pcm {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(s))
	}

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, e.path(), e.args(sampleRate, channels)...)
	cmd.Stdin = bytes.NewReader(raw)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrEncoderUnavailable, e.path())
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("%w: %s", ErrEncoderFailed, msg)
	}

	if stdout.Len() == 0 {
		return fmt.Errorf("%w: empty output", ErrEncoderFailed)
	}

	if _, err := stdout.WriteTo(w); err != nil {
		return fmt.Errorf("writing mp3: %w", err)
	}

	return nil
}
