// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"context"
	"fmt"
	"io"

	shine "github.com/braheezy/shine-mp3/pkg/mp3"
)

// DefaultBitrate is the constant bitrate, in kbps, used when an encoder
// does not set one.
const DefaultBitrate = 320

// Encoder turns interleaved 16-bit PCM into an MP3 stream written to w.
type Encoder interface {
	Encode(ctx context.Context, w io.Writer, sampleRate, channels int, pcm []int16) error
}

func validate(sampleRate, channels int, pcm []int16) error {
	if !SupportedSampleRate(sampleRate) {
		return fmt.Errorf("%w: %d", ErrUnsupportedSampleRate, sampleRate)
	}
	if channels != 1 && channels != 2 {
		return fmt.Errorf("%w: %d", ErrUnsupportedChannels, channels)
	}
	if len(pcm)%channels != 0 {
		return ErrMisalignedPCM
	}
	return nil
}

// layer3Bitrates lists the Layer III bitrates in kbps by header index,
// for MPEG-1 and for MPEG-2/2.5.
var layer3Bitrates = [2][15]int{
	{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320},
	{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160},
}

func mpeg1(sampleRate int) bool {
	return sampleRate == 32000 || sampleRate == 44100 || sampleRate == 48000
}

// bitrateIndex returns the frame-header index of kbps at sampleRate, or -1.
func bitrateIndex(sampleRate, kbps int) int {
	table := layer3Bitrates[1]
	if mpeg1(sampleRate) {
		table = layer3Bitrates[0]
	}
	for i, b := range table[1:] {
		if b == kbps {
			return i + 1
		}
	}
	return -1
}

// BitrateSupported reports whether a Layer III stream at sampleRate can be
// written at kbps. 320 kbps needs an MPEG-1 rate (32, 44.1 or 48 kHz).
func BitrateSupported(sampleRate, kbps int) bool {
	return SupportedSampleRate(sampleRate) && bitrateIndex(sampleRate, kbps) > 0
}

// ShineEncoder encodes in-process with the shine fixed-point encoder at a
// constant bitrate.
type ShineEncoder struct {
	// Bitrate in kbps; DefaultBitrate when zero.
	Bitrate int
}

func (e ShineEncoder) bitrate() int {
	if e.Bitrate <= 0 {
		return DefaultBitrate
	}
	return e.Bitrate
}

// newShine builds a shine encoder and moves it off the library's fixed
// 128 kbps. Frame sizes follow from the slot maths in the MPEG header.
func (e ShineEncoder) newShine(sampleRate, channels int) (*shine.Encoder, error) {
	kbps := e.bitrate()
	idx := bitrateIndex(sampleRate, kbps)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %d kbps at %d Hz", ErrUnsupportedBitrate, kbps, sampleRate)
	}

	enc := shine.NewEncoder(sampleRate, channels)
	slots := float64(enc.Mpeg.GranulesPerFrame*shine.GRANULE_SIZE) / float64(sampleRate) *
		float64(kbps*1000) / float64(enc.Mpeg.BitsPerSlot)

	enc.Mpeg.Bitrate = int64(kbps)
	enc.Mpeg.BitrateIndex = int64(idx)
	enc.Mpeg.WholeSlotsPerFrame = int64(slots)
	enc.Mpeg.FracSlotsPerFrame = slots - float64(enc.Mpeg.WholeSlotsPerFrame)
	enc.Mpeg.Slot_lag = -enc.Mpeg.FracSlotsPerFrame
	enc.Mpeg.Padding = 0

	return enc, nil
}

func (e ShineEncoder) Encode(ctx context.Context, w io.Writer, sampleRate, channels int, pcm []int16) error {
	if err := validate(sampleRate, channels, pcm); err != nil {
		return err
	}

	enc, err := e.newShine(sampleRate, channels)
	if err != nil {
		return err
	}

	// Write is fed exactly one MP3 frame per call; the last frame is padded
	// with silence.
	frameLen := int(enc.Mpeg.GranulesPerFrame*shine.GRANULE_SIZE) * channels
	frame := make([]int16, frameLen)

	// Buffered so a failed encode never leaves a partial stream in w.
	out := new(bytes.Buffer)
	for off := 0; off < len(pcm); off += frameLen {
		if err := ctx.Err(); err != nil {
			return err
		}

		n := copy(frame, pcm[off:])
		clear(frame[n:])
		if err := enc.Write(out, frame); err != nil {
			return fmt.Errorf("%w: %v", ErrEncoderFailed, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := out.WriteTo(w); err != nil {
		return fmt.Errorf("writing mp3: %w", err)
	}

	return nil
}
