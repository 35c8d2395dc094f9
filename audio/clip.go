// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"time"
)

// maxEmptyReads bounds how many consecutive (0, nil) reads ReadAll tolerates
// before giving up on a source.
const maxEmptyReads = 100

// Clip is a fully decoded stretch of interleaved PCM held in memory.
type Clip struct {
	SampleRate int
	Channels   int
	Samples    []float32
}

// Frames is the number of sample frames (samples per channel).
func (c Clip) Frames() int {
	if c.Channels <= 0 {
		return 0
	}
	return len(c.Samples) / c.Channels
}

// Duration of the clip at its own sample rate.
func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.Frames()) * time.Second / time.Duration(c.SampleRate)
}

// FramesFor converts a duration to a whole number of frames at the clip's
// sample rate, rounding down.
func (c Clip) FramesFor(d time.Duration) int {
	if d <= 0 || c.SampleRate <= 0 {
		return 0
	}
	return int(int64(d) * int64(c.SampleRate) / int64(time.Second))
}

// Source streams the clip through the Source interface, so it can feed a
// Resampler or ChannelMixer.
func (c Clip) Source() Source {
	return &clipSource{clip: c}
}

// ReadAll drains src into a Clip. The source is not closed.
func ReadAll(src Source) (Clip, error) {
	channels := src.Channels()
	rate := src.SampleRate()
	if channels <= 0 || rate <= 0 {
		return Clip{}, ErrInvalidFormat
	}

	chunk := src.BufSize()
	if chunk < 1024 {
		chunk = 1024
	}
	chunk -= chunk % channels
	buf := make([]float32, chunk)

	clip := Clip{SampleRate: rate, Channels: channels}
	empty := 0
	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			clip.Samples = append(clip.Samples, buf[:n]...)
			empty = 0
		} else if err == nil {
			empty++
			if empty >= maxEmptyReads {
				return Clip{}, io.ErrNoProgress
			}
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return Clip{}, fmt.Errorf("reading samples: %w", err)
		}
	}

	// Drop a trailing partial frame.
	clip.Samples = clip.Samples[:clip.Frames()*channels]
	if len(clip.Samples) == 0 {
		return Clip{}, ErrNoAudio
	}

	return clip, nil
}

type clipSource struct {
	clip Clip
	pos  int
}

func (s *clipSource) SampleRate() int { return s.clip.SampleRate }
func (s *clipSource) Channels() int   { return s.clip.Channels }
func (s *clipSource) BufSize() int    { return 4096 }
func (s *clipSource) Close() error    { return nil }

func (s *clipSource) ReadSamples(dst []float32) (int, error) {
	if s.pos >= len(s.clip.Samples) {
		return 0, io.EOF
	}

	n := copy(dst, s.clip.Samples[s.pos:])
	s.pos += n
	if s.pos >= len(s.clip.Samples) {
		return n, io.EOF
	}
	return n, nil
}
