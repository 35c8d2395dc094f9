// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/audiomancer/utils"
)

// Resampler streams from src to target sample rate using cubic interpolation.
// Works on interleaved samples; preserves channel count.
// A one-pole low-pass filter runs on the input when downsampling.
type Resampler struct {
	src      Source
	dstRate  int
	step     float64 // source frames advanced per output frame
	channels int

	// window holds 4 consecutive source frames: t-1, t0, t+1, t+2.
	window [4][]float32
	filled [4]bool
	primed bool

	// Fractional position between window[1] and window[2].
	pos float64

	frame []float32
	eof   bool // source exhausted
	done  bool // window can no longer advance

	lowpass     bool
	alpha       float32
	filterState []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	step := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:         src,
		dstRate:     dstRate,
		step:        step,
		channels:    channels,
		frame:       make([]float32, channels),
		lowpass:     step > 1.0,
		alpha:       0.5,
		filterState: make([]float32, channels),
	}

	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	err := r.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// readFrame reads one source frame into dst, applying the anti-alias filter.
// ok is false when the source had no more frames.
func (r *Resampler) readFrame(dst []float32) (ok bool, err error) {
	n, err := r.src.ReadSamples(r.frame)
	if n >= r.channels {
		copy(dst, r.frame)
		if r.lowpass {
			for c := range r.channels {
				dst[c] = r.alpha*dst[c] + (1-r.alpha)*r.filterState[c]
				r.filterState[c] = dst[c]
			}
		}
		ok = true
	}

	if err == io.EOF {
		r.eof = true
		return ok, nil
	}
	if err != nil {
		return ok, fmt.Errorf("%w", err)
	}
	return ok, nil
}

// prime fills the window from the start of the source. Missing trailing
// frames are copies of the last frame read.
func (r *Resampler) prime() error {
	r.primed = true

	for i := range r.window {
		if r.eof {
			break
		}
		if i == 0 && r.lowpass {
			// Seed the filter with the first frame to avoid a fade-in transient.
			n, err := r.src.ReadSamples(r.frame)
			if n >= r.channels {
				copy(r.filterState, r.frame)
				copy(r.window[0], r.frame)
				r.filled[0] = true
			}
			if err == io.EOF {
				r.eof = true
			} else if err != nil {
				return fmt.Errorf("%w", err)
			}
			continue
		}

		ok, err := r.readFrame(r.window[i])
		if err != nil {
			return err
		}
		r.filled[i] = ok
	}

	if !r.filled[0] {
		return io.EOF
	}

	for i := 1; i < len(r.window); i++ {
		if !r.filled[i] {
			copy(r.window[i], r.window[i-1])
			r.filled[i] = true
		}
	}

	return nil
}

// advance shifts the window by one source frame.
func (r *Resampler) advance() error {
	if r.eof {
		return io.EOF
	}

	copy(r.window[0], r.window[1])
	copy(r.window[1], r.window[2])
	copy(r.window[2], r.window[3])
	r.filled[0], r.filled[1], r.filled[2] = r.filled[1], r.filled[2], r.filled[3]

	ok, err := r.readFrame(r.window[3])
	if err != nil {
		return err
	}
	r.filled[3] = ok

	if !ok && r.eof {
		return io.EOF
	}
	return nil
}

// ReadSamples produces dst samples at the destination rate.
// dst length should be a multiple of r.channels.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if r.done {
		return 0, io.EOF
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			if err == io.EOF {
				r.done = true
			}
			return 0, err
		}
	}

	written := 0
	want := len(dst) / r.channels

	for written < want {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.advance(); err != nil {
				if err == io.EOF {
					r.done = true
					return written * r.channels, io.EOF
				}
				return written * r.channels, err
			}
		}

		x := float32(r.pos)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range out {
			y0 := r.window[0][c]
			if !r.filled[0] {
				y0 = r.window[1][c]
			}
			y3 := r.window[3][c]
			if !r.filled[3] {
				y3 = r.window[2][c]
			}
			out[c] = utils.CubicInterpolate(y0, r.window[1][c], r.window[2][c], y3, x)
		}

		written++
		r.pos += r.step
	}

	return written * r.channels, nil
}
