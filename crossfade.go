// SPDX-License-Identifier: EPL-2.0

package audiomancer

import (
	"fmt"

	"github.com/ik5/audiomancer/audio"
)

// Crossfade appends b to a, overlapping the last frames of a with the first
// frames of b. The result has a.Frames() + b.Frames() - frames frames.
// Both clips must share sample rate and channel count, and frames may not
// exceed either clip. Mixed samples are clipped to [-1, 1].
func Crossfade(a, b audio.Clip, frames int, curve Curve) (audio.Clip, error) {
	if a.SampleRate != b.SampleRate || a.Channels != b.Channels || a.Channels <= 0 {
		return audio.Clip{}, fmt.Errorf("%w: %d Hz/%d ch vs %d Hz/%d ch",
			ErrFormatMismatch, a.SampleRate, a.Channels, b.SampleRate, b.Channels)
	}
	if frames < 0 {
		return audio.Clip{}, ErrNegativeCrossfade
	}
	if frames > a.Frames() || frames > b.Frames() {
		return audio.Clip{}, fmt.Errorf("%w: %d frames, tracks have %d and %d",
			ErrCrossfadeTooLong, frames, a.Frames(), b.Frames())
	}
	if curve == nil {
		curve = Linear{}
	}

	ch := a.Channels
	aSamples := a.Samples[:a.Frames()*ch]
	bSamples := b.Samples[:b.Frames()*ch]
	overlap := frames * ch

	out := make([]float32, 0, len(aSamples)+len(bSamples)-overlap)
	out = append(out, aSamples[:len(aSamples)-overlap]...)

	tail := aSamples[len(aSamples)-overlap:]
	for f := range frames {
		gOut, gIn := curve.Gains(float64(f) / float64(frames))
		for c := range ch {
			i := f*ch + c
			out = append(out, clip(float32(gOut)*tail[i]+float32(gIn)*bSamples[i]))
		}
	}

	out = append(out, bSamples[overlap:]...)

	return audio.Clip{SampleRate: a.SampleRate, Channels: ch, Samples: out}, nil
}

func clip(x float32) float32 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}
