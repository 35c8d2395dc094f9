// SPDX-License-Identifier: EPL-2.0

package audio

// Conform returns a source producing src at the given sample rate and channel
// count. Channels are converted before resampling. When src already matches,
// it is returned unchanged.
func Conform(src Source, sampleRate, channels int) Source {
	out := src
	if out.Channels() != channels {
		out = NewChannelMixer(out, channels)
	}
	if out.SampleRate() != sampleRate {
		out = NewResampler(out, sampleRate)
	}
	return out
}

// ConformClip is Conform for an in-memory clip.
func ConformClip(c Clip, sampleRate, channels int) (Clip, error) {
	if c.SampleRate == sampleRate && c.Channels == channels {
		return c, nil
	}
	return ReadAll(Conform(c.Source(), sampleRate, channels))
}
