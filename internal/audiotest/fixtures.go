// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"context"
	"math"
	"time"

	"github.com/ik5/audiomancer/formats/mp3"
	"github.com/ik5/audiomancer/formats/wav"
)

// Tone describes a sine fixture.
type Tone struct {
	SampleRate int
	Channels   int
	Frequency  float64
	Amplitude  float64 // 0..1, 0.5 when zero
	Duration   time.Duration
}

// PCM renders the tone as interleaved int16.
func (t Tone) PCM() []int16 {
	amp := t.Amplitude
	if amp == 0 {
		amp = 0.5
	}

	frames := int(int64(t.Duration) * int64(t.SampleRate) / int64(time.Second))
	out := make([]int16, frames*t.Channels)
	for i := range frames {
		v := int16(amp * math.MaxInt16 * math.Sin(2*math.Pi*t.Frequency*float64(i)/float64(t.SampleRate)))
		for c := range t.Channels {
			out[i*t.Channels+c] = v
		}
	}

	return out
}

// WAV encodes the tone as a 16-bit PCM WAV file.
func (t Tone) WAV() ([]byte, error) {
	out := new(bytes.Buffer)
	if err := wav.WritePCM16(out, t.SampleRate, t.Channels, t.PCM()); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// MP3 encodes the tone in-process with the shine encoder.
func (t Tone) MP3() ([]byte, error) {
	out := new(bytes.Buffer)
	if err := (mp3.ShineEncoder{}).Encode(context.Background(), out, t.SampleRate, t.Channels, t.PCM()); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
