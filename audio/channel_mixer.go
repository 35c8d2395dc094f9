// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// ChannelMixer converts the channel count of a source.
//
//   - N -> 1 averages all channels
//   - 1 -> N copies the mono signal to every channel
//   - N -> M (N > M > 1) averages source channel i into output channel i % M
//   - M -> N (1 < M < N) repeats output channel i from source channel i % M
type ChannelMixer struct {
	src      Source
	channels int
	tmp      []float32
}

func NewChannelMixer(src Source, channels int) *ChannelMixer {
	return &ChannelMixer{
		src:      src,
		channels: channels,
		tmp:      make([]float32, 4096),
	}
}

// NewMonoMixer downmixes src to a single channel.
func NewMonoMixer(src Source) *ChannelMixer {
	return NewChannelMixer(src, 1)
}

func (m *ChannelMixer) SampleRate() int { return m.src.SampleRate() }
func (m *ChannelMixer) Channels() int   { return m.channels }
func (m *ChannelMixer) BufSize() int    { return m.src.BufSize() }
func (m *ChannelMixer) Close() error {
	err := m.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (m *ChannelMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if len(dst)%m.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	in := m.src.Channels()
	if in == m.channels {
		return m.src.ReadSamples(dst)
	}

	frames := len(dst) / m.channels
	needed := frames * in

	// Grow but never shrink tmp.
	if cap(m.tmp) < needed {
		m.tmp = make([]float32, max(needed, 8192))
	}
	m.tmp = m.tmp[:needed]

	n, err := m.src.ReadSamples(m.tmp)
	if n == 0 {
		return 0, err
	}
	frames = n / in

	switch {
	case m.channels == 1:
		m.downmixMono(dst, frames, in)
	case in == 1:
		for f := range frames {
			v := m.tmp[f]
			out := dst[f*m.channels : (f+1)*m.channels]
			for c := range out {
				out[c] = v
			}
		}
	case in > m.channels:
		m.fold(dst, frames, in)
	default:
		for f := range frames {
			src := m.tmp[f*in : (f+1)*in]
			out := dst[f*m.channels : (f+1)*m.channels]
			for c := range out {
				out[c] = src[c%in]
			}
		}
	}

	return frames * m.channels, err
}

func (m *ChannelMixer) downmixMono(dst []float32, frames, in int) {
	switch in {
	case 2:
		for f := range frames {
			idx := f << 1
			dst[f] = (m.tmp[idx] + m.tmp[idx+1]) * 0.5
		}
	default:
		inv := float32(1.0) / float32(in)
		for f := range frames {
			sum := float32(0)
			base := f * in
			for c := range in {
				sum += m.tmp[base+c]
			}
			dst[f] = sum * inv
		}
	}
}

// fold averages every source channel i into output channel i % m.channels.
func (m *ChannelMixer) fold(dst []float32, frames, in int) {
	counts := make([]float32, m.channels)
	for i := range in {
		counts[i%m.channels]++
	}

	for f := range frames {
		src := m.tmp[f*in : (f+1)*in]
		out := dst[f*m.channels : (f+1)*m.channels]
		clear(out)
		for i, v := range src {
			out[i%m.channels] += v
		}
		for c := range out {
			out[c] /= counts[c]
		}
	}
}
