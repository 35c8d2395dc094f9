package aiff

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audiomancer/audio"
	"github.com/ik5/audiomancer/utils"
)

// pcmReader is the part of aiff.Decoder the source uses.
type pcmReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type source struct {
	pcm        pcmReader
	sampleRate int
	channels   int
	bitDepth   int
	scratch    goaudio.IntBuffer
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }

func (s *source) BufSize() int {
	return max(4096, cap(s.scratch.Data))
}

// ReadSamples fills dst with big-endian PCM scaled to [-1, 1]. A short read
// marks the end of the sound data.
func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if cap(s.scratch.Data) < len(dst) {
		s.scratch.Data = make([]int, len(dst))
		s.scratch.Format = s.pcm.Format()
	}
	s.scratch.Data = s.scratch.Data[:len(dst)]

	n, err := s.pcm.PCMBuffer(&s.scratch)
	switch {
	case n == 0 && (err == nil || err == io.EOF):
		return 0, io.EOF
	case err != nil && err != io.EOF:
		err = fmt.Errorf("reading aiff pcm: %w", err)
	case n < len(dst):
		err = io.EOF
	}

	for i, v := range s.scratch.Data[:n] {
		dst[i] = s.normalize(v)
	}
	return n, err
}

// AIFF 8-bit samples are signed, unlike WAV.
func (s *source) normalize(v int) float32 {
	if s.bitDepth == 8 {
		return float32(v) / 128
	}
	return utils.IntToFloat32(v, s.bitDepth)
}

type Decoder struct{}

// Sniff matches FORM....AIFF and FORM....AIFC.
func (Decoder) Sniff(header []byte) bool {
	if len(header) < 12 || string(header[:4]) != "FORM" {
		return false
	}
	switch string(header[8:12]) {
	case "AIFF", "AIFC":
		return true
	}
	return false
}

// Decode reads an AIFF or uncompressed AIFC stream. go-audio/aiff needs to
// seek, so other readers are buffered in memory first.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()

	depth := int(dec.BitDepth)
	switch depth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, depth)
	}

	format := dec.Format()
	if format == nil || format.NumChannels < 1 || format.SampleRate <= 0 {
		return nil, ErrUnsupportedLayout
	}

	return &source{
		pcm:        dec,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		bitDepth:   depth,
	}, nil
}
