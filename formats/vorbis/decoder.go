package vorbis

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audiomancer/audio"
	"github.com/jfreymuth/oggvorbis"
)

var ErrNotVorbisStream = errors.New("not an Ogg Vorbis stream")

// oggReader is the part of oggvorbis.Reader the source uses.
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type source struct {
	dec        oggReader
	sampleRate int
	channels   int
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return 4096 * s.channels }

func (s *source) ReadSamples(dst []float32) (int, error) {
	// Read counts interleaved values and never splits a frame.
	dst = dst[:len(dst)/s.channels*s.channels]
	if len(dst) == 0 {
		return 0, nil
	}

	n, err := s.dec.Read(dst)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("decoding vorbis: %w", err)
	}

	return n, err
}

type Decoder struct{}

const (
	// pageHeaderLen is the fixed part of an Ogg page header; the segment
	// count is its last byte.
	pageHeaderLen = 27
	// identification is the start of a Vorbis identification packet.
	identification = "\x01vorbis"
)

// Sniff matches an Ogg page whose first packet is a Vorbis identification
// header. Ogg streams of other codecs (Opus, FLAC) do not match.
func (Decoder) Sniff(header []byte) bool {
	if len(header) < pageHeaderLen || !bytes.Equal(header[:4], []byte("OggS")) {
		return false
	}

	start := pageHeaderLen + int(header[pageHeaderLen-1])
	if start > len(header) {
		return false
	}
	return bytes.HasPrefix(header[start:], []byte(identification))
}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotVorbisStream, err)
	}

	if dec.Channels() < 1 || dec.SampleRate() <= 0 {
		return nil, ErrNotVorbisStream
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
	}, nil
}
