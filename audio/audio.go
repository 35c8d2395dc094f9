// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"sync"
)

// HeaderSize is the number of leading bytes Registry.Detect needs to tell
// every registered container apart. It covers an Ogg page header with a
// full segment table and the start of the first packet.
const HeaderSize = 512

type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Sniffer reports whether header (the first HeaderSize bytes of a stream, or
// fewer for short streams) looks like the decoder's container.
type Sniffer interface {
	Sniff(header []byte) bool
}

// Registry for decoders by format key (e.g., "wav", "mp3", "ogg vorbis").
// Detect tries formats in registration order.
type Registry struct {
	codecs map[string]Decoder
	order  []string

	mtx *sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
		mtx:    &sync.RWMutex{},
	}
}

func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if _, exists := r.codecs[format]; !exists {
		r.order = append(r.order, format)
	}
	r.codecs[format] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	d, ok := r.codecs[format]
	return d, ok
}

// Formats lists registered format keys in registration order.
func (r *Registry) Formats() []string {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	return append([]string(nil), r.order...)
}

// Detect returns the first registered decoder whose Sniffer accepts header.
// Decoders that do not implement Sniffer are never chosen.
func (r *Registry) Detect(header []byte) (string, Decoder, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	if len(header) == 0 {
		return "", nil, ErrNoAudio
	}

	for _, format := range r.order {
		s, ok := r.codecs[format].(Sniffer)
		if ok && s.Sniff(header) {
			return format, r.codecs[format], nil
		}
	}

	return "", nil, ErrUnknownFormat
}
