// SPDX-License-Identifier: EPL-2.0

// Package formats wires the container decoders into an audio.Registry.
package formats

import (
	"github.com/ik5/audiomancer/audio"
	"github.com/ik5/audiomancer/formats/aiff"
	"github.com/ik5/audiomancer/formats/mp3"
	"github.com/ik5/audiomancer/formats/vorbis"
	"github.com/ik5/audiomancer/formats/wav"
)

// Format names as reported by audio.Registry.Detect.
const (
	WAV    = "wav"
	AIFF   = "aiff"
	Vorbis = "vorbis"
	MP3    = "mp3"
)

// NewRegistry returns a registry holding every built-in decoder. MP3 is
// registered last because its frame-sync sniff is the loosest.
func NewRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register(WAV, wav.Decoder{})
	reg.Register(AIFF, aiff.Decoder{})
	reg.Register(Vorbis, vorbis.Decoder{})
	reg.Register(MP3, mp3.Decoder{})
	return reg
}
