// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams with github.com/jfreymuth/oggvorbis.
//
// # Decoding
//
// The decoder streams directly from the reader; no seeking is needed:
//
//	src, err := vorbis.Decoder{}.Decode(file)
//	if errors.Is(err, vorbis.ErrNotVorbisStream) {
//	    // not Ogg, or an Ogg page without Vorbis headers
//	}
//	defer src.Close()
//
// Samples come out interleaved in the stream's own channel order, as float32
// in [-1, 1]. ReadSamples never splits a frame: a dst shorter than one frame
// returns 0, nil.
//
// # Detection
//
// Sniff accepts an Ogg page whose first packet is a Vorbis identification
// header ("\x01vorbis"). Ogg files carrying Opus or FLAC are not matched,
// so a registry reports them as an unknown format instead of a failed
// decode:
//
//	ok := vorbis.Decoder{}.Sniff(header) // header: at least the first page
package vorbis
