// SPDX-License-Identifier: EPL-2.0

// Package wav decodes RIFF/WAVE files on top of github.com/go-audio/wav and
// writes 16-bit PCM WAV files.
//
// # Supported Files
//
//   - integer PCM at 8 (unsigned), 16, 24 and 32 bits
//   - WAVE_FORMAT_EXTENSIBLE headers wrapping integer PCM
//   - any channel count and sample rate
//
// Unknown chunks between fmt and data are skipped.
//
// # Decoding
//
//	src, err := wav.Decoder{}.Decode(file)
//	if errors.Is(err, wav.ErrNotWavFile) {
//	    // not RIFF/WAVE
//	}
//
//	buf := make([]float32, src.BufSize())
//	n, err := src.ReadSamples(buf)
//
// Samples are delivered as interleaved float32 in [-1, 1].
//
// # Writing
//
// WritePCM16 produces the canonical 44-byte header layout followed by the
// samples. Sizes are written up front, so w does not need to seek:
//
//	err := wav.WritePCM16(out, 44100, 2, interleaved)
package wav
