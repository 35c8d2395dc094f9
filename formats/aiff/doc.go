// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF and AIFC files using github.com/go-audio/aiff.
//
// # Supported Files
//
//   - 8, 16, 24 and 32-bit integer PCM (AIFF samples are signed at every depth)
//   - any channel count and sample rate
//   - FORM/AIFF and FORM/AIFC containers
//
// # Decoding
//
//	src, err := aiff.Decoder{}.Decode(file)
//	if errors.Is(err, aiff.ErrNotAiffFile) {
//	    // not FORM/AIFF, or truncated before the sound data
//	}
//	clip, err := audio.ReadAll(src)
//
// The returned audio.Source yields interleaved float32 samples in [-1, 1].
// Inputs that are not io.ReadSeekers are buffered in memory first, since the
// underlying parser seeks between chunks.
//
// # Detection
//
// Sniff matches the FORM header with an AIFF or AIFC form type. Other IFF
// forms such as 8SVX are not matched.
package aiff
