// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 with github.com/hajimehoshi/go-mp3 and encodes it
// either in-process (ShineEncoder) or through an ffmpeg/libmp3lame
// subprocess (FFmpegEncoder).
//
// # Decoding
//
//	src, err := mp3.Decoder{}.Decode(file)
//	if errors.Is(err, mp3.ErrNotMP3Stream) {
//	    // no decodable frame
//	}
//
// Decoded sources are always stereo, since go-mp3 duplicates mono streams.
// Sniff accepts a leading ID3v2 tag or a valid Layer III frame header.
//
// # Encoding
//
// Both encoders accept interleaved int16 PCM at one of the MPEG sampling
// rates (see SupportedSampleRate) with one or two channels, and write
// nothing to w unless encoding succeeded:
//
//	err := mp3.FFmpegEncoder{Bitrate: 320}.Encode(ctx, out, 44100, 2, pcm)
//	if errors.Is(err, mp3.ErrEncoderUnavailable) {
//	    // ffmpeg is not installed
//	}
//
// ShineEncoder needs no external binary:
//
//	err := mp3.ShineEncoder{}.Encode(ctx, out, 48000, 1, pcm)
//
// # Bitrates
//
// The encoders write constant bitrate streams at DefaultBitrate (320 kbps)
// unless told otherwise. Layer III only offers 320 kbps at the MPEG-1 rates
// (32, 44.1 and 48 kHz); the lower rates top out at 160 kbps.
// BitrateSupported reports whether a combination can be written, and
// ShineEncoder fails with ErrUnsupportedBitrate when it cannot:
//
//	mp3.BitrateSupported(44100, 320) // true
//	mp3.BitrateSupported(22050, 320) // false
package mp3
