// SPDX-License-Identifier: EPL-2.0

// Package audiomancer mixes two audio tracks into one MP3 with a crossfade.
//
// The tail of the first track and the head of the second overlap for the
// requested duration while one fades out and the other fades in. Inputs are
// detected by content, decoded in memory, converted to a common sample rate
// and channel count and encoded as constant bitrate MP3 at 320 kbps.
//
// # Supported Formats
//
// Tracks are recognised by their leading bytes, not by file name:
//   - WAV (8, 16, 24 and 32-bit integer PCM) via formats/wav
//   - AIFF and AIFC (8, 16, 24 and 32-bit) via formats/aiff
//   - Ogg Vorbis via formats/vorbis
//   - MP3 (MPEG-1, 2 and 2.5 Layer III) via formats/mp3
//
// Anything else fails with KindUnsupportedFormat.
//
// # Quick Start
//
// A Mixer with no options uses every built-in decoder, a linear fade and the
// ffmpeg encoder:
//
//	a, _ := os.Open("intro.wav")
//	b, _ := os.Open("verse.mp3")
//
//	mixer := audiomancer.NewMixer()
//	mix, err := mixer.Mix(ctx, a, b, audiomancer.DefaultCrossfade)
//	if err != nil {
//	    return err
//	}
//
//	out, _ := os.Create("mix.mp3")
//	_, err = mix.WriteTo(out)
//
// The mix lasts len(a) + len(b) - crossfade. A zero crossfade joins the
// tracks end to start.
//
// # Options
//
//	mixer := audiomancer.NewMixer(
//	    audiomancer.WithCurve(audiomancer.EqualPower{}),
//	    audiomancer.WithEncoder(mp3.ShineEncoder{}),
//	    audiomancer.WithLogger(logger),
//	)
//
// WithRegistry swaps the decoder set, for example to accept only WAV:
//
//	reg := audio.NewRegistry()
//	reg.Register(formats.WAV, wav.Decoder{})
//	mixer := audiomancer.NewMixer(audiomancer.WithRegistry(reg))
//
// # Fade Curves
//
// A Curve maps progress t in [0, 1) through the overlap to the gains of the
// outgoing and incoming track:
//   - Linear: 1-t and t
//   - EqualPower: cos and sin of t·π/2, constant loudness for unrelated material
//   - Smoothstep: an S-shaped ramp with flat ends
//
// ParseCurve accepts "linear", "equal-power" and "smoothstep".
//
// Crossfade is available on its own for clips already in memory:
//
//	mixed, err := audiomancer.Crossfade(a, b, a.FramesFor(time.Second), audiomancer.Linear{})
//
// # Output Format
//
// The mix takes the first track's sample rate when it is an MPEG-1 rate
// (32, 44.1 or 48 kHz, the rates that carry 320 kbps) and 44.1 kHz
// otherwise. It is stereo when either track has two or more channels and
// mono when both are mono.
//
// # Encoders
//
// The default encoder runs ffmpeg with libmp3lame (see formats/mp3). Use
// WithEncoder(mp3.ShineEncoder{}) to encode in-process without ffmpeg.
//
// # Errors
//
// Every failure except cancellation is an *Error carrying an ErrorKind and,
// when one track is to blame, its field name:
//
//	mix, err := mixer.Mix(ctx, a, b, d)
//	switch audiomancer.KindOf(err) {
//	case audiomancer.KindInvalidInput:
//	    // empty track, negative crossfade, crossfade longer than a track
//	case audiomancer.KindUnsupportedFormat:
//	    // no decoder recognised the track
//	case audiomancer.KindDecodeFailure:
//	    // recognised but corrupt
//	case audiomancer.KindEncodeFailure:
//	    // the MP3 encoder failed or is missing
//	}
//
// The sentinels (ErrCrossfadeTooLong, ErrEmptyTrack and so on) stay in the
// chain for errors.Is.
//
// # Concurrency
//
// A Mixer holds no per-call state. Both tracks of one call are decoded in
// parallel, and any number of calls may run at once.
//
// The cmd/audiomancer binary serves Mix over HTTP.
package audiomancer
