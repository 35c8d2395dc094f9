// SPDX-License-Identifier: EPL-2.0

// Package audio holds the PCM pipeline shared by every container decoder.
//
// This package contains the building blocks the mixer is assembled from:
//   - Source interface for streamed PCM
//   - Clip, a Source drained into memory
//   - ChannelMixer for channel conversion
//   - Resampler for sample rate conversion
//   - Registry for decoder lookup and content sniffing
//
// # Source Interface
//
// Every decoder and converter implements Source:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// ReadSamples fills dst with interleaved float32 samples and returns the
// number of values written, not frames. Converters only hand out whole
// frames, so len(dst) should be a multiple of Channels(). Sources chain:
//
//	src, _ := wav.Decoder{}.Decode(file)
//	conformed := audio.Conform(src, 44100, 2) // ChannelMixer, then Resampler
//	clip, err := audio.ReadAll(conformed)
//
// # Clips
//
// A Clip keeps the sample rate, channel count and interleaved samples of a
// whole stream:
//
//	clip, err := audio.ReadAll(src)
//	fmt.Println(clip.Frames(), clip.Duration())
//
//	// frames covering 250ms at the clip's rate
//	n := clip.FramesFor(250 * time.Millisecond)
//
// Clip.Source turns a clip back into a stream, and ConformClip converts one
// in place of the Conform/ReadAll pair:
//
//	stereo44k, err := audio.ConformClip(clip, 44100, 2)
//
// # Channel Conversion
//
// ChannelMixer averages when reducing channels and duplicates when adding
// them:
//
//	stereo := audio.NewChannelMixer(mono, 2)
//	mono := audio.NewMonoMixer(surround)
//
// # Resampling
//
// Resampler uses Catmull-Rom cubic interpolation over a four frame window.
// When downsampling, a one-pole low-pass runs on the input first:
//
//	r := audio.NewResampler(src, 16000)
//	buf := make([]float32, r.BufSize())
//	n, err := r.ReadSamples(buf)
//
// Once the input is drained the resampler keeps returning 0, io.EOF.
//
// # Format Registry
//
// Registry maps format names to decoders:
//
//	reg := audio.NewRegistry()
//	reg.Register("wav", wav.Decoder{})
//	dec, ok := reg.Get("wav")
//
// Detect picks a decoder from the first HeaderSize bytes of a stream using
// each decoder's Sniffer, in registration order:
//
//	name, dec, err := reg.Detect(data[:min(len(data), audio.HeaderSize)])
//	switch {
//	case errors.Is(err, audio.ErrNoAudio):
//	    // empty input
//	case errors.Is(err, audio.ErrUnknownFormat):
//	    // not a container any registered decoder recognises
//	}
//
// A Registry is safe for concurrent use.
//
// # Sample Format
//
// Samples are float32 in [-1.0, 1.0], with 0.0 as silence. Decoders scale
// integer PCM by the full range of its bit depth.
//
// # Error Handling
//
// Sources return io.EOF when no more data is available, possibly together
// with the last values:
//
//	for {
//	    n, err := src.ReadSamples(buf)
//	    process(buf[:n])
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
package audio
