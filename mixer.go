// SPDX-License-Identifier: EPL-2.0

package audiomancer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/apex/log"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/audiomancer/audio"
	"github.com/ik5/audiomancer/formats"
	"github.com/ik5/audiomancer/formats/mp3"
	"github.com/ik5/audiomancer/utils"
)

const (
	// DefaultCrossfade is used when a request does not name a duration.
	DefaultCrossfade = 3 * time.Second
	// DefaultBitrate of the encoded mix, in kbps.
	DefaultBitrate = mp3.DefaultBitrate
	// fallbackSampleRate replaces a first-track rate that cannot carry
	// DefaultBitrate.
	fallbackSampleRate = 44100
	maxOutputChannels  = 2
)

// Mixer decodes two tracks, crossfades them and encodes the result as MP3.
// A Mixer holds no per-call state and is safe for concurrent use.
type Mixer struct {
	registry *audio.Registry
	encoder  mp3.Encoder
	curve    Curve
	logger   log.Interface
}

type Option func(*Mixer)

// WithRegistry replaces the decoder registry used for format detection.
func WithRegistry(r *audio.Registry) Option {
	return func(m *Mixer) { m.registry = r }
}

func WithEncoder(e mp3.Encoder) Option {
	return func(m *Mixer) { m.encoder = e }
}

func WithCurve(c Curve) Option {
	return func(m *Mixer) { m.curve = c }
}

// WithLogger sets the logger for per-track debug output. Mix also honours a
// logger stored in its context with log.NewContext.
func WithLogger(l log.Interface) Option {
	return func(m *Mixer) { m.logger = l }
}

func NewMixer(opts ...Option) *Mixer {
	m := &Mixer{
		registry: formats.NewRegistry(),
		encoder:  mp3.FFmpegEncoder{Bitrate: DefaultBitrate},
		curve:    Linear{},
		logger:   log.Log,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Mix reads both tracks to the end, crossfades the tail of trackA into the
// head of trackB over the given duration and returns the encoded MP3.
// Failures are *Error values; context cancellation is returned as is.
func (m *Mixer) Mix(ctx context.Context, trackA, trackB io.Reader, crossfade time.Duration) (*bytes.Reader, error) {
	if crossfade < 0 {
		return nil, newError(KindInvalidInput, "", fmt.Errorf("%w: %v", ErrNegativeCrossfade, crossfade))
	}

	logger := m.logger
	if l := log.FromContext(ctx); l != log.Log {
		logger = l
	}

	var a, b audio.Clip

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		a, err = m.load(gctx, logger, TrackA, trackA)
		return err
	})
	g.Go(func() (err error) {
		b, err = m.load(gctx, logger, TrackB, trackB)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rate := a.SampleRate
	if !mp3.BitrateSupported(rate, DefaultBitrate) {
		rate = fallbackSampleRate
	}
	channels := min(maxOutputChannels, max(a.Channels, b.Channels))

	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		a, err = conform(gctx, TrackA, a, rate, channels)
		return err
	})
	g.Go(func() (err error) {
		b, err = conform(gctx, TrackB, b, rate, channels)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	frames := a.FramesFor(crossfade)
	mixed, err := Crossfade(a, b, frames, m.curve)
	if err != nil {
		return nil, newError(KindInvalidInput, "", fmt.Errorf("%w (requested %v, tracks are %v and %v)",
			err, crossfade, a.Duration().Round(time.Millisecond), b.Duration().Round(time.Millisecond)))
	}

	logger.WithFields(log.Fields{
		"sample_rate":  rate,
		"channels":     channels,
		"crossfade_ms": crossfade.Milliseconds(),
		"duration_ms":  mixed.Duration().Milliseconds(),
	}).Debug("tracks mixed")

	pcm := utils.Float32sToInt16s(nil, mixed.Samples)

	out := new(bytes.Buffer)
	if err := m.encoder.Encode(ctx, out, rate, channels, pcm); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, newError(KindEncodeFailure, "", err)
	}

	return bytes.NewReader(out.Bytes()), nil
}

// load reads, detects and decodes one track into memory.
func (m *Mixer) load(ctx context.Context, logger log.Interface, track string, r io.Reader) (audio.Clip, error) {
	if r == nil {
		return audio.Clip{}, newError(KindInvalidInput, track, ErrEmptyTrack)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return audio.Clip{}, newError(KindInvalidInput, track, fmt.Errorf("reading upload: %w", err))
	}
	if len(data) == 0 {
		return audio.Clip{}, newError(KindInvalidInput, track, ErrEmptyTrack)
	}
	if err := ctx.Err(); err != nil {
		return audio.Clip{}, err
	}

	format, dec, err := m.registry.Detect(data[:min(len(data), audio.HeaderSize)])
	if err != nil {
		return audio.Clip{}, newError(KindUnsupportedFormat, track, err)
	}

	src, err := dec.Decode(bytes.NewReader(data))
	if err != nil {
		return audio.Clip{}, newError(KindDecodeFailure, track, fmt.Errorf("%s: %w", format, err))
	}
	defer src.Close()

	clip, err := audio.ReadAll(src)
	if err != nil {
		return audio.Clip{}, newError(KindDecodeFailure, track, fmt.Errorf("%s: %w", format, err))
	}

	logger.WithFields(log.Fields{
		"track":       track,
		"format":      format,
		"bytes":       len(data),
		"sample_rate": clip.SampleRate,
		"channels":    clip.Channels,
		"duration_ms": clip.Duration().Milliseconds(),
	}).Debug("track decoded")

	return clip, ctx.Err()
}

func conform(ctx context.Context, track string, c audio.Clip, rate, channels int) (audio.Clip, error) {
	if err := ctx.Err(); err != nil {
		return audio.Clip{}, err
	}

	out, err := audio.ConformClip(c, rate, channels)
	if err != nil {
		return audio.Clip{}, newError(KindDecodeFailure, track, fmt.Errorf("converting to %d Hz/%d ch: %w", rate, channels, err))
	}
	return out, nil
}
