// SPDX-License-Identifier: EPL-2.0

// Package server exposes the mixer over HTTP.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/apex/log"

	"github.com/ik5/audiomancer/internal/logging"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

// Mixer produces the encoded crossfade of two uploaded tracks.
//
//counterfeiter:generate . Mixer
type Mixer interface {
	Mix(ctx context.Context, trackA, trackB io.Reader, crossfade time.Duration) (*bytes.Reader, error)
}

// DefaultMaxUploadBytes caps a whole /mix_tracks request when Config leaves
// MaxUploadBytes unset.
const DefaultMaxUploadBytes = 100 << 20

type Config struct {
	// AllowedOrigins lists the exact cross-origin callers allowed in.
	// Same-origin requests are always allowed.
	AllowedOrigins []string
	// MaxUploadBytes bounds the request body, both files included.
	MaxUploadBytes int64
	// DefaultCrossfade applies when a request carries no duration_ms.
	DefaultCrossfade time.Duration
}

type Server struct {
	cfg    Config
	mixer  Mixer
	logger log.Interface
}

// New returns the service handler: request ids, request logging and CORS
// wrapped around the liveness and mixing routes.
func New(cfg Config, mixer Mixer, logger log.Interface) (http.Handler, error) {
	return newHandler(cfg, mixer, logger, newRequestID)
}

func newHandler(cfg Config, mixer Mixer, logger log.Interface, ids idGenerator) (http.Handler, error) {
	if mixer == nil {
		return nil, errors.New("mixer is required")
	}
	if cfg.DefaultCrossfade < 0 {
		return nil, fmt.Errorf("default crossfade must not be negative, got %v", cfg.DefaultCrossfade)
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if logger == nil {
		logger = log.Log
	}

	policy, err := newCORSPolicy(cfg.AllowedOrigins)
	if err != nil {
		return nil, err
	}

	s := &Server{cfg: cfg, mixer: mixer, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHealth)
	mux.HandleFunc("POST /mix_tracks", s.handleMixTracks)

	var handler http.Handler = mux
	handler = corsMiddleware(policy, logger, handler)
	handler = logging.RequestLogger(logger)(handler)
	handler = requestIDMiddleware(logger, ids, handler)
	return handler, nil
}
