// SPDX-License-Identifier: EPL-2.0

// Command audiomancer serves the crossfade mixer over HTTP.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"

	"github.com/ik5/audiomancer"
	"github.com/ik5/audiomancer/formats/mp3"
	"github.com/ik5/audiomancer/internal/config"
	"github.com/ik5/audiomancer/internal/logging"
	"github.com/ik5/audiomancer/internal/server"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger, nil); err != nil {
		logger.WithError(err).Error("server stopped")
		cancel()
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// run wires the mixer into the HTTP server and blocks until ctx ends.
func run(ctx context.Context, cfg config.Config, logger log.Interface, ready chan<- net.Addr) error {
	encoder, err := newEncoder(cfg, logger)
	if err != nil {
		return err
	}
	curve, err := audiomancer.ParseCurve(cfg.Curve)
	if err != nil {
		return err
	}

	mixer := audiomancer.NewMixer(
		audiomancer.WithEncoder(encoder),
		audiomancer.WithCurve(curve),
		audiomancer.WithLogger(logger),
	)

	handler, err := server.New(server.Config{
		AllowedOrigins:   cfg.AllowedOrigins,
		MaxUploadBytes:   cfg.MaxUploadBytes(),
		DefaultCrossfade: cfg.DefaultCrossfade,
	}, mixer, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	logger.WithFields(log.Fields{
		"addr":    srv.Addr,
		"encoder": cfg.Encoder,
		"curve":   cfg.Curve,
		"tls":     cfg.TLSCert != "",
	}).Info("starting audiomancer")

	return server.Run(ctx, server.RunConfig{
		Server:          srv,
		TLS:             server.TLSConfig{CertFile: cfg.TLSCert, KeyFile: cfg.TLSKey},
		ShutdownTimeout: cfg.ShutdownTimeout,
		Ready:           ready,
	})
}

func newEncoder(cfg config.Config, logger log.Interface) (mp3.Encoder, error) {
	switch cfg.Encoder {
	case config.EncoderShine:
		return mp3.ShineEncoder{Bitrate: cfg.BitrateKbps}, nil
	case config.EncoderFFmpeg:
		if _, err := exec.LookPath(cfg.FFmpegPath); err != nil {
			logger.WithError(err).WithField("ffmpeg", cfg.FFmpegPath).
				Warn("ffmpeg not found; every mix will fail until it is installed")
		}
		return mp3.FFmpegEncoder{Path: cfg.FFmpegPath, Bitrate: cfg.BitrateKbps}, nil
	default:
		return nil, fmt.Errorf("unknown encoder %q", cfg.Encoder)
	}
}
