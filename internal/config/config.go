// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ik5/audiomancer"
	"github.com/ik5/audiomancer/formats/mp3"
	"github.com/ik5/audiomancer/internal/logging"
)

const (
	EncoderFFmpeg = "ffmpeg"
	EncoderShine  = "shine"
)

// Config holds all runtime configuration, loaded from environment variables.
// It is built once at startup and passed by value afterwards.
type Config struct {
	// Listener
	Host    string
	Port    int
	TLSCert string
	TLSKey  string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Requests
	AllowedOrigins   []string
	MaxUploadMB      int
	DefaultCrossfade time.Duration

	// Mixing
	Encoder     string // ffmpeg or shine
	FFmpegPath  string
	BitrateKbps int
	Curve       string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		Host:    envStr("AUDIOMANCER_HOST", "0.0.0.0"),
		Port:    envInt("PORT", 5000),
		TLSCert: envStr("AUDIOMANCER_TLS_CERT", ""),
		TLSKey:  envStr("AUDIOMANCER_TLS_KEY", ""),

		ReadTimeout:     envDuration("AUDIOMANCER_READ_TIMEOUT", time.Minute),
		WriteTimeout:    envDuration("AUDIOMANCER_WRITE_TIMEOUT", 5*time.Minute),
		ShutdownTimeout: envDuration("AUDIOMANCER_SHUTDOWN_TIMEOUT", 10*time.Second),

		AllowedOrigins:   envList("AUDIOMANCER_ALLOWED_ORIGINS"),
		MaxUploadMB:      envInt("AUDIOMANCER_MAX_UPLOAD_MB", 100),
		DefaultCrossfade: time.Duration(envInt("AUDIOMANCER_DEFAULT_CROSSFADE_MS", 3000)) * time.Millisecond,

		Encoder:     strings.ToLower(envStr("AUDIOMANCER_ENCODER", EncoderFFmpeg)),
		FFmpegPath:  envStr("AUDIOMANCER_FFMPEG_PATH", "ffmpeg"),
		BitrateKbps: envInt("AUDIOMANCER_BITRATE_KBPS", audiomancer.DefaultBitrate),
		Curve:       envStr("AUDIOMANCER_CURVE", "linear"),

		LogLevel:  envStr("AUDIOMANCER_LOG_LEVEL", "info"),
		LogFormat: envStr("AUDIOMANCER_LOG_FORMAT", "json"),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if (c.TLSCert == "") != (c.TLSKey == "") {
		errs = append(errs, errors.New("both TLS cert and key must be set"))
	}
	if c.MaxUploadMB <= 0 {
		errs = append(errs, fmt.Errorf("max upload must be positive, got %d MB", c.MaxUploadMB))
	}
	if c.DefaultCrossfade < 0 {
		errs = append(errs, fmt.Errorf("default crossfade must not be negative, got %v", c.DefaultCrossfade))
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 || c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("timeouts must be positive"))
	}
	switch c.Encoder {
	case EncoderFFmpeg, EncoderShine:
	default:
		errs = append(errs, fmt.Errorf("unknown encoder %q", c.Encoder))
	}
	// Mixes are written at an MPEG-1 rate, so the bitrate must be one of its
	// Layer III steps.
	if !mp3.BitrateSupported(44100, c.BitrateKbps) {
		errs = append(errs, fmt.Errorf("bitrate %d kbps is not an MPEG-1 Layer III bitrate", c.BitrateKbps))
	}
	if _, err := audiomancer.ParseCurve(c.Curve); err != nil {
		errs = append(errs, err)
	}
	if !logging.ValidFormat(c.LogFormat) {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}

	return errors.Join(errs...)
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
