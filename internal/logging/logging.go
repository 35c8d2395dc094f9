// SPDX-License-Identifier: EPL-2.0

// Package logging builds the service logger and the request-scoped loggers
// handed to HTTP handlers through the request context.
package logging

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
)

type Config struct {
	Level  string
	Format string
	Writer io.Writer
}

type Format string

const (
	FormatJSON    Format = "json"
	FormatText    Format = "text"
	FormatDiscard Format = "discard"
)

// New creates a logger writing entries at or above cfg.Level to cfg.Writer
// (stdout when nil). Unknown formats fall back to JSON and unknown levels to
// info.
func New(cfg Config) *log.Logger {
	writer := cfg.Writer
	if writer == nil {
		writer = os.Stdout
	}
	return &log.Logger{
		Handler: newHandler(cfg.Format, writer),
		Level:   parseLevel(cfg.Level),
	}
}

func newHandler(format string, writer io.Writer) log.Handler {
	switch Format(strings.ToLower(strings.TrimSpace(format))) {
	case FormatText:
		return text.New(writer)
	case FormatDiscard:
		return discard.New()
	default:
		return json.New(writer)
	}
}

func parseLevel(level string) log.Level {
	parsed, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return log.InfoLevel
	}
	return parsed
}

// ValidFormat reports whether format names a known handler.
func ValidFormat(format string) bool {
	switch Format(strings.ToLower(strings.TrimSpace(format))) {
	case FormatJSON, FormatText, FormatDiscard, "":
		return true
	}
	return false
}

type requestIDKey struct{}

// ContextWithRequestID stores id in ctx together with a logger that carries
// it as the request_id field.
func ContextWithRequestID(ctx context.Context, logger log.Interface, id string) context.Context {
	ctx = context.WithValue(ctx, requestIDKey{}, id)
	return log.NewContext(ctx, logger.WithField("request_id", id))
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// FromContext returns the request logger stored in ctx, or fallback when
// there is none.
func FromContext(ctx context.Context, fallback log.Interface) log.Interface {
	logger := log.FromContext(ctx)
	if logger == log.Log && fallback != nil {
		return fallback
	}
	return logger
}

// RequestLogger returns middleware that writes one entry per request with
// method, path, status, duration and remote address.
func RequestLogger(logger log.Interface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recorder := newResponseRecorder(w)
			start := time.Now()
			next.ServeHTTP(recorder, r)

			FromContext(r.Context(), logger).WithFields(log.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      recorder.status,
				"duration_ms": time.Since(start).Milliseconds(),
				"remote_addr": r.RemoteAddr,
			}).Info("request completed")
		})
	}
}

type responseRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func newResponseRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (rr *responseRecorder) WriteHeader(status int) {
	if !rr.wroteHeader {
		rr.status = status
		rr.wroteHeader = true
	}
	rr.ResponseWriter.WriteHeader(status)
}

func (rr *responseRecorder) Write(b []byte) (int, error) {
	rr.wroteHeader = true
	return rr.ResponseWriter.Write(b)
}

func (rr *responseRecorder) Flush() {
	if flusher, ok := rr.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
