// SPDX-License-Identifier: EPL-2.0

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"

	"github.com/ik5/audiomancer"
	"github.com/ik5/audiomancer/internal/logging"
)

const (
	// HealthMessage is the liveness body served on GET /.
	HealthMessage = "Audiomancer Backend is Running!"
	// MixFilename names the attachment returned by /mix_tracks.
	MixFilename = "audiomancer_mix.mp3"

	fieldDuration = "duration_ms"

	msgMissingFiles  = "Both track_a and track_b files are required."
	msgTooLarge      = "Upload exceeds the maximum request size."
	msgBadDuration   = "duration_ms must be a non-negative integer number of milliseconds."
	msgTooLong       = "The crossfade is longer than one of the tracks."
	msgEmptyTrack    = "Uploaded track is empty."
	msgInvalidInput  = "Invalid input."
	msgUnsupported   = "Unrecognised audio format. Please verify the files are WAV, AIFF, MP3 or Ogg Vorbis audio."
	msgDecodeFailure = "Failed to decode audio. Please verify the files are valid and not corrupted."
	msgEncodeFailure = "Failed to encode the mix. Please verify the server has ffmpeg with MP3 (libmp3lame) support."
	msgProcessing    = "Failed to process audio. Please verify the files are valid and the server has ffmpeg with MP3 support."
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Track string `json:"track,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, HealthMessage)
}

func (s *Server) handleMixTracks(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context(), s.logger)

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	// Keep every part in memory; the body is already capped.
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, errorResponse{Error: msgTooLarge, Kind: audiomancer.KindInvalidInput.String()})
		case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
			writeError(w, http.StatusBadRequest, errorResponse{Error: msgMissingFiles})
		default:
			logger.WithError(err).Warn("malformed multipart form")
			writeError(w, http.StatusBadRequest, errorResponse{Error: "Malformed multipart form.", Kind: audiomancer.KindInvalidInput.String()})
		}
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	trackA, errA := openUpload(r, audiomancer.TrackA)
	trackB, errB := openUpload(r, audiomancer.TrackB)
	if trackA != nil {
		defer trackA.Close()
	}
	if trackB != nil {
		defer trackB.Close()
	}
	if errA != nil || errB != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: msgMissingFiles})
		return
	}

	crossfade, err := parseCrossfade(r.FormValue(fieldDuration), s.cfg.DefaultCrossfade)
	if err != nil {
		logger.WithError(err).Debug("rejected duration")
		writeError(w, http.StatusBadRequest, errorResponse{Error: msgBadDuration, Kind: audiomancer.KindInvalidInput.String()})
		return
	}

	mix, err := s.mixer.Mix(r.Context(), trackA, trackB, crossfade)
	if err != nil {
		s.writeMixError(r.Context(), w, logger, err)
		return
	}

	logger.WithFields(log.Fields{
		"crossfade_ms": crossfade.Milliseconds(),
		"bytes":        mix.Len(),
	}).Info("mix completed")

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", MixFilename))
	w.Header().Set("Content-Length", strconv.Itoa(mix.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, mix); err != nil {
		logger.WithError(err).Warn("writing mix response")
	}
}

func openUpload(r *http.Request, field string) (multipart.File, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return file, nil
}

// parseCrossfade reads duration_ms. Blank means fallback.
func parseCrossfade(raw string, fallback time.Duration) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	ms, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", fieldDuration, raw, err)
	}
	if ms < 0 {
		return 0, fmt.Errorf("%s %d is negative", fieldDuration, ms)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func (s *Server) writeMixError(ctx context.Context, w http.ResponseWriter, logger log.Interface, err error) {
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		logger.WithError(err).Warn("client went away before the mix finished")
		return
	}

	resp, status := errorFor(err)
	logger.WithError(err).WithFields(log.Fields{
		"kind":   audiomancer.KindOf(err).String(),
		"track":  resp.Track,
		"status": status,
	}).Error("mix failed")
	writeError(w, status, resp)
}

func errorFor(err error) (errorResponse, int) {
	var mixErr *audiomancer.Error
	if !errors.As(err, &mixErr) {
		return errorResponse{Error: msgProcessing}, http.StatusInternalServerError
	}

	resp := errorResponse{Kind: mixErr.Kind.String(), Track: mixErr.Track}
	switch mixErr.Kind {
	case audiomancer.KindInvalidInput:
		switch {
		case errors.Is(err, audiomancer.ErrCrossfadeTooLong):
			resp.Error = msgTooLong
		case errors.Is(err, audiomancer.ErrEmptyTrack):
			resp.Error = msgEmptyTrack
		case errors.Is(err, audiomancer.ErrNegativeCrossfade):
			resp.Error = msgBadDuration
		default:
			resp.Error = msgInvalidInput
		}
		return resp, http.StatusBadRequest
	case audiomancer.KindUnsupportedFormat:
		resp.Error = msgUnsupported
	case audiomancer.KindDecodeFailure:
		resp.Error = msgDecodeFailure
	case audiomancer.KindEncodeFailure:
		resp.Error = msgEncodeFailure
	default:
		resp.Error = msgProcessing
	}
	return resp, http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, status int, resp errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
