// SPDX-License-Identifier: EPL-2.0

package audiomancer

import (
	"errors"
	"fmt"
)

// Track names used in errors and logs. They match the upload form fields.
const (
	TrackA = "track_a"
	TrackB = "track_b"
)

var (
	ErrNegativeCrossfade = errors.New("crossfade duration must not be negative")
	ErrCrossfadeTooLong  = errors.New("crossfade is longer than one of the tracks")
	ErrEmptyTrack        = errors.New("track is empty")
	ErrFormatMismatch    = errors.New("clips differ in sample rate or channel count")
	ErrUnknownCurve      = errors.New("unknown crossfade curve")
)

// ErrorKind classifies a Mix failure so callers can map it to a response
// without inspecting messages.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindInvalidInput covers missing, empty or out-of-range inputs.
	KindInvalidInput
	// KindUnsupportedFormat means no decoder recognised the container.
	KindUnsupportedFormat
	// KindDecodeFailure means a decoder recognised the container but could
	// not read it.
	KindDecodeFailure
	// KindEncodeFailure means the mixed audio could not be encoded.
	KindEncodeFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindUnsupportedFormat:
		return "unsupported_format"
	case KindDecodeFailure:
		return "decode_failure"
	case KindEncodeFailure:
		return "encode_failure"
	default:
		return "unknown"
	}
}

// Error is returned by Mixer.Mix. Track is empty when the failure is not
// tied to one input.
type Error struct {
	Kind  ErrorKind
	Track string
	Err   error
}

func (e *Error) Error() string {
	if e.Track == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Track, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func newError(kind ErrorKind, track string, err error) *Error {
	return &Error{Kind: kind, Track: track, Err: err}
}
