// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")

	// ErrUnknownFormat is returned by Registry.Detect when no registered
	// container recognises the stream header.
	ErrUnknownFormat = errors.New("unrecognized audio format")

	// ErrNoAudio means a stream carried no samples at all.
	ErrNoAudio = errors.New("stream contains no audio")

	ErrInvalidFormat = errors.New("sample rate and channel count must be positive")
)
