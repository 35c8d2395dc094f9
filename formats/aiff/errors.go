package aiff

import "errors"

var (
	ErrNotAiffFile         = errors.New("not an AIFF file")
	ErrUnsupportedBitDepth = errors.New("only 8, 16, 24 and 32-bit PCM AIFF is supported")
	ErrUnsupportedLayout   = errors.New("unsupported AIFF layout")
)
