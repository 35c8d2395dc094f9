package wav

import "errors"

var (
	ErrNotWavFile          = errors.New("not a WAV file")
	ErrUnsupportedEncoding = errors.New("only integer PCM WAV is supported")
	ErrUnsupportedBitDepth = errors.New("unsupported WAV bit depth")
	ErrMissingPCMData      = errors.New("WAV file has no data chunk")
	ErrInvalidChannels     = errors.New("channel count must be positive")
)
