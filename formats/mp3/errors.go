package mp3

import "errors"

var (
	ErrNotMP3Stream          = errors.New("not an MP3 stream")
	ErrUnsupportedSampleRate = errors.New("sample rate not representable in MP3")
	ErrUnsupportedBitrate    = errors.New("bitrate not available at this sample rate")
	ErrUnsupportedChannels   = errors.New("MP3 encoding supports 1 or 2 channels")
	ErrEncoderUnavailable    = errors.New("mp3 encoder binary not found")
	ErrEncoderFailed         = errors.New("mp3 encoder failed")
	ErrMisalignedPCM         = errors.New("pcm length is not a multiple of the channel count")
)
