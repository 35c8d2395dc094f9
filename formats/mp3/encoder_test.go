package mp3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"os/exec"
	"slices"
	"testing"
)

func sine(sampleRate, channels int, seconds float64) []int16 {
	frames := int(float64(sampleRate) * seconds)
	out := make([]int16, frames*channels)
	for i := range frames {
		v := int16(8000 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)))
		for c := range channels {
			out[i*channels+c] = v
		}
	}
	return out
}

// decodedFrames decodes an MP3 stream with go-mp3 and returns its frame count.
func decodedFrames(t *testing.T, data []byte) (int, int) {
	t.Helper()

	src, err := Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	total := 0
	buf := make([]float32, 4096)
	for {
		n, err := src.ReadSamples(buf)
		total += n
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}

	return total / src.Channels(), src.SampleRate()
}

func TestEncoders_Validate(t *testing.T) {
	t.Parallel()

	encoders := map[string]Encoder{
		"shine":  ShineEncoder{},
		"ffmpeg": FFmpegEncoder{Path: "/nonexistent/ffmpeg"},
	}

	tests := []struct {
		name     string
		rate     int
		channels int
		pcm      []int16
		want     error
	}{
		{"rate", 96000, 2, make([]int16, 4), ErrUnsupportedSampleRate},
		{"channels", 44100, 3, make([]int16, 6), ErrUnsupportedChannels},
		{"misaligned", 44100, 2, make([]int16, 3), ErrMisalignedPCM},
	}

	for name, enc := range encoders {
		for _, tt := range tests {
			err := enc.Encode(context.Background(), io.Discard, tt.rate, tt.channels, tt.pcm)
			if !errors.Is(err, tt.want) {
				t.Errorf("%s/%s: Encode() error = %v, want %v", name, tt.name, err, tt.want)
			}
		}
	}
}

func TestShineEncoder_RoundTrip(t *testing.T) {
	t.Parallel()

	const rate = 44100
	out := new(bytes.Buffer)

	err := ShineEncoder{}.Encode(context.Background(), out, rate, 2, sine(rate, 2, 1))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !(Decoder{}).Sniff(out.Bytes()) {
		t.Fatalf("encoded stream does not sniff as MP3: % x", out.Bytes()[:min(4, out.Len())])
	}

	frames, gotRate := decodedFrames(t, out.Bytes())
	if gotRate != rate {
		t.Errorf("decoded rate = %d, want %d", gotRate, rate)
	}

	// Encoder delay and frame padding add a few MP3 frames at most.
	if diff := math.Abs(float64(frames-rate)) / rate; diff > 0.1 {
		t.Errorf("decoded %d frames, want about %d", frames, rate)
	}
}

// frameBitrates walks the Layer III frame headers of data and returns each
// frame's bitrate in kbps.
func frameBitrates(t *testing.T, data []byte, sampleRate int) []int {
	t.Helper()

	var rates []int
	for off := 0; off+4 <= len(data); {
		h := data[off : off+4]
		if h[0] != 0xFF || h[1]&0xE0 != 0xE0 {
			t.Fatalf("no frame sync at offset %d: % x", off, h)
		}

		table := layer3Bitrates[1]
		if h[1]>>3&0x03 == 0x03 {
			table = layer3Bitrates[0]
		}
		kbps := table[h[2]>>4]
		rates = append(rates, kbps)

		size := 144 * kbps * 1000 / sampleRate
		if !mpeg1(sampleRate) {
			size /= 2
		}
		off += size + int(h[2]>>1&0x01)
	}
	return rates
}

func TestShineEncoder_Bitrate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rate     int
		channels int
		bitrate  int
		want     int
		wantErr  error
	}{
		{"default is 320", 44100, 2, 0, 320, nil},
		{"48k mono", 48000, 1, 0, 320, nil},
		{"32k", 32000, 2, 320, 320, nil},
		{"explicit 256", 44100, 2, 256, 256, nil},
		{"mpeg-2 at 160", 22050, 1, 160, 160, nil},
		{"320 needs mpeg-1", 22050, 2, 320, 0, ErrUnsupportedBitrate},
		{"not a layer III rate", 44100, 2, 100, 0, ErrUnsupportedBitrate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := new(bytes.Buffer)
			err := ShineEncoder{Bitrate: tt.bitrate}.Encode(context.Background(), out, tt.rate, tt.channels, sine(tt.rate, tt.channels, 0.5))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Encode() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if out.Len() != 0 {
					t.Errorf("wrote %d bytes on error", out.Len())
				}
				return
			}

			rates := frameBitrates(t, out.Bytes(), tt.rate)
			if len(rates) == 0 {
				t.Fatal("no frames written")
			}
			for i, got := range rates {
				if got != tt.want {
					t.Fatalf("frame %d at %d kbps, want %d", i, got, tt.want)
				}
			}
		})
	}
}

// Mono input is consumed one frame per frame, not skipped.
func TestShineEncoder_MonoDuration(t *testing.T) {
	t.Parallel()

	const rate = 48000
	out := new(bytes.Buffer)
	if err := (ShineEncoder{}).Encode(context.Background(), out, rate, 1, sine(rate, 1, 2)); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	frames, _ := decodedFrames(t, out.Bytes())
	if diff := math.Abs(float64(frames-2*rate)) / (2 * rate); diff > 0.05 {
		t.Errorf("decoded %d frames, want about %d", frames, 2*rate)
	}
}

func TestBitrateSupported(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rate, kbps int
		want       bool
	}{
		{44100, 320, true},
		{48000, 320, true},
		{32000, 32, true},
		{24000, 320, false},
		{22050, 160, true},
		{8000, 8, true},
		{96000, 320, false},
		{44100, 8, false},
	}

	for _, tt := range tests {
		if got := BitrateSupported(tt.rate, tt.kbps); got != tt.want {
			t.Errorf("BitrateSupported(%d, %d) = %v, want %v", tt.rate, tt.kbps, got, tt.want)
		}
	}
}

func TestShineEncoder_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := new(bytes.Buffer)
	err := ShineEncoder{}.Encode(ctx, out, 44100, 1, sine(44100, 1, 0.1))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Encode() error = %v, want context.Canceled", err)
	}
	if out.Len() != 0 {
		t.Errorf("wrote %d bytes, want 0", out.Len())
	}
}

func TestFFmpegEncoder_Args(t *testing.T) {
	t.Parallel()

	args := FFmpegEncoder{}.args(48000, 1)

	want := []string{"-f", "s16le", "-ar", "48000", "-ac", "1", "-codec:a", "libmp3lame", "-b:a", "320k"}
	for i := 0; i < len(want); i += 2 {
		idx := slices.Index(args, want[i])
		if idx < 0 || idx+1 >= len(args) || args[idx+1] != want[i+1] {
			t.Errorf("args %v missing %s %s", args, want[i], want[i+1])
		}
	}

	if got := (FFmpegEncoder{Bitrate: 192}).args(44100, 2); !slices.Contains(got, "192k") {
		t.Errorf("args %v missing 192k", got)
	}
}

func TestFFmpegEncoder_Unavailable(t *testing.T) {
	t.Parallel()

	err := FFmpegEncoder{Path: "audiomancer-no-such-ffmpeg"}.Encode(context.Background(), io.Discard, 44100, 2, make([]int16, 4))
	if !errors.Is(err, ErrEncoderUnavailable) {
		t.Errorf("Encode() error = %v, want ErrEncoderUnavailable", err)
	}
}

func TestFFmpegEncoder_RoundTrip(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}

	const rate = 44100
	out := new(bytes.Buffer)

	err := FFmpegEncoder{}.Encode(context.Background(), out, rate, 2, sine(rate, 2, 2))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	frames, _ := decodedFrames(t, out.Bytes())
	if diff := math.Abs(float64(frames-2*rate)) / (2 * rate); diff > 0.05 {
		t.Errorf("decoded %d frames, want about %d", frames, 2*rate)
	}
}
