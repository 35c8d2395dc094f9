package server_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/ik5/audiomancer"
	"github.com/ik5/audiomancer/audio"
	"github.com/ik5/audiomancer/formats/mp3"
	"github.com/ik5/audiomancer/internal/audiotest"
	"github.com/ik5/audiomancer/internal/server"
)

var _ = Describe("Mixing real audio", func() {
	var (
		handler http.Handler
		wavA    []byte
		mp3B    []byte
	)

	decodedDuration := func(body []byte) time.Duration {
		src, err := mp3.Decoder{}.Decode(bytes.NewReader(body))
		Expect(err).NotTo(HaveOccurred())
		clip, err := audio.ReadAll(src)
		Expect(err).NotTo(HaveOccurred())
		return clip.Duration()
	}

	post := func(a, b []byte, fields map[string]string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, multipartRequest(map[string][]byte{"track_a": a, "track_b": b}, fields))
		return rec
	}

	BeforeEach(func() {
		By("Generating a WAV and an MP3 input", func() {
			var err error
			wavA, err = audiotest.Tone{SampleRate: 44100, Channels: 1, Frequency: 440, Duration: 4 * time.Second}.WAV()
			Expect(err).NotTo(HaveOccurred())
			mp3B, err = audiotest.Tone{SampleRate: 44100, Channels: 2, Frequency: 660, Duration: 4 * time.Second}.MP3()
			Expect(err).NotTo(HaveOccurred())
		})

		By("Wiring the server to an in-process encoder", func() {
			mixer := audiomancer.NewMixer(audiomancer.WithEncoder(mp3.ShineEncoder{}))
			var err error
			handler, err = server.New(server.Config{DefaultCrossfade: audiomancer.DefaultCrossfade}, mixer,
				&log.Logger{Handler: discard.New(), Level: log.InfoLevel})
			Expect(err).NotTo(HaveOccurred())
		})
	})

	It("returns a playable mp3 of the expected length", func() {
		rec := post(wavA, mp3B, map[string]string{"duration_ms": "500"})
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Content-Type")).To(Equal("audio/mpeg"))

		// Encoder framing and decoder delay add a few tens of milliseconds.
		Expect(decodedDuration(rec.Body.Bytes())).To(BeNumerically("~", 7500*time.Millisecond, 150*time.Millisecond))
	})

	It("uses the default crossfade and returns the same mix for the same inputs", func() {
		first := post(wavA, mp3B, nil)
		second := post(wavA, mp3B, nil)
		Expect(first.Code).To(Equal(http.StatusOK))
		Expect(second.Code).To(Equal(http.StatusOK))

		By("Overlapping the tracks by three seconds", func() {
			Expect(decodedDuration(first.Body.Bytes())).To(BeNumerically("~", 5*time.Second, 150*time.Millisecond))
		})

		By("Encoding identical bytes both times", func() {
			Expect(second.Body.Len()).To(Equal(first.Body.Len()))
			Expect(second.Body.Bytes()).To(Equal(first.Body.Bytes()))
		})
	})

	It("rejects a crossfade longer than a track", func() {
		rec := post(wavA, mp3B, map[string]string{"duration_ms": "5000"})
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(decodeError(rec)).To(HaveKeyWithValue("kind", "invalid_input"))
	})

	It("fails on non-audio input and keeps serving", func() {
		rec := post([]byte("definitely not audio"), mp3B, nil)
		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		body := decodeError(rec)
		Expect(body).To(HaveKey("error"))
		Expect(body).To(HaveKeyWithValue("kind", "unsupported_format"))
		Expect(body).To(HaveKeyWithValue("track", "track_a"))

		health := httptest.NewRecorder()
		handler.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(health.Code).To(Equal(http.StatusOK))
	})
})
