package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/memory"
	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"github.com/ik5/audiomancer"
	"github.com/ik5/audiomancer/internal/server"
	"github.com/ik5/audiomancer/internal/server/serverfakes"
)

func multipartRequest(files map[string][]byte, fields map[string]string) *http.Request {
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	for name, data := range files {
		part, err := mw.CreateFormFile(name, name+".wav")
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write(data)
		Expect(err).NotTo(HaveOccurred())
	}
	for name, value := range fields {
		Expect(mw.WriteField(name, value)).To(Succeed())
	}
	Expect(mw.Close()).To(Succeed())

	req := httptest.NewRequest(http.MethodPost, "/mix_tracks", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(rec *httptest.ResponseRecorder) map[string]string {
	Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))
	var body map[string]string
	Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
	return body
}

var _ = Describe("Server", func() {
	var (
		fakeMixer  *serverfakes.FakeMixer
		logHandler *memory.Handler
		cfg        server.Config
		handler    http.Handler
		rec        *httptest.ResponseRecorder
		req        *http.Request

		trackA []byte
		trackB []byte
	)

	BeforeEach(func() {
		By("Initializing all variables", func() {
			fakeMixer = new(serverfakes.FakeMixer)
			fakeMixer.MixReturns(bytes.NewReader([]byte("ID3fake-mp3")), nil)
			logHandler = memory.New()
			cfg = server.Config{
				AllowedOrigins:   []string{"http://localhost:3000"},
				DefaultCrossfade: audiomancer.DefaultCrossfade,
			}
			rec = httptest.NewRecorder()
			req = httptest.NewRequest(http.MethodGet, "/", nil)
			trackA = []byte("track a bytes")
			trackB = []byte("track b bytes")
		})
	})

	JustBeforeEach(func() {
		var err error
		handler, err = server.New(cfg, fakeMixer, &log.Logger{Handler: logHandler, Level: log.DebugLevel})
		Expect(err).NotTo(HaveOccurred())
		handler.ServeHTTP(rec, req)
	})

	Describe("GET /", func() {
		BeforeEach(func() {
			req = httptest.NewRequest(http.MethodGet, "/", nil)
		})

		It("reports liveness", func() {
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(HavePrefix("text/plain"))
			Expect(rec.Body.String()).To(Equal(server.HealthMessage))
		})

		It("assigns a request id", func() {
			Expect(rec.Header().Get("X-Request-Id")).To(HaveLen(32))
		})

		It("logs the request", func() {
			Expect(logHandler.Entries).To(HaveLen(1))
			entry := logHandler.Entries[0]
			Expect(entry.Message).To(Equal("request completed"))
			Expect(entry.Fields.Get("status")).To(Equal(http.StatusOK))
			Expect(entry.Fields.Get("request_id")).To(Equal(rec.Header().Get("X-Request-Id")))
		})

		Describe("with a caller supplied request id", func() {
			BeforeEach(func() {
				req.Header.Set("X-Request-Id", "caller-id-1")
			})

			It("echoes it", func() {
				Expect(rec.Header().Get("X-Request-Id")).To(Equal("caller-id-1"))
			})
		})
	})

	Describe("unknown routes", func() {
		BeforeEach(func() {
			req = httptest.NewRequest(http.MethodGet, "/nope", nil)
		})

		It("returns 404", func() {
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("GET /mix_tracks", func() {
		BeforeEach(func() {
			req = httptest.NewRequest(http.MethodGet, "/mix_tracks", nil)
		})

		It("only allows POST", func() {
			Expect(rec.Code).To(Equal(http.StatusMethodNotAllowed))
		})
	})

	Describe("POST /mix_tracks", func() {
		Describe("Happy path", func() {
			BeforeEach(func() {
				req = multipartRequest(map[string][]byte{"track_a": trackA, "track_b": trackB}, nil)
			})

			It("returns the mix as an mp3 attachment", func() {
				Expect(rec.Code).To(Equal(http.StatusOK))
				Expect(rec.Header().Get("Content-Type")).To(Equal("audio/mpeg"))
				Expect(rec.Header().Get("Content-Disposition")).To(Equal(`attachment; filename="audiomancer_mix.mp3"`))
				Expect(rec.Header().Get("Content-Length")).To(Equal("11"))
				Expect(rec.Body.String()).To(Equal("ID3fake-mp3"))
			})

			It("uses the default crossfade", func() {
				Expect(fakeMixer.MixCallCount()).To(Equal(1))
				_, _, _, crossfade := fakeMixer.MixArgsForCall(0)
				Expect(crossfade).To(Equal(3 * time.Second))
			})
		})

		Describe("Uploaded content", func() {
			var gotA, gotB []byte

			BeforeEach(func() {
				fakeMixer.MixCalls(func(_ context.Context, a, b io.Reader, _ time.Duration) (*bytes.Reader, error) {
					var err error
					gotA, err = io.ReadAll(a)
					Expect(err).NotTo(HaveOccurred())
					gotB, err = io.ReadAll(b)
					Expect(err).NotTo(HaveOccurred())
					return bytes.NewReader(nil), nil
				})
				req = multipartRequest(map[string][]byte{"track_a": trackA, "track_b": trackB}, nil)
			})

			It("passes each file to the mixer in order", func() {
				Expect(gotA).To(Equal(trackA))
				Expect(gotB).To(Equal(trackB))
			})
		})

		table.DescribeTable("duration_ms",
			func(value string, wantStatus int, wantCrossfade time.Duration) {
				fakeMixer.MixReturns(bytes.NewReader([]byte("mp3")), nil)
				r := multipartRequest(map[string][]byte{"track_a": []byte("a"), "track_b": []byte("b")}, map[string]string{"duration_ms": value})
				w := httptest.NewRecorder()

				h, err := server.New(server.Config{DefaultCrossfade: audiomancer.DefaultCrossfade}, fakeMixer, &log.Logger{Handler: memory.New()})
				Expect(err).NotTo(HaveOccurred())
				h.ServeHTTP(w, r)

				Expect(w.Code).To(Equal(wantStatus))
				if wantStatus != http.StatusOK {
					Expect(decodeError(w)).To(HaveKeyWithValue("kind", "invalid_input"))
					return
				}
				_, _, _, crossfade := fakeMixer.MixArgsForCall(fakeMixer.MixCallCount() - 1)
				Expect(crossfade).To(Equal(wantCrossfade))
			},
			table.Entry("explicit", "1500", http.StatusOK, 1500*time.Millisecond),
			table.Entry("zero", "0", http.StatusOK, time.Duration(0)),
			table.Entry("blank", "  ", http.StatusOK, 3*time.Second),
			table.Entry("not a number", "abc", http.StatusBadRequest, time.Duration(0)),
			table.Entry("fractional", "1.5", http.StatusBadRequest, time.Duration(0)),
			table.Entry("negative", "-5", http.StatusBadRequest, time.Duration(0)),
		)

		Describe("Missing files", func() {
			table.DescribeTable("rejects the request",
				func(files map[string][]byte) {
					r := multipartRequest(files, nil)
					w := httptest.NewRecorder()
					handler.ServeHTTP(w, r)

					Expect(w.Code).To(Equal(http.StatusBadRequest))
					Expect(decodeError(w)).To(HaveKeyWithValue("error", "Both track_a and track_b files are required."))
					Expect(fakeMixer.MixCallCount()).To(BeZero())
				},
				table.Entry("without track_b", map[string][]byte{"track_a": []byte("a")}),
				table.Entry("without track_a", map[string][]byte{"track_b": []byte("b")}),
				table.Entry("without either", map[string][]byte{}),
			)

			BeforeEach(func() {
				req = httptest.NewRequest(http.MethodPost, "/mix_tracks", strings.NewReader("not a form"))
				req.Header.Set("Content-Type", "text/plain")
			})

			It("treats a non-multipart body as missing files", func() {
				Expect(rec.Code).To(Equal(http.StatusBadRequest))
				Expect(decodeError(rec)).To(HaveKey("error"))
			})
		})

		Describe("Oversized upload", func() {
			BeforeEach(func() {
				cfg.MaxUploadBytes = 1024
				req = multipartRequest(map[string][]byte{
					"track_a": bytes.Repeat([]byte{1}, 4096),
					"track_b": trackB,
				}, nil)
			})

			It("returns 413 without mixing", func() {
				Expect(rec.Code).To(Equal(http.StatusRequestEntityTooLarge))
				Expect(decodeError(rec)).To(HaveKey("error"))
				Expect(fakeMixer.MixCallCount()).To(BeZero())
			})
		})

		table.DescribeTable("mixer failures",
			func(mixErr error, wantStatus int, wantKind, wantTrack string) {
				fakeMixer.MixReturns(nil, mixErr)
				logs := memory.New()
				h, err := server.New(server.Config{}, fakeMixer, &log.Logger{Handler: logs, Level: log.DebugLevel})
				Expect(err).NotTo(HaveOccurred())

				w := httptest.NewRecorder()
				h.ServeHTTP(w, multipartRequest(map[string][]byte{"track_a": []byte("a"), "track_b": []byte("b")}, nil))

				Expect(w.Code).To(Equal(wantStatus))
				body := decodeError(w)
				Expect(body).To(HaveKey("error"))
				if wantKind == "" {
					Expect(body).NotTo(HaveKey("kind"))
				} else {
					Expect(body).To(HaveKeyWithValue("kind", wantKind))
				}
				if wantTrack != "" {
					Expect(body).To(HaveKeyWithValue("track", wantTrack))
				}

				var failed *log.Entry
				for _, e := range logs.Entries {
					if e.Message == "mix failed" {
						failed = e
					}
				}
				Expect(failed).NotTo(BeNil())
				Expect(failed.Level).To(Equal(log.ErrorLevel))
				Expect(failed.Fields.Get("error")).To(Equal(mixErr.Error()))
			},
			table.Entry("invalid input", &audiomancer.Error{Kind: audiomancer.KindInvalidInput, Track: "track_b", Err: audiomancer.ErrCrossfadeTooLong},
				http.StatusBadRequest, "invalid_input", "track_b"),
			table.Entry("unsupported format", &audiomancer.Error{Kind: audiomancer.KindUnsupportedFormat, Track: "track_a", Err: errors.New("unknown audio format")},
				http.StatusInternalServerError, "unsupported_format", "track_a"),
			table.Entry("decode failure", &audiomancer.Error{Kind: audiomancer.KindDecodeFailure, Track: "track_b", Err: errors.New("bad chunk")},
				http.StatusInternalServerError, "decode_failure", "track_b"),
			table.Entry("encode failure", &audiomancer.Error{Kind: audiomancer.KindEncodeFailure, Err: errors.New("ffmpeg missing")},
				http.StatusInternalServerError, "encode_failure", ""),
			table.Entry("untyped error", fmt.Errorf("boom"),
				http.StatusInternalServerError, "", ""),
		)
	})

	table.DescribeTable("invalid input bodies",
		func(cause error, wantMessage string) {
			fakeMixer.MixReturns(nil, &audiomancer.Error{Kind: audiomancer.KindInvalidInput, Track: "track_a", Err: cause})
			h, err := server.New(server.Config{}, fakeMixer, &log.Logger{Handler: memory.New(), Level: log.InfoLevel})
			Expect(err).NotTo(HaveOccurred())

			w := httptest.NewRecorder()
			h.ServeHTTP(w, multipartRequest(map[string][]byte{"track_a": []byte("a"), "track_b": []byte("b")}, nil))

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			body := decodeError(w)
			Expect(body).To(HaveKeyWithValue("error", wantMessage))
			Expect(body).To(HaveKeyWithValue("kind", "invalid_input"))
			Expect(body).To(HaveKeyWithValue("track", "track_a"))
			Expect(body["error"]).NotTo(ContainSubstring("132300"))
		},
		table.Entry("crossfade too long",
			fmt.Errorf("%w (132300 frames requested)", audiomancer.ErrCrossfadeTooLong),
			"The crossfade is longer than one of the tracks."),
		table.Entry("empty track", audiomancer.ErrEmptyTrack, "Uploaded track is empty."),
		table.Entry("negative crossfade",
			fmt.Errorf("%w: -132300ms", audiomancer.ErrNegativeCrossfade),
			"duration_ms must be a non-negative integer number of milliseconds."),
		table.Entry("anything else", errors.New("reading upload: 132300 bytes short"), "Invalid input."),
	)

	Describe("CORS", func() {
		BeforeEach(func() {
			req = httptest.NewRequest(http.MethodGet, "/", nil)
		})

		Describe("from an allowed origin", func() {
			BeforeEach(func() {
				req.Header.Set("Origin", "http://LOCALHOST:3000")
			})

			It("allows the origin and exposes the attachment header", func() {
				Expect(rec.Code).To(Equal(http.StatusOK))
				Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("http://LOCALHOST:3000"))
				Expect(rec.Header().Get("Access-Control-Expose-Headers")).To(ContainSubstring("Content-Disposition"))
			})
		})

		Describe("from another origin", func() {
			BeforeEach(func() {
				req.Header.Set("Origin", "https://evil.example.com")
			})

			It("is rejected", func() {
				Expect(rec.Code).To(Equal(http.StatusForbidden))
				Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
			})
		})

		Describe("preflight", func() {
			BeforeEach(func() {
				req = httptest.NewRequest(http.MethodOptions, "/mix_tracks", nil)
				req.Header.Set("Origin", "http://localhost:3000")
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			})

			It("answers without reaching the mixer", func() {
				Expect(rec.Code).To(Equal(http.StatusNoContent))
				Expect(rec.Header().Get("Access-Control-Allow-Methods")).To(ContainSubstring("POST"))
				Expect(fakeMixer.MixCallCount()).To(BeZero())
			})
		})
	})
})

var _ = Describe("New", func() {
	It("requires a mixer", func() {
		_, err := server.New(server.Config{}, nil, nil)
		Expect(err).To(HaveOccurred())
	})

	It("rejects malformed origins", func() {
		_, err := server.New(server.Config{AllowedOrigins: []string{"localhost"}}, new(serverfakes.FakeMixer), nil)
		Expect(err).To(MatchError(ContainSubstring("localhost")))
	})

	It("rejects a negative default crossfade", func() {
		_, err := server.New(server.Config{DefaultCrossfade: -time.Second}, new(serverfakes.FakeMixer), nil)
		Expect(err).To(HaveOccurred())
	})
})
