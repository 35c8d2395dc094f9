// SPDX-License-Identifier: EPL-2.0

package server

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"

	"github.com/ik5/audiomancer/internal/logging"
)

const (
	requestIDHeader = "X-Request-Id"
	maxRequestIDLen = 128
)

type idGenerator func() string

// requestIDMiddleware reuses a caller supplied X-Request-Id or mints one,
// echoes it on the response and stores a logger carrying it in the context.
func requestIDMiddleware(logger log.Interface, generator idGenerator, next http.Handler) http.Handler {
	if generator == nil {
		generator = newRequestID
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = generator()
		}

		ctx := logging.ContextWithRequestID(r.Context(), logger, requestID)
		w.Header().Set(requestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func newRequestID() string {
	var buffer [16]byte
	if _, err := rand.Read(buffer[:]); err == nil {
		return hex.EncodeToString(buffer[:])
	}
	return strconv.FormatInt(time.Now().UnixNano(), 10)
}
