package middleware

import (
	"context"
	"net/http"

	"wardrobe-client/internal/backend"
	"wardrobe-client/pkg/uid"
)

const maxRequestIDLength = 128

// RequestID tags each companion request with an id and carries it into the
// backend calls the request makes, so one X-Request-ID follows a capture from
// the extension through to the wardrobe API. A caller-supplied id is kept
// when it is short printable ASCII; anything else is replaced.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if !acceptableRequestID(requestID) {
			requestID = uid.New()
		}
		w.Header().Set("X-Request-ID", requestID)

		ctx := backend.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the id assigned to the current request.
func GetRequestID(ctx context.Context) string {
	return backend.RequestID(ctx)
}

func acceptableRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
