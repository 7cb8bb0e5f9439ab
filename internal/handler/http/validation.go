package http

import (
	"net/http"

	"trendscribe/internal/handler/http/respond"
)

const (
	// MaxRequestBodyBytes caps request bodies. The API takes no uploads.
	MaxRequestBodyBytes = 1 << 20

	maxPathLength = 2048
)

// InputValidation rejects overlong paths with 414 and caps the request body
// at maxBodyBytes (MaxRequestBodyBytes when <= 0).
func InputValidation(maxBodyBytes int64) Middleware {
	if maxBodyBytes <= 0 {
		maxBodyBytes = MaxRequestBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.URL.Path) > maxPathLength || len(r.URL.RawQuery) > maxPathLength {
				respond.Message(w, http.StatusRequestURITooLong, "URI too long")
				return
			}
			if r.ContentLength > maxBodyBytes {
				respond.Message(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			next.ServeHTTP(w, r)
		})
	}
}
