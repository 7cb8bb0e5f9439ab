package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"trendscribe/internal/handler/http/respond"
)

// Timeout returns middleware that answers 504 when a handler runs longer
// than duration. The request context is cancelled so the handler can stop.
// Paths in exempt (exact match) are passed through untouched; on-demand
// generation is bounded by its own timeout instead.
//
// Only one of the handler and the timeout path writes the response.
func Timeout(duration time.Duration, exempt ...string) Middleware {
	skip := make(map[string]bool, len(exempt))
	for _, p := range exempt {
		skip[p] = true
	}

	return func(next http.Handler) http.Handler {
		if duration <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), duration)
			defer cancel()
			r = r.WithContext(ctx)

			tw := &timeoutResponseWriter{w: w, header: make(http.Header)}
			done := make(chan struct{})
			panicked := make(chan any, 1)

			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicked <- p
					}
				}()
				next.ServeHTTP(tw, r)
				close(done)
			}()

			select {
			case p := <-panicked:
				panic(p)
			case <-done:
				tw.mu.Lock()
				defer tw.mu.Unlock()
				if !tw.wroteHeader {
					tw.writeHeaderLocked(http.StatusOK)
				}
			case <-ctx.Done():
				tw.mu.Lock()
				defer tw.mu.Unlock()
				tw.timedOut = true
				if !tw.wroteHeader {
					respond.Message(w, http.StatusGatewayTimeout, "request timeout")
				}
			}
		})
	}
}

// timeoutResponseWriter buffers headers until the status line so the
// handler goroutine never touches the real header map after a timeout.
type timeoutResponseWriter struct {
	w      http.ResponseWriter
	header http.Header

	mu          sync.Mutex
	wroteHeader bool
	timedOut    bool
}

func (tw *timeoutResponseWriter) Header() http.Header {
	return tw.header
}

func (tw *timeoutResponseWriter) WriteHeader(statusCode int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut || tw.wroteHeader {
		return
	}
	tw.writeHeaderLocked(statusCode)
}

func (tw *timeoutResponseWriter) writeHeaderLocked(statusCode int) {
	dst := tw.w.Header()
	for k, vv := range tw.header {
		dst[k] = vv
	}
	tw.wroteHeader = true
	tw.w.WriteHeader(statusCode)
}

func (tw *timeoutResponseWriter) Write(data []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	if !tw.wroteHeader {
		tw.writeHeaderLocked(http.StatusOK)
	}
	return tw.w.Write(data)
}
