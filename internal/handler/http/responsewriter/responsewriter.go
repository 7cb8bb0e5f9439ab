// Package responsewriter captures the status and body size of a response
// for the access log, HTTP metrics and tracing middleware.
package responsewriter

import "net/http"

type ResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
	wrote  bool
}

// Wrap returns w with capture. The status reads 200 until a header is sent.
func Wrap(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

// WriteHeader forwards only the first call.
func (w *ResponseWriter) WriteHeader(code int) {
	if w.wrote {
		return
	}
	w.status, w.wrote = code, true
	w.ResponseWriter.WriteHeader(code)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	w.WriteHeader(http.StatusOK)
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

func (w *ResponseWriter) StatusCode() int   { return w.status }
func (w *ResponseWriter) BytesWritten() int { return w.size }
func (w *ResponseWriter) WroteHeader() bool { return w.wrote }

func (w *ResponseWriter) Flush() {
	w.WriteHeader(http.StatusOK)
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *ResponseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
