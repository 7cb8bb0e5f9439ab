package http

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"trendscribe/internal/observability/metrics"
)

func TestMetricsMiddleware_PathNormalization(t *testing.T) {
	tests := []struct {
		path  string
		label string
		code  int
	}{
		{"/blogs/123", "/blogs/:id", http.StatusOK},
		{"/blogs/abc", "/blogs/:id", http.StatusBadRequest},
		{"/getUniqueBlog/9", "/getUniqueBlog/:id", http.StatusOK},
		{"/api/news/quantum%20computing", "/api/news/:topic", http.StatusTooManyRequests},
		{"/blogs", "/blogs", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, tt.label, strconv.Itoa(tt.code))
			before := testutil.ToFloat64(counter)

			h := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.code)
			}))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, before+1, testutil.ToFloat64(counter))
		})
	}
}

func TestMetricsMiddleware_ActiveConnectionsReturnToZero(t *testing.T) {
	var during float64
	h := MetricsMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		during = testutil.ToFloat64(metrics.ActiveConnections)
	}))

	before := testutil.ToFloat64(metrics.ActiveConnections)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/live", nil))

	assert.Equal(t, before+1, during)
	assert.Equal(t, before, testutil.ToFloat64(metrics.ActiveConnections))
}

func TestMetricsHandler(t *testing.T) {
	MetricsMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).
		ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ready", nil))

	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "http_requests_total"), "metrics output should contain http_requests_total")
	assert.Contains(t, body, `path="/ready"`)
}
