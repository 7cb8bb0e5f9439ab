package generator

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsRecorder records backend call outcomes.
type MetricsRecorder interface {
	RecordRequest(backend, status string, duration time.Duration)
	RecordOutputLength(backend string, runes int)
}

// PrometheusMetrics implements MetricsRecorder.
type PrometheusMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	outputLength    *prometheus.HistogramVec
}

// NewPrometheusMetrics registers the generator metrics with reg, reusing
// collectors that are already registered.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &PrometheusMetrics{
		requestsTotal: registerOrExisting(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "generator_requests_total",
				Help: "Total generation backend calls by backend and status",
			},
			[]string{"backend", "status"}, // status: success|error|circuit_open
		)),
		requestDuration: registerOrExisting(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "generator_request_duration_seconds",
				Help:    "Generation backend call duration in seconds",
				Buckets: []float64{1, 5, 10, 20, 30, 60, 90, 120, 180},
			},
			[]string{"backend"},
		)),
		outputLength: registerOrExisting(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "generator_output_length_runes",
				Help:    "Length of generated text in characters",
				Buckets: prometheus.ExponentialBuckets(250, 2, 8),
			},
			[]string{"backend"},
		)),
	}
}

func registerOrExisting[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

func (m *PrometheusMetrics) RecordRequest(backend, status string, duration time.Duration) {
	m.requestsTotal.WithLabelValues(backend, status).Inc()
	m.requestDuration.WithLabelValues(backend).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordOutputLength(backend string, runes int) {
	m.outputLength.WithLabelValues(backend).Observe(float64(runes))
}

type noopMetrics struct{}

func (noopMetrics) RecordRequest(string, string, time.Duration) {}
func (noopMetrics) RecordOutputLength(string, int)              {}
