package ratelimit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements RateLimitMetrics with Prometheus collectors.
type PrometheusMetrics struct {
	requestsTotal  *prometheus.CounterVec
	checkDuration  *prometheus.HistogramVec
	activeKeys     *prometheus.GaugeVec
	evictionsTotal *prometheus.CounterVec
}

// NewPrometheusMetrics registers the limiter collectors with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limit_requests_total",
				Help: "Total rate limit checks by limiter type and outcome",
			},
			[]string{"limiter_type", "status"},
		),
		checkDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rate_limit_check_duration_seconds",
				Help:    "Duration of rate limit check operations",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
			[]string{"limiter_type"},
		),
		activeKeys: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rate_limit_active_keys",
				Help: "Current number of tracked keys by limiter type",
			},
			[]string{"limiter_type"},
		),
		evictionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limit_evictions_total",
				Help: "Total LRU evictions by limiter type",
			},
			[]string{"limiter_type"},
		),
	}

	m.requestsTotal = registerOrExisting(reg, m.requestsTotal)
	m.checkDuration = registerOrExisting(reg, m.checkDuration)
	m.activeKeys = registerOrExisting(reg, m.activeKeys)
	m.evictionsTotal = registerOrExisting(reg, m.evictionsTotal)

	return m
}

// registerOrExisting registers c, or returns the collector already
// registered under the same descriptor.
func registerOrExisting[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *PrometheusMetrics) RecordAllowed(limiterType string) {
	m.requestsTotal.WithLabelValues(limiterType, "allowed").Inc()
}

func (m *PrometheusMetrics) RecordDenied(limiterType string) {
	m.requestsTotal.WithLabelValues(limiterType, "denied").Inc()
}

func (m *PrometheusMetrics) RecordCheckDuration(limiterType string, duration time.Duration) {
	m.checkDuration.WithLabelValues(limiterType).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) SetActiveKeys(limiterType string, count int) {
	m.activeKeys.WithLabelValues(limiterType).Set(float64(count))
}

func (m *PrometheusMetrics) RecordEviction(limiterType string, count int) {
	m.evictionsTotal.WithLabelValues(limiterType).Add(float64(count))
}
