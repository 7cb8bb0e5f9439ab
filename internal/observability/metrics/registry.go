// Package metrics holds the process-wide Prometheus series for HTTP,
// generation runs, the news gateway and the database pool.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// path is the normalized route, see pathutil.NormalizePath.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests served",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Time to serve an HTTP request",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "Response body size",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of in-flight HTTP requests",
		},
	)
)

var (
	GenerationRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_runs_total",
			Help: "Total generation triggers by source and outcome",
		},
		[]string{"trigger", "outcome"}, // outcome: success, busy, generation_failed, persistence_failed, timeout
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_duration_seconds",
			Help:    "Time taken by an accepted generation run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
		[]string{"backend"},
	)

	GenerationRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "generation_running",
			Help: "1 while a generation run is in progress",
		},
	)

	PostsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "generated_posts_total",
			Help: "Number of generated posts in the database",
		},
	)
)

var (
	NewsFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_fetch_total",
			Help: "Total news gateway fetches by outcome",
		},
		[]string{"outcome"}, // outcome: hit, miss, invalid_topic, rate_limited, provider_error, timeout
	)

	NewsProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "news_provider_duration_seconds",
			Help:    "Time taken by a news provider search",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	NewsArticlesFilteredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "news_articles_filtered_total",
			Help: "Total articles dropped for empty or excluded titles",
		},
	)
)

var (
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Post store query latency",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Pool connections in use",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Pool connections idle",
		},
	)
)

// RecordHTTPRequest skips the size histogram for empty bodies.
func RecordHTTPRequest(method, path, status string, duration time.Duration, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}
