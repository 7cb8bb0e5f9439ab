package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"trendscribe/internal/pkg/config"
)

// WorkerMetrics are the scheduler process metrics:
//   - scheduler_config_*: see config.ConfigMetrics
//   - scheduler_job_runs_total{outcome}
//   - scheduler_job_duration_seconds
//   - scheduler_job_last_success_timestamp
type WorkerMetrics struct {
	*config.ConfigMetrics

	JobRunsTotal        *prometheus.CounterVec
	JobDuration         prometheus.Histogram
	JobLastSuccessStamp prometheus.Gauge
}

// NewWorkerMetrics registers the worker metrics with reg, or with the default
// registerer when reg is nil.
func NewWorkerMetrics(reg prometheus.Registerer) *WorkerMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("scheduler", reg),
		JobRunsTotal: config.RegisterOrExisting(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scheduler_job_runs_total",
			Help: "Scheduled generation ticks by outcome (success, busy, failure)",
		}, []string{"outcome"})),
		JobDuration: config.RegisterOrExisting(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scheduler_job_duration_seconds",
			Help:    "Duration of scheduled generation ticks in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		})),
		JobLastSuccessStamp: config.RegisterOrExisting(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scheduler_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful scheduled run",
		})),
	}
}

// RecordJob records one tick.
func (m *WorkerMetrics) RecordJob(outcome string, duration time.Duration) {
	m.JobRunsTotal.WithLabelValues(outcome).Inc()
	m.JobDuration.Observe(duration.Seconds())
	if outcome == "success" {
		m.JobLastSuccessStamp.SetToCurrentTime()
	}
}
