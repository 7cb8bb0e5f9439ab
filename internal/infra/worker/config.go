// Package worker holds the settings, health server and metrics of the
// scheduler process.
package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"trendscribe/internal/pkg/config"
)

// SchedulerConfig controls the generation timer and the worker's own
// servers. Every field has a default; invalid values from the environment
// fall back to it.
type SchedulerConfig struct {
	// Enabled starts the timer. cmd/api reads it to decide whether to embed
	// the scheduler. Default: true.
	Enabled bool

	// CronSchedule is a five-field cron expression. Default: "0 0 */2 * *"
	// (midnight every second day).
	CronSchedule string

	// Timezone is the IANA zone the schedule is evaluated in.
	// Default: "America/New_York".
	Timezone string

	// NotifyMaxConcurrent bounds concurrent notification deliveries.
	// Range 1-50. Default: 10.
	NotifyMaxConcurrent int

	// ShutdownTimeout bounds the wait for an in-flight run on shutdown.
	// Range 1s-10m. Default: 30s.
	ShutdownTimeout time.Duration

	// HealthPort serves /health and /health/ready. Range 1024-65535.
	// Default: 9091.
	HealthPort int

	// MetricsPort serves /metrics. Range 1024-65535. Default: 9090.
	MetricsPort int
}

// DefaultConfig returns the default scheduler settings.
func DefaultConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:             true,
		CronSchedule:        "0 0 */2 * *",
		Timezone:            "America/New_York",
		NotifyMaxConcurrent: 10,
		ShutdownTimeout:     30 * time.Second,
		HealthPort:          9091,
		MetricsPort:         9090,
	}
}

// Location returns the schedule's time zone.
func (c *SchedulerConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Validate reports every invalid field.
func (c *SchedulerConfig) Validate() error {
	var errs []error
	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateIntRange(c.NotifyMaxConcurrent, 1, 50); err != nil {
		errs = append(errs, fmt.Errorf("notify max concurrent: %w", err))
	}
	if err := config.ValidateDuration(c.ShutdownTimeout, time.Second, 10*time.Minute); err != nil {
		errs = append(errs, fmt.Errorf("shutdown timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := config.ValidateIntRange(c.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}
	return errors.Join(errs...)
}

// LoadConfigFromEnv loads scheduler settings. It never fails: each invalid
// value is logged, counted in metrics and replaced by its default.
//
// Environment variables:
//   - SCHEDULER_ENABLED (default: true)
//   - SCHEDULE_CRON (default: "0 0 */2 * *")
//   - SCHEDULE_TIMEZONE (default: "America/New_York")
//   - NOTIFY_MAX_CONCURRENT (default: 10)
//   - SHUTDOWN_TIMEOUT (default: 30s)
//   - HEALTH_PORT (default: 9091)
//   - METRICS_PORT (default: 9090)
func LoadConfigFromEnv(logger *slog.Logger, metrics *config.ConfigMetrics) SchedulerConfig {
	cfg := DefaultConfig()
	fallback := false

	note := func(field, warning string) {
		fallback = true
		metrics.RecordFallback(field)
		logger.Warn("configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", warning))
	}

	if r := config.LoadEnvBool("SCHEDULER_ENABLED", cfg.Enabled); r.FallbackApplied {
		note("scheduler_enabled", r.Warning)
	} else {
		cfg.Enabled = r.Value
	}

	if r := config.LoadEnvString("SCHEDULE_CRON", cfg.CronSchedule, config.ValidateCronSchedule); r.FallbackApplied {
		note("cron_schedule", r.Warning)
	} else {
		cfg.CronSchedule = r.Value
	}

	if r := config.LoadEnvString("SCHEDULE_TIMEZONE", cfg.Timezone, config.ValidateTimezone); r.FallbackApplied {
		note("timezone", r.Warning)
	} else {
		cfg.Timezone = r.Value
	}

	if r := config.LoadEnvInt("NOTIFY_MAX_CONCURRENT", cfg.NotifyMaxConcurrent, func(v int) error {
		return config.ValidateIntRange(v, 1, 50)
	}); r.FallbackApplied {
		note("notify_max_concurrent", r.Warning)
	} else {
		cfg.NotifyMaxConcurrent = r.Value
	}

	if r := config.LoadEnvDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, time.Second, 10*time.Minute)
	}); r.FallbackApplied {
		note("shutdown_timeout", r.Warning)
	} else {
		cfg.ShutdownTimeout = r.Value
	}

	port := func(v int) error { return config.ValidateIntRange(v, 1024, 65535) }
	if r := config.LoadEnvInt("HEALTH_PORT", cfg.HealthPort, port); r.FallbackApplied {
		note("health_port", r.Warning)
	} else {
		cfg.HealthPort = r.Value
	}
	if r := config.LoadEnvInt("METRICS_PORT", cfg.MetricsPort, port); r.FallbackApplied {
		note("metrics_port", r.Warning)
	} else {
		cfg.MetricsPort = r.Value
	}

	metrics.SetFallbackActive(fallback)
	metrics.RecordLoadTimestamp()
	return cfg
}
