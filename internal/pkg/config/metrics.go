package config

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// ConfigMetrics tracks fail-open configuration loads for one component:
//   - <component>_config_load_timestamp
//   - <component>_config_validation_errors_total{field}
//   - <component>_config_fallbacks_total{field}
//   - <component>_config_fallback_active
type ConfigMetrics struct {
	LoadTimestamp         prometheus.Gauge
	ValidationErrorsTotal *prometheus.CounterVec
	FallbacksTotal        *prometheus.CounterVec
	FallbackActive        prometheus.Gauge
}

// NewConfigMetrics registers the metrics for component with reg. A nil reg
// uses the default registerer. Registering the same component twice returns
// the collectors already registered.
func NewConfigMetrics(component string, reg prometheus.Registerer) *ConfigMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &ConfigMetrics{
		LoadTimestamp: RegisterOrExisting(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: component + "_config_load_timestamp",
			Help: "Unix timestamp of the last " + component + " configuration load",
		})),
		ValidationErrorsTotal: RegisterOrExisting(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: component + "_config_validation_errors_total",
			Help: "Total " + component + " configuration validation errors by field",
		}, []string{"field"})),
		FallbacksTotal: RegisterOrExisting(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: component + "_config_fallbacks_total",
			Help: "Total " + component + " configuration fallbacks to defaults by field",
		}, []string{"field"})),
		FallbackActive: RegisterOrExisting(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: component + "_config_fallback_active",
			Help: "1 if any " + component + " setting fell back to its default, 0 otherwise",
		})),
	}
}

// RegisterOrExisting registers c with reg and returns it, or returns the
// equal collector that is already registered.
func RegisterOrExisting[C prometheus.Collector](reg prometheus.Registerer, c C) C {
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

func (m *ConfigMetrics) RecordLoadTimestamp() {
	m.LoadTimestamp.SetToCurrentTime()
}

// RecordFallback counts a rejected value for field.
func (m *ConfigMetrics) RecordFallback(field string) {
	m.ValidationErrorsTotal.WithLabelValues(field).Inc()
	m.FallbacksTotal.WithLabelValues(field).Inc()
}

func (m *ConfigMetrics) SetFallbackActive(active bool) {
	if active {
		m.FallbackActive.Set(1)
		return
	}
	m.FallbackActive.Set(0)
}
