package ratelimit

import "time"

// NoOpMetrics discards all observations.
type NoOpMetrics struct{}

func NewNoOpMetrics() *NoOpMetrics {
	return &NoOpMetrics{}
}

func (m *NoOpMetrics) RecordAllowed(string) {}
func (m *NoOpMetrics) RecordDenied(string) {}
func (m *NoOpMetrics) RecordCheckDuration(string, time.Duration) {}
func (m *NoOpMetrics) SetActiveKeys(string, int) {}
func (m *NoOpMetrics) RecordEviction(string, int) {}
