package config

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	pkgconfig "trendscribe/pkg/config"
)

// ValidateCronSchedule accepts a standard five-field cron expression or a
// descriptor such as "@daily", as parsed by cron.ParseStandard.
func ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return fmt.Errorf("cron schedule cannot be empty")
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}

// ValidateTimezone accepts any IANA zone name known to time.LoadLocation.
func ValidateTimezone(timezone string) error {
	if timezone == "" {
		return fmt.Errorf("timezone cannot be empty")
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return nil
}

// ValidateIntRange reports an error unless min <= value <= max.
func ValidateIntRange(value, min, max int) error {
	if min > max {
		return fmt.Errorf("invalid range: min (%d) cannot be greater than max (%d)", min, max)
	}
	if value < min || value > max {
		return fmt.Errorf("value %d is outside [%d, %d]", value, min, max)
	}
	return nil
}

// ValidateDuration reports an error unless min <= d <= max.
func ValidateDuration(d, min, max time.Duration) error {
	return pkgconfig.ValidateDurationRange(d, min, max)
}
