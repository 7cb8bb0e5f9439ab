package config

import (
	"fmt"
	"time"
)

// ValidatePositiveDuration rejects zero and negative durations.
func ValidatePositiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("want a positive duration, got %v", d)
	}
	return nil
}

// ValidateDurationRange checks lo <= d <= hi.
func ValidateDurationRange(d, lo, hi time.Duration) error {
	switch {
	case lo > hi:
		return fmt.Errorf("bad duration bounds [%v, %v]", lo, hi)
	case d < lo || d > hi:
		return fmt.Errorf("duration %v not in [%v, %v]", d, lo, hi)
	}
	return nil
}

func ValidateFloatRange(v, lo, hi float64) error {
	if v < lo || v > hi {
		return fmt.Errorf("value %v not in [%v, %v]", v, lo, hi)
	}
	return nil
}
