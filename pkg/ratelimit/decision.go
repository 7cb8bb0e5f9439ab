package ratelimit

import (
	"fmt"
	"time"
)

// RateLimitDecision is the outcome of a single throttle check.
type RateLimitDecision struct {
	// Key is the throttled identity (usually a client IP).
	Key string

	Allowed bool

	// Limit is the configured maximum per window.
	Limit int

	// Remaining is the number of requests left in the current window.
	Remaining int

	// ResetAt is when the current window ends.
	ResetAt time.Time

	// RetryAfter is the time until ResetAt, measured from the check.
	RetryAfter time.Duration

	// LimiterType labels the limiter in logs and metrics.
	LimiterType string
}

func (d *RateLimitDecision) String() string {
	if d.Allowed {
		return fmt.Sprintf(
			"RateLimitDecision{Allowed: true, Key: %s, Type: %s, Remaining: %d/%d, ResetAt: %s}",
			d.Key, d.LimiterType, d.Remaining, d.Limit, d.ResetAt.Format(time.RFC3339),
		)
	}

	return fmt.Sprintf(
		"RateLimitDecision{Allowed: false, Key: %s, Type: %s, Limit: %d, RetryAfter: %s, ResetAt: %s}",
		d.Key, d.LimiterType, d.Limit, d.RetryAfter, d.ResetAt.Format(time.RFC3339),
	)
}

func (d *RateLimitDecision) IsDenied() bool {
	return !d.Allowed
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds, for the
// Retry-After header.
func (d *RateLimitDecision) RetryAfterSeconds() int64 {
	if d.RetryAfter <= 0 {
		return 0
	}
	seconds := int64(d.RetryAfter / time.Second)
	if d.RetryAfter%time.Second != 0 {
		seconds++
	}
	return seconds
}

// NewAllowedDecision builds an allowing decision checked at now.
func NewAllowedDecision(key, limiterType string, limit, remaining int, now, resetAt time.Time) *RateLimitDecision {
	if remaining < 0 {
		remaining = 0
	}
	return &RateLimitDecision{
		Key:         key,
		Allowed:     true,
		Limit:       limit,
		Remaining:   remaining,
		ResetAt:     resetAt,
		RetryAfter:  clampNonNegative(resetAt.Sub(now)),
		LimiterType: limiterType,
	}
}

// NewDeniedDecision builds a denying decision checked at now.
func NewDeniedDecision(key, limiterType string, limit int, now, resetAt time.Time) *RateLimitDecision {
	return &RateLimitDecision{
		Key:         key,
		Allowed:     false,
		Limit:       limit,
		Remaining:   0,
		ResetAt:     resetAt,
		RetryAfter:  clampNonNegative(resetAt.Sub(now)),
		LimiterType: limiterType,
	}
}

func clampNonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
