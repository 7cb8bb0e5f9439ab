// Package ratelimit implements per-key request throttling.
//
// A Limiter combines a RateLimitStore (request timestamps per key) with a
// RateLimitAlgorithm (fixed or sliding window) and reports each decision to
// a RateLimitMetrics sink. Keys are opaque; callers typically use the client
// IP address.
package ratelimit

import (
	"context"
	"time"
)

// RateLimitStore records request timestamps per key.
//
// Implementations must be safe for concurrent use.
type RateLimitStore interface {
	// AddRequest records a request for key at timestamp.
	AddRequest(ctx context.Context, key string, timestamp time.Time) error

	// GetRequestCount returns the number of requests for key after cutoff.
	GetRequestCount(ctx context.Context, key string, cutoff time.Time) (int, error)

	// Cleanup drops timestamps at or before cutoff and removes empty keys.
	Cleanup(ctx context.Context, cutoff time.Time) error

	// KeyCount returns the number of tracked keys.
	KeyCount(ctx context.Context) (int, error)
}

// AtomicRateLimitStore can check and record a request in one step, so two
// concurrent requests for the same key never both take the last slot.
type AtomicRateLimitStore interface {
	RateLimitStore

	// CheckAndAddRequest counts the requests for key after cutoff and, when
	// the count is below limit, records timestamp. It returns whether the
	// request was recorded and the count including it.
	CheckAndAddRequest(ctx context.Context, key string, timestamp time.Time, cutoff time.Time, limit int) (allowed bool, count int, err error)
}

// RateLimitAlgorithm decides whether a request for key may proceed.
type RateLimitAlgorithm interface {
	IsAllowed(ctx context.Context, key string, store RateLimitStore, limit int, window time.Duration) (*RateLimitDecision, error)

	// Name identifies the algorithm in logs and metrics.
	Name() string
}

// RateLimitMetrics receives limiter observations.
type RateLimitMetrics interface {
	RecordAllowed(limiterType string)
	RecordDenied(limiterType string)
	RecordCheckDuration(limiterType string, duration time.Duration)
	SetActiveKeys(limiterType string, count int)
	RecordEviction(limiterType string, count int)
}

// Clock abstracts time so windows can be driven by tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (c *SystemClock) Now() time.Time {
	return time.Now()
}
