package notifier

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter is a token bucket guarding one webhook.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows up to burst requests immediately, then refills at
// requestsPerSecond.
//
// Example:
//
//	limiter := NewRateLimiter(0.5, 3) // 30 req/min, burst of 3
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Wait blocks until a token is available or ctx is done, and returns how
// long it waited.
func (r *RateLimiter) Wait(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	err := r.limiter.Wait(ctx)
	return time.Since(start), err
}

// Limit returns the sustained rate and burst.
func (r *RateLimiter) Limit() (float64, int) {
	return float64(r.limiter.Limit()), r.limiter.Burst()
}
