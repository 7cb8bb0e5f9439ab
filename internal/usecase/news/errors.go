// Package news provides the aggregation gateway: a sanitized, throttled and
// cached read path over an external news search provider.
package news

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for gateway fetches.
var (
	// ErrInvalidTopic is returned when nothing is left of the topic after
	// sanitization. No throttle slot, cache lookup or provider call is used.
	ErrInvalidTopic = errors.New("topic contains no valid characters")

	// ErrRateLimited is matched by *RateLimitedError.
	ErrRateLimited = errors.New("too many requests")

	// ErrProvider is matched by *ProviderError.
	ErrProvider = errors.New("news provider error")

	// ErrTimeout is returned when the provider call hit its deadline.
	ErrTimeout = errors.New("news provider timed out")
)

// RateLimitedError reports a throttled caller and when it may retry.
type RateLimitedError struct {
	RetryAfter time.Duration
	Limit      int
	ResetAt    time.Time
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}

// ProviderError reports a failed or unsuccessful provider search. Message
// is safe to show to callers.
type ProviderError struct {
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("news provider error: %s: %v", e.Message, e.Err)
	}
	return "news provider error: " + e.Message
}

func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// outcome is the metrics label for a fetch result.
func outcome(err error) string {
	switch {
	case err == nil:
		return "miss"
	case errors.Is(err, ErrInvalidTopic):
		return "invalid_topic"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	default:
		return "provider_error"
	}
}
