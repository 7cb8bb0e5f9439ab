package ratelimit

import (
	"context"
	"sync"
	"time"
)

// FixedWindowAlgorithm opens a window on a key's first request and counts
// requests until the window has elapsed. The next request after that opens
// a fresh window with a zero count.
type FixedWindowAlgorithm struct {
	clock Clock

	mu     sync.Mutex
	starts map[string]time.Time
}

func NewFixedWindowAlgorithm(clock Clock) *FixedWindowAlgorithm {
	if clock == nil {
		clock = &SystemClock{}
	}

	return &FixedWindowAlgorithm{
		clock:  clock,
		starts: make(map[string]time.Time),
	}
}

func (a *FixedWindowAlgorithm) Name() string {
	return string(AlgorithmFixedWindow)
}

func (a *FixedWindowAlgorithm) IsAllowed(
	ctx context.Context,
	key string,
	store RateLimitStore,
	limit int,
	window time.Duration,
) (*RateLimitDecision, error) {
	now := a.clock.Now()
	start := a.windowStart(key, now, window)
	resetAt := start.Add(window)

	// The store counts strictly after cutoff; include a request at start.
	cutoff := start.Add(-time.Nanosecond)

	allowed, count, err := checkAndRecord(ctx, key, store, limit, now, cutoff)
	if err != nil {
		return nil, err
	}
	if allowed {
		return NewAllowedDecision(key, "", limit, limit-count, now, resetAt), nil
	}
	return NewDeniedDecision(key, "", limit, now, resetAt), nil
}

func (a *FixedWindowAlgorithm) windowStart(key string, now time.Time, window time.Duration) time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()

	start, ok := a.starts[key]
	if !ok || now.Before(start) || !now.Before(start.Add(window)) {
		start = now
		a.starts[key] = start
	}
	return start
}

// Cleanup forgets windows that opened more than maxAge ago and returns how
// many it removed.
func (a *FixedWindowAlgorithm) Cleanup(maxAge time.Duration) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	cutoff := a.clock.Now().Add(-maxAge)
	removed := 0
	for key, start := range a.starts {
		if start.Before(cutoff) {
			delete(a.starts, key)
			removed++
		}
	}
	return removed
}
