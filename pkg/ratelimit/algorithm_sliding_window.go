package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// SlidingWindowAlgorithm allows at most limit requests in any trailing
// window. It guards against backwards clock jumps by never moving a key's
// timestamp earlier than the last one it saw.
type SlidingWindowAlgorithm struct {
	clock Clock

	mu             sync.Mutex
	lastTimestamps map[string]time.Time
}

func NewSlidingWindowAlgorithm(clock Clock) *SlidingWindowAlgorithm {
	if clock == nil {
		clock = &SystemClock{}
	}

	return &SlidingWindowAlgorithm{
		clock:          clock,
		lastTimestamps: make(map[string]time.Time),
	}
}

func (a *SlidingWindowAlgorithm) Name() string {
	return string(AlgorithmSlidingWindow)
}

func (a *SlidingWindowAlgorithm) IsAllowed(
	ctx context.Context,
	key string,
	store RateLimitStore,
	limit int,
	window time.Duration,
) (*RateLimitDecision, error) {
	now := a.validTimestamp(key)
	cutoff := now.Add(-window)

	// Worst case: the window fully clears one window from now.
	resetAt := now.Add(window)

	allowed, count, err := checkAndRecord(ctx, key, store, limit, now, cutoff)
	if err != nil {
		return nil, err
	}
	if allowed {
		return NewAllowedDecision(key, "", limit, limit-count, now, resetAt), nil
	}
	return NewDeniedDecision(key, "", limit, now, resetAt), nil
}

// validTimestamp returns the current time for key, or the last time seen for
// key when the clock has moved backwards.
func (a *SlidingWindowAlgorithm) validTimestamp(key string) time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock.Now()

	lastSeen, exists := a.lastTimestamps[key]
	if exists && now.Before(lastSeen) {
		slog.Warn("clock skew detected, using last valid timestamp",
			slog.String("key", key),
			slog.Time("now", now),
			slog.Time("last_seen", lastSeen),
			slog.Duration("skew", lastSeen.Sub(now)),
		)
		return lastSeen
	}

	a.lastTimestamps[key] = now
	return now
}

// Cleanup forgets keys not seen within maxAge and returns how many it removed.
func (a *SlidingWindowAlgorithm) Cleanup(maxAge time.Duration) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	cutoff := a.clock.Now().Add(-maxAge)
	removed := 0
	for key, ts := range a.lastTimestamps {
		if ts.Before(cutoff) {
			delete(a.lastTimestamps, key)
			removed++
		}
	}
	return removed
}

// checkAndRecord counts key's requests after cutoff and records now when
// below limit. It uses the store's atomic path when available.
func checkAndRecord(
	ctx context.Context,
	key string,
	store RateLimitStore,
	limit int,
	now, cutoff time.Time,
) (bool, int, error) {
	if atomicStore, ok := store.(AtomicRateLimitStore); ok {
		allowed, count, err := atomicStore.CheckAndAddRequest(ctx, key, now, cutoff, limit)
		if err != nil {
			return false, 0, fmt.Errorf("failed to check and add request: %w", err)
		}
		return allowed, count, nil
	}

	// Non-atomic fallback: concurrent callers may overshoot limit slightly.
	count, err := store.GetRequestCount(ctx, key, cutoff)
	if err != nil {
		return false, 0, fmt.Errorf("failed to get request count: %w", err)
	}
	if count >= limit {
		return false, count, nil
	}
	if err := store.AddRequest(ctx, key, now); err != nil {
		return false, 0, fmt.Errorf("failed to add request: %w", err)
	}
	return true, count + 1, nil
}
