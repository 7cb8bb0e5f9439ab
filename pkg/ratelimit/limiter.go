package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// cleaner is implemented by algorithms that keep per-key state.
type cleaner interface {
	Cleanup(maxAge time.Duration) int
}

// Limiter throttles requests per key.
type Limiter struct {
	limiterType string
	config      RateLimitConfig
	store       RateLimitStore
	algorithm   RateLimitAlgorithm
	metrics     RateLimitMetrics
	clock       Clock
}

// NewLimiter assembles a Limiter from its parts. Zero config values take
// defaults; nil metrics discard observations.
func NewLimiter(
	limiterType string,
	config RateLimitConfig,
	store RateLimitStore,
	algorithm RateLimitAlgorithm,
	metrics RateLimitMetrics,
	clock Clock,
) *Limiter {
	config.ApplyDefaults()
	if metrics == nil {
		metrics = NewNoOpMetrics()
	}
	if clock == nil {
		clock = &SystemClock{}
	}

	return &Limiter{
		limiterType: limiterType,
		config:      config,
		store:       store,
		algorithm:   algorithm,
		metrics:     metrics,
		clock:       clock,
	}
}

// NewInMemoryLimiter builds a Limiter backed by an InMemoryRateLimitStore
// and the algorithm named by config.Algorithm.
func NewInMemoryLimiter(limiterType string, config RateLimitConfig, metrics RateLimitMetrics, clock Clock) *Limiter {
	config.ApplyDefaults()
	if metrics == nil {
		metrics = NewNoOpMetrics()
	}

	store := NewInMemoryRateLimitStore(InMemoryStoreConfig{
		MaxKeys: config.MaxActiveKeys,
		OnEvict: func(count int) { metrics.RecordEviction(limiterType, count) },
	})

	var algorithm RateLimitAlgorithm
	switch config.Algorithm {
	case AlgorithmSlidingWindow:
		algorithm = NewSlidingWindowAlgorithm(clock)
	default:
		algorithm = NewFixedWindowAlgorithm(clock)
	}

	return NewLimiter(limiterType, config, store, algorithm, metrics, clock)
}

// Config returns the effective configuration.
func (l *Limiter) Config() RateLimitConfig {
	return l.config
}

// ActiveKeys returns the number of keys the store currently tracks.
func (l *Limiter) ActiveKeys(ctx context.Context) (int, error) {
	return l.store.KeyCount(ctx)
}

// Allow checks and records one request for key. A disabled limiter always
// allows.
func (l *Limiter) Allow(ctx context.Context, key string) (*RateLimitDecision, error) {
	if !l.config.Enabled {
		now := l.clock.Now()
		return NewAllowedDecision(key, l.limiterType, l.config.MaxRequests, l.config.MaxRequests, now, now), nil
	}

	start := time.Now()
	decision, err := l.algorithm.IsAllowed(ctx, key, l.store, l.config.MaxRequests, l.config.Window)
	l.metrics.RecordCheckDuration(l.limiterType, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("rate limit check: %w", err)
	}

	decision.LimiterType = l.limiterType
	if decision.Allowed {
		l.metrics.RecordAllowed(l.limiterType)
	} else {
		l.metrics.RecordDenied(l.limiterType)
	}

	slog.Debug("rate limit check completed",
		slog.String("limiter_type", l.limiterType),
		slog.String("algorithm", l.algorithm.Name()),
		slog.String("key", key),
		slog.Int("remaining", decision.Remaining),
		slog.Int("limit", decision.Limit),
		slog.Bool("allowed", decision.Allowed),
	)

	return decision, nil
}

// Cleanup purges timestamps older than two windows and refreshes the
// active-keys gauge.
func (l *Limiter) Cleanup(ctx context.Context) error {
	maxAge := 2 * l.config.Window
	if err := l.store.Cleanup(ctx, l.clock.Now().Add(-maxAge)); err != nil {
		return fmt.Errorf("rate limit cleanup: %w", err)
	}
	if c, ok := l.algorithm.(cleaner); ok {
		c.Cleanup(maxAge)
	}

	keys, err := l.store.KeyCount(ctx)
	if err != nil {
		return fmt.Errorf("rate limit key count: %w", err)
	}
	l.metrics.SetActiveKeys(l.limiterType, keys)
	return nil
}

// RunCleanup calls Cleanup every CleanupInterval until ctx is done.
func (l *Limiter) RunCleanup(ctx context.Context) {
	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()

	slog.Info("rate limit cleanup started",
		slog.String("limiter_type", l.limiterType),
		slog.Duration("interval", l.config.CleanupInterval),
		slog.Duration("window", l.config.Window))

	for {
		select {
		case <-ctx.Done():
			slog.Info("rate limit cleanup stopped",
				slog.String("limiter_type", l.limiterType))
			return
		case <-ticker.C:
			if err := l.Cleanup(ctx); err != nil {
				slog.Error("rate limit cleanup failed",
					slog.String("limiter_type", l.limiterType),
					slog.Any("error", err))
			}
		}
	}
}
