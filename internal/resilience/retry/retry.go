// Package retry runs an operation again with exponential backoff and jitter.
//
// Only infrastructure calls go through it: the startup database ping and
// webhook deliveries. Generation runs and news fetches are never retried.
package retry

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"syscall"
	"time"
)

// Config describes a backoff schedule. MaxAttempts counts the first call;
// values below 1 mean a single call. After each failure the delay grows by
// Multiplier, is capped at MaxDelay, and gains up to JitterFraction extra.
type Config struct {
	MaxAttempts    int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	Multiplier     float64
	JitterFraction float64

	// Retryable replaces IsRetryable when set.
	Retryable func(error) bool
}

// DBStartupConfig waits about a minute for the database container.
func DBStartupConfig() Config {
	return Config{MaxAttempts: 8, InitialDelay: 500 * time.Millisecond, MaxDelay: 15 * time.Second, Multiplier: 2, JitterFraction: 0.1}
}

func WebhookConfig() Config {
	return Config{MaxAttempts: 2, InitialDelay: time.Second, MaxDelay: 5 * time.Second, Multiplier: 2, JitterFraction: 0.1}
}

// WithBackoff calls fn until it succeeds, returns an error the config does
// not retry, runs out of attempts, or ctx ends. A non-retryable error is
// returned as is.
func WithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	retryable := cfg.Retryable
	if retryable == nil {
		retryable = IsRetryable
	}
	attempts := max(cfg.MaxAttempts, 1)
	delay := cfg.InitialDelay

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil {
			if attempt > 1 {
				slog.Info("operation succeeded after retry", slog.Int("attempt", attempt))
			}
			return nil
		}
		if !retryable(err) {
			return err
		}
		if attempt == attempts {
			return fmt.Errorf("gave up after %d attempts: %w", attempts, err)
		}

		slog.Warn("operation failed, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.Duration("delay", delay),
			slog.Any("error", err))

		t := time.NewTimer(delay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("retry aborted: %w", ctx.Err())
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if cfg.MaxDelay > 0 {
			delay = min(delay, cfg.MaxDelay)
		}
		delay = addJitter(delay, cfg.JitterFraction)
	}
}

// IsRetryable treats dropped driver connections, network timeouts and
// refused or reset sockets as transient. Context errors never are.
func IsRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ETIMEDOUT),
		errors.Is(err, syscall.ENETUNREACH):
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func addJitter(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 {
		return d
	}
	fraction = min(fraction, 1)
	// #nosec G404 -- jitter does not need cryptographic randomness.
	return d + time.Duration(rand.Float64()*float64(d)*fraction)
}
