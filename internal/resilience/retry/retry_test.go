package retry

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:    attempts,
		InitialDelay:   5 * time.Millisecond,
		MaxDelay:       20 * time.Millisecond,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

func TestWithBackoff_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithBackoff_RecoversFromConnRefused(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), fastConfig(4), func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("dial tcp: %w", syscall.ECONNREFUSED)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithBackoff_ExhaustsAttempts(t *testing.T) {
	calls := 0
	want := fmt.Errorf("ping: %w", driver.ErrBadConn)
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		calls++
		return want
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, want)
	assert.Equal(t, 3, calls)
}

func TestWithBackoff_StopsOnNonRetryable(t *testing.T) {
	calls := 0
	want := errors.New("relation \"generated_posts\" does not exist")
	err := WithBackoff(context.Background(), fastConfig(5), func() error {
		calls++
		return want
	})

	assert.Same(t, want, err)
	assert.Equal(t, 1, calls)
}

func TestWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := WithBackoff(ctx, fastConfig(5), func() error {
		calls++
		cancel()
		return driver.ErrBadConn
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestWithBackoff_CustomRetryable(t *testing.T) {
	errFlaky := errors.New("flaky")
	cfg := fastConfig(3)
	cfg.Retryable = func(err error) bool { return errors.Is(err, errFlaky) }

	calls := 0
	err := WithBackoff(context.Background(), cfg, func() error {
		calls++
		return errFlaky
	})

	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 3, calls)
}

func TestWithBackoff_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_ = WithBackoff(context.Background(), Config{}, func() error {
		calls++
		return errors.New("boom")
	})
	assert.Equal(t, 1, calls)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", fmt.Errorf("ping: %w", context.DeadlineExceeded), false},
		{"bad conn", driver.ErrBadConn, true},
		{"conn reset", syscall.ECONNRESET, true},
		{"refused", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), true},
		{"net timeout", &net.OpError{Op: "dial", Err: timeoutErr{}}, true},
		{"plain", errors.New("syntax error at or near"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestPresets(t *testing.T) {
	db := DBStartupConfig()
	assert.Equal(t, 8, db.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, db.InitialDelay)

	wh := WebhookConfig()
	assert.Equal(t, 2, wh.MaxAttempts)
}

func TestAddJitter(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 50; i++ {
		got := addJitter(base, 0.2)
		assert.GreaterOrEqual(t, got, base)
		assert.LessOrEqual(t, got, base+20*time.Millisecond)
	}
	assert.Equal(t, base, addJitter(base, 0))
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }
