package circuitbreaker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Name:             "test-circuit",
		MaxRequests:      1,
		Interval:         10 * time.Second,
		Timeout:          50 * time.Millisecond,
		FailureThreshold: 0.6,
		MinRequests:      3,
	}
}

func TestNew(t *testing.T) {
	cb := New(testConfig())

	assert.Equal(t, "test-circuit", cb.Name())
	assert.Equal(t, gobreaker.StateClosed, cb.State())
	assert.False(t, cb.IsOpen())
}

func TestDo_ReturnsTypedValue(t *testing.T) {
	cb := New(testConfig())

	got, err := Do(cb, func() (string, error) { return "draft", nil })
	require.NoError(t, err)
	assert.Equal(t, "draft", got)
}

func TestDo_NilInterfaceResult(t *testing.T) {
	cb := New(testConfig())

	got, err := Do(cb, func() (error, error) { return nil, nil })
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCircuitBreaker_TripsOpen(t *testing.T) {
	var transitions atomic.Int32
	cfg := testConfig()
	cfg.OnStateChange = func(_ string, _, to gobreaker.State) {
		if to == gobreaker.StateOpen {
			transitions.Add(1)
		}
	}
	cb := New(cfg)

	boom := errors.New("upstream 500")
	for i := 0; i < 3; i++ {
		_, err := Do(cb, func() (int, error) { return 0, boom })
		assert.ErrorIs(t, err, boom)
	}

	assert.True(t, cb.IsOpen())
	assert.Equal(t, int32(1), transitions.Load())

	called := false
	_, err := Do(cb, func() (int, error) {
		called = true
		return 1, nil
	})
	assert.False(t, called, "open breaker must not call through")
	assert.True(t, IsOpenError(err))
}

func TestCircuitBreaker_CanceledDoesNotTrip(t *testing.T) {
	cb := New(testConfig())

	for i := 0; i < 5; i++ {
		_, _ = Do(cb, func() (int, error) { return 0, context.Canceled })
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	cb := New(testConfig())

	for i := 0; i < 3; i++ {
		_, _ = Do(cb, func() (int, error) { return 0, errors.New("x") })
	}
	require.True(t, cb.IsOpen())

	time.Sleep(80 * time.Millisecond)

	_, err := Do(cb, func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_MinRequests(t *testing.T) {
	cfg := testConfig()
	cfg.MinRequests = 10
	cb := New(cfg)

	for i := 0; i < 9; i++ {
		_, _ = Do(cb, func() (int, error) { return 0, errors.New("x") })
	}
	assert.False(t, cb.IsOpen())
}

func TestPresets(t *testing.T) {
	gen := GenerationConfig("deepseek")
	assert.Equal(t, "deepseek-generation", gen.Name)
	assert.Equal(t, uint32(3), gen.MinRequests)

	news := NewsProviderConfig("newsapi")
	assert.Equal(t, "newsapi-news", news.Name)
	assert.Equal(t, 30*time.Second, news.Timeout)

	db := DBConfig()
	assert.Equal(t, 1.0, db.FailureThreshold)
	assert.Equal(t, uint32(5), db.MinRequests)
}

func TestIsOpenError(t *testing.T) {
	assert.True(t, IsOpenError(gobreaker.ErrOpenState))
	assert.True(t, IsOpenError(gobreaker.ErrTooManyRequests))
	assert.False(t, IsOpenError(errors.New("other")))
}
