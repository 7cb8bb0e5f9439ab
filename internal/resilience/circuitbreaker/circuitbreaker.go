// Package circuitbreaker puts sony/gobreaker in front of the generation
// backends, the news provider, notification channels and the post store.
package circuitbreaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Config trips the breaker once at least MinRequests calls were seen in the
// current Interval and the failure ratio reaches FailureThreshold. After
// Timeout the breaker lets MaxRequests probe calls through.
type Config struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32

	// OnStateChange runs after the state change is logged.
	OnStateChange func(name string, from, to gobreaker.State)
}

// GenerationConfig trips on a small sample and stays open for ten minutes;
// runs are rare and each one is expensive.
func GenerationConfig(backend string) Config {
	return Config{
		Name:             backend + "-generation",
		MaxRequests:      1,
		Interval:         30 * time.Minute,
		Timeout:          10 * time.Minute,
		FailureThreshold: 0.6,
		MinRequests:      3,
	}
}

func NewsProviderConfig(provider string) Config {
	return Config{
		Name:             provider + "-news",
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

func New(cfg Config) *CircuitBreaker {
	tripped := func(c gobreaker.Counts) bool {
		return c.Requests >= cfg.MinRequests &&
			float64(c.TotalFailures)/float64(c.Requests) >= cfg.FailureThreshold
	}
	return &CircuitBreaker{
		name: cfg.Name,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: tripped,
			// Caller cancellation says nothing about the dependency.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("circuit breaker state changed",
					slog.String("circuit", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()))
				if cfg.OnStateChange != nil {
					cfg.OnStateChange(name, from, to)
				}
			},
		}),
	}
}

// Do runs fn through cb. An open breaker returns gobreaker.ErrOpenState
// without calling fn.
func Do[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	res, err := cb.breaker.Execute(func() (interface{}, error) { return fn() })
	if err != nil {
		var zero T
		return zero, err
	}
	v, _ := res.(T)
	return v, nil
}

func (cb *CircuitBreaker) State() gobreaker.State { return cb.breaker.State() }
func (cb *CircuitBreaker) Name() string           { return cb.name }
func (cb *CircuitBreaker) IsOpen() bool           { return cb.State() == gobreaker.StateOpen }

// IsOpenError reports whether err came from an open or saturated breaker.
func IsOpenError(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
