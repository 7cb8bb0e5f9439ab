package notify

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"trendscribe/internal/domain/entity"
	"trendscribe/internal/resilience/circuitbreaker"
)

const (
	workerPoolTimeout   = 5 * time.Second  // Timeout for acquiring worker slot
	notificationTimeout = 30 * time.Second // Timeout for individual notification
)

// Service dispatches notifications to every enabled channel.
type Service interface {
	// NotifyNewPost returns as soon as the notification is handed to the
	// background workers. Delivery failures are logged and counted, never
	// returned. ctx values are kept but its cancellation is not propagated.
	NotifyNewPost(ctx context.Context, post *entity.Post) error

	// GetChannelHealth reports circuit breaker state per channel.
	GetChannelHealth() []ChannelHealthStatus

	// Shutdown stops accepting notifications and waits for in-flight ones
	// until ctx is done.
	Shutdown(ctx context.Context) error
}

// ChannelHealthStatus represents the health status of a notification channel.
type ChannelHealthStatus struct {
	Name               string `json:"name"`
	Enabled            bool   `json:"enabled"`
	CircuitState       string `json:"circuit_state"`
	CircuitBreakerOpen bool   `json:"circuit_breaker_open"`
}

type service struct {
	channels       []Channel
	breakers       map[string]*circuitbreaker.CircuitBreaker
	workerPool     chan struct{} // semaphore
	wg             sync.WaitGroup
	mu             sync.RWMutex // guards closed against wg.Add after Shutdown
	closed         bool
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

// ChannelBreakerConfig opens a channel's breaker after five failed
// deliveries in a row and probes again after five minutes.
func ChannelBreakerConfig(channel string) circuitbreaker.Config {
	return circuitbreaker.Config{
		Name:             channel + "-notify",
		MaxRequests:      1,
		Interval:         10 * time.Minute,
		Timeout:          5 * time.Minute,
		FailureThreshold: 1.0,
		MinRequests:      5,
		OnStateChange: func(_ string, _, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				recordBreakerOpened(channel)
			}
		},
	}
}

// NewService creates a notification service.
//
// Parameters:
//   - channels: notification channels (Discord, Slack)
//   - maxConcurrent: maximum concurrent deliveries (recommended: 10)
func NewService(channels []Channel, maxConcurrent int) Service {
	return newService(channels, maxConcurrent, ChannelBreakerConfig)
}

func newService(channels []Channel, maxConcurrent int, breakerConfig func(string) circuitbreaker.Config) *service {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	svc := &service{
		channels:       channels,
		breakers:       make(map[string]*circuitbreaker.CircuitBreaker, len(channels)),
		workerPool:     make(chan struct{}, maxConcurrent),
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}

	enabled := 0
	for _, ch := range channels {
		svc.breakers[ch.Name()] = circuitbreaker.New(breakerConfig(ch.Name()))
		if ch.IsEnabled() {
			enabled++
		}
	}
	setChannelsEnabled(enabled)

	return svc
}

// NotifyNewPost implements Service.NotifyNewPost.
func (s *service) NotifyNewPost(ctx context.Context, post *entity.Post) error {
	if post == nil {
		return ErrInvalidPost
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrShuttingDown
	}

	dispatchID := uuid.New().String()
	enabled := 0
	for _, ch := range s.channels {
		if !ch.IsEnabled() {
			continue
		}
		enabled++
		s.wg.Add(1)
		go s.notifyChannel(dispatchID, ch, post)
	}

	if enabled == 0 {
		slog.Debug("no notification channels enabled", slog.Int64("post_id", post.ID))
		return nil
	}

	slog.Info("dispatching post notification",
		slog.String("dispatch_id", dispatchID),
		slog.Int64("post_id", post.ID),
		slog.Int("enabled_channels", enabled))
	return nil
}

// notifyChannel sends to a single channel in its own goroutine.
func (s *service) notifyChannel(dispatchID string, channel Channel, post *entity.Post) {
	defer s.wg.Done()

	defer trackInFlight()()

	logger := slog.Default().With(
		slog.String("dispatch_id", dispatchID),
		slog.String("channel", channel.Name()),
		slog.Int64("post_id", post.ID))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in notification channel",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	timer := time.NewTimer(workerPoolTimeout)
	defer timer.Stop()
	select {
	case s.workerPool <- struct{}{}:
		defer func() { <-s.workerPool }()
	case <-timer.C:
		logger.Warn("notification dropped: worker pool full")
		recordDelivery(channel.Name(), outcomePoolFull, 0)
		return
	case <-s.shutdownCtx.Done():
		recordDelivery(channel.Name(), outcomeShutdown, 0)
		return
	}

	ctx, cancel := context.WithTimeout(s.shutdownCtx, notificationTimeout)
	defer cancel()

	start := time.Now()

	_, err := circuitbreaker.Do(s.breakers[channel.Name()], func() (struct{}, error) {
		return struct{}{}, channel.Send(ctx, post)
	})
	duration := time.Since(start)

	switch {
	case err == nil:
		recordDelivery(channel.Name(), outcomeSent, duration)
		logger.Info("channel notification sent",
			slog.String("title", post.Title),
			slog.Duration("send_duration", duration))
	case circuitbreaker.IsOpenError(err):
		recordDelivery(channel.Name(), outcomeCircuitOpen, 0)
		logger.Warn("channel temporarily disabled by circuit breaker")
	default:
		recordDelivery(channel.Name(), outcomeFailed, duration)
		logger.Warn("channel notification failed",
			slog.Duration("send_duration", duration),
			slog.Any("error", err))
	}
}

// GetChannelHealth implements Service.GetChannelHealth.
func (s *service) GetChannelHealth() []ChannelHealthStatus {
	statuses := make([]ChannelHealthStatus, 0, len(s.channels))
	for _, ch := range s.channels {
		cb := s.breakers[ch.Name()]
		statuses = append(statuses, ChannelHealthStatus{
			Name:               ch.Name(),
			Enabled:            ch.IsEnabled(),
			CircuitState:       cb.State().String(),
			CircuitBreakerOpen: cb.IsOpen(),
		})
	}
	return statuses
}

// Shutdown implements Service.Shutdown.
func (s *service) Shutdown(ctx context.Context) error {
	slog.Info("shutting down notification service")

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.shutdownCancel()
		slog.Info("notification service shutdown complete")
		return nil
	case <-ctx.Done():
		s.shutdownCancel()
		slog.Warn("notification service shutdown timeout")
		return ctx.Err()
	}
}
