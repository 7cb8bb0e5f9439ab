// Package scheduler runs generation on a cron schedule.
//
// The scheduler keeps no state besides its schedule. Overlapping ticks are
// not prevented here: the orchestrator rejects a tick that lands on a
// running run with generate.ErrBusy, which is logged and counted.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"trendscribe/internal/domain/entity"
	"trendscribe/internal/handler/http/respond"
	"trendscribe/internal/usecase/generate"
)

// Trigger starts one generation run.
type Trigger interface {
	Trigger(ctx context.Context) (*entity.Post, error)
}

// JobMetrics records tick outcomes: success, busy or failure.
type JobMetrics interface {
	RecordJob(outcome string, duration time.Duration)
}

// Scheduler fires Trigger on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	trigger  Trigger
	metrics  JobMetrics
	logger   *slog.Logger

	mu  sync.Mutex
	ctx context.Context
}

// New parses schedule (five fields or a descriptor such as "@daily") in loc.
// metrics may be nil.
func New(schedule string, loc *time.Location, trigger Trigger, metrics JobMetrics, logger *slog.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		schedule: schedule,
		trigger:  trigger,
		metrics:  metrics,
		logger:   logger,
		ctx:      context.Background(),
	}
	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cronLogger{logger})),
		cron.WithLogger(cronLogger{logger}),
	)
	if _, err := s.cron.AddFunc(schedule, s.tick); err != nil {
		return nil, fmt.Errorf("add cron job %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins firing. Ticks run on ctx, so cancelling it aborts an
// in-flight run.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("scheduler started",
		slog.String("schedule", s.schedule),
		slog.String("timezone", s.cron.Location().String()),
		slog.Time("next_run", s.Next()))
}

// Stop stops firing and waits for a running tick until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out with a run in flight")
		return ctx.Err()
	}
}

// Next returns the next fire time, or the zero time before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	start := time.Now()
	post, err := s.trigger.Trigger(generate.WithTrigger(ctx, generate.TriggerTimer))
	duration := time.Since(start)

	outcome := "success"
	switch {
	case err == nil:
		s.logger.Info("scheduled generation completed",
			slog.Int64("post_id", post.ID),
			slog.Duration("duration", duration))
	case errors.Is(err, generate.ErrBusy):
		outcome = "busy"
		s.logger.Info("scheduled generation skipped, a run is in progress")
	default:
		outcome = "failure"
		s.logger.Error("scheduled generation failed",
			slog.Duration("duration", duration),
			slog.String("error", respond.SanitizeError(err)))
	}

	if s.metrics != nil {
		s.metrics.RecordJob(outcome, duration)
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
