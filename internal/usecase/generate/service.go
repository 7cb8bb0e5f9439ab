package generate

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"trendscribe/internal/domain/entity"
	"trendscribe/internal/observability/metrics"
	"trendscribe/internal/observability/tracing"
	"trendscribe/internal/repository"
	"trendscribe/internal/utils/text"
)

// Backend produces the raw text of one post.
type Backend interface {
	Generate(ctx context.Context) (string, error)
	// Name identifies the backend in logs, metrics and the stored post.
	Name() string
}

// Notifier announces a newly stored post. Implementations must not block on
// delivery; the returned error only reports that dispatch was refused.
type Notifier interface {
	NotifyNewPost(ctx context.Context, post *entity.Post) error
}

// RunState is the orchestrator's run state.
type RunState int32

const (
	Idle RunState = iota
	Running
)

func (s RunState) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Service is the generation orchestrator. A Service must not be copied after
// first use; each instance guards its own run state.
type Service struct {
	Backend  Backend
	PostRepo repository.PostRepository
	Notifier Notifier
	// Timeout bounds one run, backend call and insert together. Zero means
	// the caller's context is the only bound.
	Timeout time.Duration

	running atomic.Bool
	lastRun atomic.Pointer[RunResult]
}

// RunResult summarizes the most recent accepted run.
type RunResult struct {
	RunID      string
	Trigger    string
	PostID     int64
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewService creates an orchestrator. notifier may be nil to disable
// post-publish notifications.
//
// Example:
//
//	svc := generate.NewService(backend, postRepo, notifyService, 2*time.Minute)
//	post, err := svc.Trigger(generate.WithTrigger(ctx, generate.TriggerTimer))
func NewService(
	backend Backend,
	postRepo repository.PostRepository,
	notifier Notifier,
	timeout time.Duration,
) *Service {
	return &Service{
		Backend:  backend,
		PostRepo: postRepo,
		Notifier: notifier,
		Timeout:  timeout,
	}
}

// State reports whether a run is in progress.
func (s *Service) State() RunState {
	if s.running.Load() {
		return Running
	}
	return Idle
}

// LastRun returns the most recent accepted run, or nil before the first one
// has finished.
func (s *Service) LastRun() *RunResult {
	return s.lastRun.Load()
}

// Trigger executes one generation run: backend call, extraction and a single
// insert. While another run is in progress it returns ErrBusy immediately
// without calling the backend or the store. Failures are never retried.
func (s *Service) Trigger(ctx context.Context) (*entity.Post, error) {
	trigger := TriggerFromContext(ctx)

	if !s.running.CompareAndSwap(false, true) {
		metrics.RecordGenerationRun(trigger, outcome(ErrBusy))
		return nil, ErrBusy
	}
	metrics.SetGenerationRunning(true)
	defer func() {
		s.running.Store(false)
		metrics.SetGenerationRunning(false)
	}()

	result := &RunResult{
		RunID:     uuid.NewString(),
		Trigger:   trigger,
		StartedAt: time.Now(),
	}
	logger := slog.Default().With(
		slog.String("run_id", result.RunID),
		slog.String("trigger", trigger),
		slog.String("backend", s.Backend.Name()))

	ctx, span := tracing.StartSpan(ctx, "generate.Trigger",
		attribute.String("generation.run_id", result.RunID),
		attribute.String("generation.trigger", trigger),
		attribute.String("generation.backend", s.Backend.Name()))

	logger.Info("generation run started")
	post, err := s.run(ctx)

	result.FinishedAt = time.Now()
	result.Err = err
	if post != nil {
		result.PostID = post.ID
		span.SetAttributes(attribute.Int64("generation.post_id", post.ID))
	}
	s.lastRun.Store(result)
	tracing.EndSpan(span, err)

	duration := result.FinishedAt.Sub(result.StartedAt)
	metrics.RecordGenerationRun(trigger, outcome(err))
	metrics.RecordGenerationDuration(s.Backend.Name(), duration)

	if err != nil {
		logger.Error("generation run failed",
			slog.Duration("duration", duration),
			slog.Any("error", err))
		return nil, err
	}

	logger.Info("generation run completed",
		slog.Int64("post_id", post.ID),
		slog.String("title", post.Title),
		slog.Int("body_length", len(post.Body)),
		slog.Duration("duration", duration))

	s.notify(ctx, post, logger)
	return post, nil
}

func (s *Service) run(ctx context.Context) (*entity.Post, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	raw, err := s.Backend.Generate(ctx)
	if err != nil {
		return nil, wrapRunError(ErrGenerationFailed, err)
	}

	extracted := text.Extract(raw)
	post := &entity.Post{
		Title:           extracted.Title,
		Body:            extracted.Body,
		SourcesAnalyzed: extracted.Sources,
		Backend:         s.Backend.Name(),
	}
	if err := post.Validate(); err != nil {
		return nil, wrapRunError(ErrGenerationFailed, err)
	}

	if err := s.PostRepo.Create(ctx, post); err != nil {
		return nil, wrapRunError(ErrPersistenceFailed, err)
	}
	return post, nil
}

// notify hands the post to the notifier on a context detached from the
// caller's cancellation.
func (s *Service) notify(ctx context.Context, post *entity.Post, logger *slog.Logger) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.NotifyNewPost(context.WithoutCancel(ctx), post); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("failed to dispatch post notification",
			slog.Int64("post_id", post.ID),
			slog.Any("error", err))
	}
}
