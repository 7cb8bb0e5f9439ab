package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"trendscribe/internal/infra/scheduler"
	"trendscribe/internal/usecase/generate"
	"trendscribe/internal/usecase/notify"
)

const shutdownGrace = 5 * time.Second

// Serve runs srv until ctx is done, then shuts it down gracefully. It
// returns nil after a clean shutdown and the listen error otherwise.
func Serve(ctx context.Context, srv *http.Server, name string, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info(name+" server starting", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info(name + " server shutdown initiated")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(name+" server shutdown error", slog.Any("error", err))
		return err
	}
	logger.Info(name + " server stopped")
	return nil
}

// NewServer returns an http.Server with the read and idle timeouts used by
// every listener in the process.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// Shutdown stops the timer (sched may be nil), waits for an in-flight run,
// drains pending notifications and flushes spans, all within timeout.
func Shutdown(
	logger *slog.Logger,
	timeout time.Duration,
	sched *scheduler.Scheduler,
	svc *generate.Service,
	notifyService notify.Service,
	shutdownTracing func(context.Context) error,
) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if sched != nil {
		if err := sched.Stop(ctx); err != nil {
			logger.Warn("scheduler stop timed out", slog.Any("error", err))
		}
	}
	if svc.State() == generate.Running {
		logger.Warn("generation run still in progress at shutdown")
	}
	if err := notifyService.Shutdown(ctx); err != nil {
		logger.Warn("notification drain incomplete", slog.Any("error", err))
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Warn("tracer shutdown failed", slog.Any("error", err))
	}
}
