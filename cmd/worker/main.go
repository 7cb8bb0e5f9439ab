// Command worker runs scheduled post generation without the read API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"trendscribe/internal/app"
	"trendscribe/internal/infra/scheduler"
	workerPkg "trendscribe/internal/infra/worker"
	"trendscribe/internal/observability/logging"
	"trendscribe/internal/observability/tracing"
	pkgconfig "trendscribe/internal/pkg/config"
)

func main() {
	logger := initLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.Error("worker exited", slog.Any("error", err))
		os.Exit(1)
	}
}

// initLogger initializes the process logger from LOG_LEVEL and LOG_FORMAT.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

func run(ctx context.Context, logger *slog.Logger) error {
	shutdownTracing := tracing.Setup()

	workerConfig := workerPkg.LoadConfigFromEnv(logger, pkgconfig.NewConfigMetrics("worker", prometheus.DefaultRegisterer))
	loc, err := workerConfig.Location()
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("notify_max_concurrent", workerConfig.NotifyMaxConcurrent),
		slog.Int("health_port", workerConfig.HealthPort),
		slog.Int("metrics_port", workerConfig.MetricsPort))

	store, err := app.OpenStore(ctx, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	notifyService, err := app.NewNotifyService(logger, workerConfig.NotifyMaxConcurrent)
	if err != nil {
		return err
	}

	svc, err := app.NewGenerationService(logger, store.Posts, notifyService, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	workerMetrics := workerPkg.NewWorkerMetrics(prometheus.DefaultRegisterer)
	sched, err := scheduler.New(workerConfig.CronSchedule, loc, svc, workerMetrics, logger)
	if err != nil {
		return err
	}

	healthServer := workerPkg.NewHealthServer(fmt.Sprintf(":%d", workerConfig.HealthPort), logger,
		map[string]workerPkg.ReadinessCheck{
			"database": store.DB.PingContext,
		})
	metricsServer := newMetricsServer(workerConfig.MetricsPort, notifyService)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return healthServer.Start(gctx) })
	g.Go(func() error { return app.Serve(gctx, metricsServer, "metrics", logger) })

	sched.Start(gctx)
	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("schedule", workerConfig.CronSchedule),
		slog.Time("next_run", sched.Next()))

	<-gctx.Done()
	healthServer.SetReady(false)
	logger.Info("shutting down worker")

	app.Shutdown(logger, workerConfig.ShutdownTimeout, sched, svc, notifyService, shutdownTracing)
	return g.Wait()
}
