// Command api serves the read API, the on-demand trigger and the news
// gateway. Unless SCHEDULER_ENABLED=false it also runs the generation timer,
// so manual and timed runs share one run state.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"trendscribe/internal/app"
	"trendscribe/internal/config"
	"trendscribe/internal/domain/entity"
	hhttp "trendscribe/internal/handler/http"
	"trendscribe/internal/handler/http/middleware"
	"trendscribe/internal/infra/cache"
	"trendscribe/internal/infra/newsprovider"
	"trendscribe/internal/infra/scheduler"
	workerPkg "trendscribe/internal/infra/worker"
	"trendscribe/internal/observability/logging"
	"trendscribe/internal/observability/tracing"
	internalconfig "trendscribe/internal/pkg/config"
	"trendscribe/internal/usecase/news"
	pkgconfig "trendscribe/pkg/config"
	"trendscribe/pkg/ratelimit"
)

func main() {
	logger := initLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.Error("api exited", slog.Any("error", err))
		os.Exit(1)
	}
}

// initLogger initializes the process logger from LOG_LEVEL and LOG_FORMAT.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	return pkgconfig.GetEnvString("VERSION", "dev")
}

func run(ctx context.Context, logger *slog.Logger) error {
	shutdownTracing := tracing.Setup()
	version := getVersion()

	schedCfg := workerPkg.LoadConfigFromEnv(logger, internalconfig.NewConfigMetrics("api", prometheus.DefaultRegisterer))

	store, err := app.OpenStore(ctx, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	notifyService, err := app.NewNotifyService(logger, schedCfg.NotifyMaxConcurrent)
	if err != nil {
		return err
	}

	svc, err := app.NewGenerationService(logger, store.Posts, notifyService, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	gateway, limiter, err := setupNews(logger)
	if err != nil {
		return err
	}

	ips, cors, err := setupHTTPPolicy(logger)
	if err != nil {
		return err
	}

	handler := hhttp.NewRouter(hhttp.RouterConfig{
		Posts:   store.Posts,
		Trigger: svc,
		News:    gateway,
		IPs:     ips,
		CORS:    cors,
		Health: &hhttp.HealthHandler{
			DB:         store.DB,
			Generation: svc,
			Notify:     notifyService,
			Throttle:   limiter,
			Version:    version,
		},
		Logger:         logger,
		RequestTimeout: pkgconfig.GetEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
	})

	// Built before any goroutine starts so a bad schedule exits cleanly.
	sched, err := newEmbeddedScheduler(schedCfg, svc, prometheus.DefaultRegisterer, logger)
	if err != nil {
		return err
	}

	addr := ":" + pkgconfig.GetEnvString("PORT", "8080")
	srv := app.NewServer(addr, handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.Serve(gctx, srv, "api", logger) })
	g.Go(func() error {
		limiter.RunCleanup(gctx)
		return nil
	})

	if sched != nil {
		sched.Start(gctx)
		logger.Info("embedded scheduler started",
			slog.String("schedule", schedCfg.CronSchedule),
			slog.String("timezone", schedCfg.Timezone),
			slog.Time("next_run", sched.Next()))
	} else {
		logger.Info("embedded scheduler disabled")
	}

	logger.Info("api started", slog.String("addr", addr), slog.String("version", version))

	<-gctx.Done()
	logger.Info("shutting down api")
	app.Shutdown(logger, schedCfg.ShutdownTimeout, sched, svc, notifyService, shutdownTracing)
	return g.Wait()
}

// newEmbeddedScheduler returns nil when the embedded timer is disabled.
func newEmbeddedScheduler(cfg workerPkg.SchedulerConfig, svc scheduler.Trigger, reg prometheus.Registerer, logger *slog.Logger) (*scheduler.Scheduler, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	return scheduler.New(cfg.CronSchedule, loc, svc, workerPkg.NewWorkerMetrics(reg), logger)
}

// setupNews builds the gateway: provider, result cache and the per-client
// throttle.
func setupNews(logger *slog.Logger) (*news.Service, *ratelimit.Limiter, error) {
	cfg, err := config.LoadNewsConfig()
	if err != nil {
		return nil, nil, err
	}

	provider, err := newsprovider.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("news provider: %w", err)
	}

	results, err := cache.New[[]entity.Article](cfg.CacheSize, cfg.CacheTTL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("news cache: %w", err)
	}

	limiter := ratelimit.NewInMemoryLimiter("news", cfg.RateLimit,
		ratelimit.NewPrometheusMetrics(prometheus.DefaultRegisterer), nil)

	effective := limiter.Config()
	logger.Info("news gateway initialized",
		slog.String("provider", cfg.Provider),
		slog.Duration("cache_ttl", cfg.CacheTTL),
		slog.Int("cache_size", cfg.CacheSize),
		slog.Int("excluded_keywords", len(cfg.ExcludedKeywords)),
		slog.Bool("rate_limit_enabled", effective.Enabled),
		slog.Int("rate_limit_max_requests", effective.MaxRequests),
		slog.Duration("rate_limit_window", effective.Window),
		slog.String("rate_limit_algorithm", string(effective.Algorithm)))
	if !effective.Enabled {
		logger.Warn("news rate limiting is DISABLED - not recommended for production")
	}

	return news.NewService(provider, results, limiter, cfg.ExcludedKeywords, cfg.Timeout), limiter, nil
}

// setupHTTPPolicy loads client IP extraction and the CORS whitelist.
func setupHTTPPolicy(logger *slog.Logger) (middleware.IPExtractor, *middleware.CORSConfig, error) {
	proxyConfig, err := middleware.LoadTrustedProxyConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("trusted proxy configuration: %w", err)
	}
	if proxyConfig.Enabled {
		logger.Info("client ip: trusted proxy mode enabled",
			slog.Int("trusted_proxies_count", len(proxyConfig.AllowedCIDRs)))
	} else {
		logger.Info("client ip: using RemoteAddr (proxy headers ignored)")
	}

	corsConfig, err := middleware.LoadCORSConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("CORS configuration: %w", err)
	}
	corsConfig.Logger = logger
	logger.Info("CORS enabled",
		slog.Any("allowed_origins", corsConfig.Validator.GetAllowedOrigins()),
		slog.Any("allowed_methods", corsConfig.AllowedMethods),
		slog.Int("max_age", corsConfig.MaxAge))

	return middleware.NewIPExtractor(proxyConfig), corsConfig, nil
}
