// Package app wires the processes in cmd/. It holds the setup shared by the
// read API and the scheduler worker.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"trendscribe/internal/config"
	"trendscribe/internal/infra/adapter/persistence/postgres"
	"trendscribe/internal/infra/adapter/persistence/sqlite"
	"trendscribe/internal/infra/db"
	"trendscribe/internal/infra/generator"
	"trendscribe/internal/infra/notifier"
	"trendscribe/internal/repository"
	"trendscribe/internal/resilience/circuitbreaker"
	"trendscribe/internal/usecase/generate"
	"trendscribe/internal/usecase/notify"
)

// Store is an open database with its post repository.
type Store struct {
	DB      *sql.DB
	Dialect db.Dialect
	Posts   repository.PostRepository
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.DB.Close()
}

// OpenStore connects to the configured database, applies the schema and
// builds the repository. Postgres access goes through the DB circuit breaker.
func OpenStore(ctx context.Context, logger *slog.Logger) (*Store, error) {
	cfg, err := db.LoadConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("database config: %w", err)
	}

	database, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := db.MigrateUp(ctx, database, cfg.Dialect); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	store := &Store{DB: database, Dialect: cfg.Dialect}
	switch cfg.Dialect {
	case db.DialectSQLite:
		store.Posts = sqlite.NewPostRepo(database)
	default:
		store.Posts = postgres.NewPostRepo(circuitbreaker.NewDBCircuitBreaker(database))
	}

	logger.Info("post store ready", slog.String("dialect", string(cfg.Dialect)))
	return store, nil
}

// NewNotifyService builds the Discord and Slack channels from the
// environment. A channel with a bad webhook URL is an error.
func NewNotifyService(logger *slog.Logger, maxConcurrent int) (notify.Service, error) {
	discordCfg, err := notifier.LoadDiscordConfig()
	if err != nil {
		return nil, err
	}
	slackCfg, err := notifier.LoadSlackConfig()
	if err != nil {
		return nil, err
	}

	channels := []notify.Channel{
		notify.NewDiscordChannel(discordCfg),
		notify.NewSlackChannel(slackCfg),
	}

	logger.Info("notification service initialized",
		slog.Bool("discord", discordCfg.Enabled),
		slog.Bool("slack", slackCfg.Enabled),
		slog.Int("max_concurrent", maxConcurrent))

	return notify.NewService(channels, maxConcurrent), nil
}

// NewGenerationService selects the backend named by GENERATOR_TYPE and
// builds the orchestrator. notifier may be nil.
func NewGenerationService(logger *slog.Logger, posts repository.PostRepository, n generate.Notifier, reg prometheus.Registerer) (*generate.Service, error) {
	cfg, err := config.LoadGeneratorConfig()
	if err != nil {
		return nil, err
	}

	backend, err := generator.New(cfg, generator.NewPrometheusMetrics(reg))
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	logger.Info("generation backend selected",
		slog.String("backend", backend.Name()),
		slog.String("model", cfg.Model),
		slog.Duration("timeout", cfg.Timeout))

	return generate.NewService(backend, posts, n, cfg.Timeout), nil
}
