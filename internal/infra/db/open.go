package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"trendscribe/internal/resilience/retry"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

var sqlitePragmas = []string{
	"PRAGMA busy_timeout = 5000",
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
}

// Dialect selects the SQL driver and schema flavour.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// ConnectionConfig holds database connection pool configuration.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConnectionConfig returns the default connection pool configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 1 * time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

// Config selects the database and its DSN.
type Config struct {
	Dialect Dialect
	// DSN is DATABASE_URL for postgres and a file path for sqlite.
	DSN  string
	Pool ConnectionConfig
}

// LoadConfigFromEnv reads DATABASE_DRIVER, DATABASE_URL, SQLITE_PATH and the
// DB_* pool variables.
func LoadConfigFromEnv() (Config, error) {
	cfg := Config{
		Dialect: Dialect(strings.ToLower(strings.TrimSpace(os.Getenv("DATABASE_DRIVER")))),
		Pool:    getConnectionConfigFromEnv(),
	}
	if cfg.Dialect == "" {
		cfg.Dialect = DialectPostgres
	}

	switch cfg.Dialect {
	case DialectPostgres:
		cfg.DSN = os.Getenv("DATABASE_URL")
		if cfg.DSN == "" {
			return Config{}, errors.New("DATABASE_URL not set")
		}
	case DialectSQLite:
		cfg.DSN = os.Getenv("SQLITE_PATH")
		if cfg.DSN == "" {
			cfg.DSN = "trendscribe.db"
		}
		// SQLite allows a single writer.
		cfg.Pool.MaxOpenConns = 1
		cfg.Pool.MaxIdleConns = 1
	default:
		return Config{}, fmt.Errorf("unsupported DATABASE_DRIVER %q (want postgres or sqlite)", cfg.Dialect)
	}
	return cfg, nil
}

func (c Config) driverName() string {
	if c.Dialect == DialectSQLite {
		return "sqlite"
	}
	return "pgx"
}

// Open creates the connection pool and waits until the database answers a
// ping, retrying transient connection errors with backoff.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	db, err := sql.Open(cfg.driverName(), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Dialect, err)
	}

	db.SetMaxOpenConns(cfg.Pool.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Pool.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Pool.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Pool.ConnMaxIdleTime)

	slog.Info("database connection pool configured",
		slog.String("dialect", string(cfg.Dialect)),
		slog.Int("max_open_conns", cfg.Pool.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.Pool.MaxIdleConns),
		slog.Duration("conn_max_lifetime", cfg.Pool.ConnMaxLifetime),
		slog.Duration("conn_max_idle_time", cfg.Pool.ConnMaxIdleTime))

	if err := WaitReady(ctx, db, retry.DBStartupConfig()); err != nil {
		_ = db.Close()
		return nil, err
	}

	if cfg.Dialect == DialectSQLite {
		for _, pragma := range sqlitePragmas {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				slog.Warn("sqlite pragma failed", slog.String("pragma", pragma), slog.Any("error", err))
			}
		}
	}

	slog.Info("database connection established successfully")
	return db, nil
}

// WaitReady pings db until it answers or the retry budget is spent.
func WaitReady(ctx context.Context, db *sql.DB, cfg retry.Config) error {
	err := retry.WithBackoff(ctx, cfg, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	})
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

func getConnectionConfigFromEnv() ConnectionConfig {
	cfg := DefaultConnectionConfig()

	if maxOpen := os.Getenv("DB_MAX_OPEN_CONNS"); maxOpen != "" {
		if val, err := strconv.Atoi(maxOpen); err == nil && val > 0 {
			cfg.MaxOpenConns = val
		}
	}

	if maxIdle := os.Getenv("DB_MAX_IDLE_CONNS"); maxIdle != "" {
		if val, err := strconv.Atoi(maxIdle); err == nil && val > 0 {
			cfg.MaxIdleConns = val
		}
	}

	if lifetime := os.Getenv("DB_CONN_MAX_LIFETIME"); lifetime != "" {
		if val, err := time.ParseDuration(lifetime); err == nil && val > 0 {
			cfg.ConnMaxLifetime = val
		}
	}

	if idleTime := os.Getenv("DB_CONN_MAX_IDLE_TIME"); idleTime != "" {
		if val, err := time.ParseDuration(idleTime); err == nil && val > 0 {
			cfg.ConnMaxIdleTime = val
		}
	}

	return cfg
}
