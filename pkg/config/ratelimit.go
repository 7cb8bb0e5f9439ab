package config

import (
	"log/slog"
	"time"

	"trendscribe/pkg/ratelimit"
)

// LoadRateLimitConfig loads the news gateway throttle settings.
//
// Invalid values are logged and replaced with defaults.
//
// Environment variables:
//   - RATELIMIT_ENABLED: enable throttling (default: true)
//   - RATELIMIT_MAX_REQUESTS: requests per window per client (default: 100)
//   - RATELIMIT_WINDOW: window length (default: 15m)
//   - RATELIMIT_ALGORITHM: "fixed" or "sliding" (default: fixed)
//   - RATELIMIT_MAX_KEYS: maximum tracked clients (default: 10000)
//   - RATELIMIT_CLEANUP_INTERVAL: purge interval (default: 5m)
func LoadRateLimitConfig() ratelimit.RateLimitConfig {
	defaults := ratelimit.DefaultConfig()

	cfg := ratelimit.RateLimitConfig{
		Enabled:         GetEnvBool("RATELIMIT_ENABLED", true),
		MaxRequests:     GetEnvInt("RATELIMIT_MAX_REQUESTS", defaults.MaxRequests),
		Window:          GetEnvDuration("RATELIMIT_WINDOW", defaults.Window),
		Algorithm:       ratelimit.Algorithm(GetEnvString("RATELIMIT_ALGORITHM", string(defaults.Algorithm))),
		MaxActiveKeys:   GetEnvInt("RATELIMIT_MAX_KEYS", defaults.MaxActiveKeys),
		CleanupInterval: GetEnvDuration("RATELIMIT_CLEANUP_INTERVAL", defaults.CleanupInterval),
	}

	if cfg.MaxRequests <= 0 {
		slog.Warn("invalid RATELIMIT_MAX_REQUESTS, using default",
			slog.Int("value", cfg.MaxRequests),
			slog.Int("default", defaults.MaxRequests))
		cfg.MaxRequests = defaults.MaxRequests
	}

	if err := ValidatePositiveDuration(cfg.Window); err != nil {
		slog.Warn("invalid RATELIMIT_WINDOW, using default",
			slog.String("value", cfg.Window.String()),
			slog.String("default", defaults.Window.String()),
			slog.String("error", err.Error()))
		cfg.Window = defaults.Window
	}

	if !cfg.Algorithm.IsValid() {
		slog.Warn("invalid RATELIMIT_ALGORITHM, using default",
			slog.String("value", string(cfg.Algorithm)),
			slog.String("default", string(defaults.Algorithm)))
		cfg.Algorithm = defaults.Algorithm
	}

	if cfg.MaxActiveKeys <= 0 {
		slog.Warn("invalid RATELIMIT_MAX_KEYS, using default",
			slog.Int("value", cfg.MaxActiveKeys),
			slog.Int("default", defaults.MaxActiveKeys))
		cfg.MaxActiveKeys = defaults.MaxActiveKeys
	}

	if err := ValidateDurationRange(cfg.CleanupInterval, time.Second, 24*time.Hour); err != nil {
		slog.Warn("invalid RATELIMIT_CLEANUP_INTERVAL, using default",
			slog.String("value", cfg.CleanupInterval.String()),
			slog.String("default", defaults.CleanupInterval.String()),
			slog.String("error", err.Error()))
		cfg.CleanupInterval = defaults.CleanupInterval
	}

	return cfg
}
