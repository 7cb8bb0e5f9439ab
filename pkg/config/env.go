// Package config provides typed environment variable readers and duration
// validators shared by the service configuration loaders.
//
// Readers never fail: a missing value yields the default, and a malformed
// value yields the default with a warning log naming the variable.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnvString returns the value of key, or defaultValue if unset or empty.
func GetEnvString(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// getEnvParsed trims and parses key. kind names the expected type in the
// warning logged when parse fails.
func getEnvParsed[T any](key string, defaultValue T, kind string, parse func(string) (T, error)) T {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := parse(strings.TrimSpace(raw))
	if err != nil {
		slog.Warn("ignoring malformed "+kind+" environment variable",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Any("default", defaultValue),
			slog.Any("error", err))
		return defaultValue
	}
	return v
}

func GetEnvInt(key string, defaultValue int) int {
	return getEnvParsed(key, defaultValue, "integer", strconv.Atoi)
}

func GetEnvFloat(key string, defaultValue float64) float64 {
	return getEnvParsed(key, defaultValue, "float", func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// GetEnvBool accepts the spellings of strconv.ParseBool.
func GetEnvBool(key string, defaultValue bool) bool {
	return getEnvParsed(key, defaultValue, "boolean", strconv.ParseBool)
}

// GetEnvDuration accepts time.ParseDuration syntax ("30s", "15m").
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	return getEnvParsed(key, defaultValue, "duration", time.ParseDuration)
}

// GetEnvStringList splits key on commas, trimming each element and dropping
// empty ones. A value with nothing left yields defaultValue.
//
//	// NEWS_EXCLUDED_KEYWORDS="sex, adult,,"
//	words := GetEnvStringList("NEWS_EXCLUDED_KEYWORDS", nil) // ["sex", "adult"]
func GetEnvStringList(key string, defaultValue []string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
