// Package config loads fail-open process settings: an invalid value is
// reported and replaced by its default instead of stopping startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadResult is the outcome of loading one setting.
type LoadResult[T any] struct {
	Value T

	// Warning describes the rejected value when FallbackApplied is set.
	Warning         string
	FallbackApplied bool
}

// LoadEnv reads envKey, parses it and validates it. An unset or empty
// variable yields defaultValue without a warning; a value that fails to
// parse or validate yields defaultValue with one. validate may be nil.
func LoadEnv[T any](envKey string, defaultValue T, parse func(string) (T, error), validate func(T) error) LoadResult[T] {
	raw := strings.TrimSpace(os.Getenv(envKey))
	if raw == "" {
		return LoadResult[T]{Value: defaultValue}
	}

	fallback := func(err error) LoadResult[T] {
		return LoadResult[T]{
			Value:           defaultValue,
			Warning:         fmt.Sprintf("invalid %s=%q: %v, falling back to default %v", envKey, raw, err, defaultValue),
			FallbackApplied: true,
		}
	}

	value, err := parse(raw)
	if err != nil {
		return fallback(err)
	}
	if validate != nil {
		if err := validate(value); err != nil {
			return fallback(err)
		}
	}
	return LoadResult[T]{Value: value}
}

// LoadEnvString loads a string setting.
func LoadEnvString(envKey, defaultValue string, validate func(string) error) LoadResult[string] {
	return LoadEnv(envKey, defaultValue, func(s string) (string, error) { return s, nil }, validate)
}

// LoadEnvDuration loads a time.ParseDuration setting.
func LoadEnvDuration(envKey string, defaultValue time.Duration, validate func(time.Duration) error) LoadResult[time.Duration] {
	return LoadEnv(envKey, defaultValue, time.ParseDuration, validate)
}

// LoadEnvInt loads a base-10 integer setting.
func LoadEnvInt(envKey string, defaultValue int, validate func(int) error) LoadResult[int] {
	return LoadEnv(envKey, defaultValue, strconv.Atoi, validate)
}

// LoadEnvBool loads a strconv.ParseBool setting.
func LoadEnvBool(envKey string, defaultValue bool) LoadResult[bool] {
	return LoadEnv(envKey, defaultValue, strconv.ParseBool, nil)
}
