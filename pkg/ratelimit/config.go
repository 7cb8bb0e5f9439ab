package ratelimit

import (
	"fmt"
	"time"
)

// Algorithm selects the windowing strategy.
type Algorithm string

const (
	// AlgorithmFixedWindow counts requests in a window that opens on a key's
	// first request and resets once it has elapsed.
	AlgorithmFixedWindow Algorithm = "fixed"

	// AlgorithmSlidingWindow counts requests in the trailing window.
	AlgorithmSlidingWindow Algorithm = "sliding"
)

func (a Algorithm) IsValid() bool {
	switch a {
	case AlgorithmFixedWindow, AlgorithmSlidingWindow:
		return true
	default:
		return false
	}
}

// RateLimitConfig configures a Limiter.
type RateLimitConfig struct {
	// Enabled turns throttling on. A disabled limiter allows every request.
	Enabled bool

	// MaxRequests is the number of requests a key may make per Window.
	MaxRequests int

	// Window is the throttle window length.
	Window time.Duration

	// Algorithm selects fixed or sliding windows.
	Algorithm Algorithm

	// MaxActiveKeys bounds the number of tracked keys. The least recently
	// seen key is evicted when a new key would exceed it.
	MaxActiveKeys int

	// CleanupInterval is how often expired timestamps are purged.
	CleanupInterval time.Duration
}

// Validate checks the configuration for invalid values.
func (c *RateLimitConfig) Validate() error {
	if c.MaxRequests < 0 {
		return fmt.Errorf("MaxRequests must be non-negative, got %d", c.MaxRequests)
	}
	if c.Window < 0 {
		return fmt.Errorf("Window must be non-negative, got %s", c.Window)
	}
	if c.Algorithm != "" && !c.Algorithm.IsValid() {
		return fmt.Errorf("Algorithm has invalid value %q", c.Algorithm)
	}
	if c.MaxActiveKeys < 0 {
		return fmt.Errorf("MaxActiveKeys must be non-negative, got %d", c.MaxActiveKeys)
	}
	if c.CleanupInterval < 0 {
		return fmt.Errorf("CleanupInterval must be non-negative, got %s", c.CleanupInterval)
	}
	return nil
}

// ApplyDefaults fills zero values with defaults.
func (c *RateLimitConfig) ApplyDefaults() {
	if c.MaxRequests == 0 {
		c.MaxRequests = 100 // 100 requests per 15 minutes
	}
	if c.Window == 0 {
		c.Window = 15 * time.Minute
	}
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmFixedWindow
	}
	if c.MaxActiveKeys == 0 {
		c.MaxActiveKeys = 10000
	}
	if c.CleanupInterval == 0 {
		c.CleanupInterval = 5 * time.Minute
	}
}

// DefaultConfig returns an enabled configuration with defaults applied.
func DefaultConfig() *RateLimitConfig {
	config := &RateLimitConfig{Enabled: true}
	config.ApplyDefaults()
	return config
}
