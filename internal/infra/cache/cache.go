// Package cache provides a bounded, in-process cache with per-entry TTL.
//
// Entries live in a goroutine-safe LRU (hashicorp/golang-lru). An entry
// older than its TTL is never returned; it is dropped on the Get that
// finds it expired. Time comes from a Clock so tests can drive expiry.
package cache

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Clock abstracts time for expiry checks.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache is a size-bounded cache whose entries expire.
type TTLCache[V any] struct {
	lru   *lru.Cache[string, entry[V]]
	ttl   time.Duration
	clock Clock
}

// New returns a cache holding at most size entries, each kept for ttl unless
// SetWithTTL says otherwise. A nil clock reads the wall clock.
func New[V any](size int, ttl time.Duration, clock Clock) (*TTLCache[V], error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive, got %s", ttl)
	}
	l, err := lru.New[string, entry[V]](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	if clock == nil {
		clock = systemClock{}
	}
	return &TTLCache[V]{lru: l, ttl: ttl, clock: clock}, nil
}

// Get returns the live value for key.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	e, ok := c.lru.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	if !c.clock.Now().Before(e.expiresAt) {
		c.lru.Remove(key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with the default TTL.
func (c *TTLCache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key for ttl.
func (c *TTLCache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.lru.Add(key, entry[V]{value: value, expiresAt: c.clock.Now().Add(ttl)})
}

// Len returns the number of stored entries, expired ones included until
// they are looked up or evicted.
func (c *TTLCache[V]) Len() int {
	return c.lru.Len()
}

// TTL returns the default entry lifetime.
func (c *TTLCache[V]) TTL() time.Duration {
	return c.ttl
}

// Purge drops every entry.
func (c *TTLCache[V]) Purge() {
	c.lru.Purge()
}
