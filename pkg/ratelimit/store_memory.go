package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// InMemoryRateLimitStore keeps request timestamps in process memory.
//
// Keys are held in an LRU list bounded by MaxKeys; admitting a new key past
// the bound evicts the least recently seen key. All operations take a single
// mutex, so CheckAndAddRequest is atomic.
type InMemoryRateLimitStore struct {
	mu       sync.Mutex
	requests *simplelru.LRU[string, *timestampList]
	onEvict  func(count int)

	// pruning is set while Cleanup removes empty keys; those removals are
	// not evictions.
	pruning bool
}

type timestampList struct {
	timestamps []time.Time
}

// InMemoryStoreConfig configures an InMemoryRateLimitStore.
type InMemoryStoreConfig struct {
	// MaxKeys bounds the number of tracked keys. Default 10000.
	MaxKeys int

	// OnEvict, when set, is called with the number of keys evicted for space.
	OnEvict func(count int)
}

func DefaultInMemoryStoreConfig() InMemoryStoreConfig {
	return InMemoryStoreConfig{MaxKeys: 10000}
}

func NewInMemoryRateLimitStore(config InMemoryStoreConfig) *InMemoryRateLimitStore {
	if config.MaxKeys <= 0 {
		config.MaxKeys = 10000
	}

	s := &InMemoryRateLimitStore{onEvict: config.OnEvict}
	lru, err := simplelru.NewLRU[string, *timestampList](config.MaxKeys, func(string, *timestampList) {
		if s.onEvict != nil && !s.pruning {
			s.onEvict(1)
		}
	})
	if err != nil {
		// Only reachable with a non-positive size, which is excluded above.
		panic(fmt.Sprintf("ratelimit: create lru: %v", err))
	}
	s.requests = lru
	return s
}

func (s *InMemoryRateLimitStore) AddRequest(_ context.Context, key string, timestamp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tsList := s.listFor(key)
	tsList.timestamps = append(tsList.timestamps, timestamp)
	return nil
}

func (s *InMemoryRateLimitStore) GetRequestCount(_ context.Context, key string, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tsList, ok := s.requests.Peek(key)
	if !ok {
		return 0, nil
	}
	return countAfter(tsList.timestamps, cutoff), nil
}

func (s *InMemoryRateLimitStore) CheckAndAddRequest(_ context.Context, key string, timestamp time.Time, cutoff time.Time, limit int) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := 0
	if tsList, ok := s.requests.Get(key); ok {
		tsList.timestamps = dropUntil(tsList.timestamps, cutoff)
		current = countAfter(tsList.timestamps, cutoff)
	}

	if current >= limit {
		return false, current, nil
	}

	tsList := s.listFor(key)
	tsList.timestamps = append(tsList.timestamps, timestamp)
	return true, current + 1, nil
}

func (s *InMemoryRateLimitStore) Cleanup(_ context.Context, cutoff time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruning = true
	defer func() { s.pruning = false }()

	for _, key := range s.requests.Keys() {
		tsList, ok := s.requests.Peek(key)
		if !ok {
			continue
		}
		tsList.timestamps = dropUntil(tsList.timestamps, cutoff)
		if len(tsList.timestamps) == 0 {
			s.requests.Remove(key)
		}
	}
	return nil
}

func (s *InMemoryRateLimitStore) KeyCount(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.requests.Len(), nil
}

// listFor returns key's list, creating it and marking key most recently used.
// Callers hold s.mu.
func (s *InMemoryRateLimitStore) listFor(key string) *timestampList {
	if tsList, ok := s.requests.Get(key); ok {
		return tsList
	}
	tsList := &timestampList{timestamps: make([]time.Time, 0, 8)}
	s.requests.Add(key, tsList)
	return tsList
}

func countAfter(timestamps []time.Time, cutoff time.Time) int {
	count := 0
	for _, ts := range timestamps {
		if ts.After(cutoff) {
			count++
		}
	}
	return count
}

// dropUntil removes timestamps at or before cutoff, in place. Timestamps are
// appended in non-decreasing order, so the expired ones form a prefix.
func dropUntil(timestamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(timestamps) && !timestamps[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return timestamps
	}
	return append(timestamps[:0], timestamps[i:]...)
}
