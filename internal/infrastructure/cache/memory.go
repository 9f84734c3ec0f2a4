package cache

import (
	"context"
	"sync"
	"time"

	"SpendScout/internal/domain"
	"SpendScout/internal/ports"
)

type entry struct {
	value      []domain.DealMessage
	expiration time.Time
}

// MemoryCache is a thread-safe in-memory memoization of pipeline results.
// Entries expire after their TTL; nothing survives a process restart.
type MemoryCache struct {
	data  map[string]entry
	mutex sync.RWMutex
}

var _ ports.ResultCache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty cache and starts a background sweep of
// expired entries.
func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{data: make(map[string]entry)}
	go c.cleanupExpired()
	return c
}

// Get returns the cached result for key, if present and not expired.
func (c *MemoryCache) Get(_ context.Context, key string) ([]domain.DealMessage, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	e, ok := c.data[key]
	if !ok || time.Now().After(e.expiration) {
		return nil, false
	}
	return e.value, true
}

// Set stores a result under key for ttl. Identical keys may be written by
// concurrent callers; last write wins and either value is valid.
func (c *MemoryCache) Set(_ context.Context, key string, value []domain.DealMessage, ttl time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = entry{value: value, expiration: time.Now().Add(ttl)}
}

// Size reports the current number of entries, expired ones included.
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

func (c *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		now := time.Now()
		for key, e := range c.data {
			if now.After(e.expiration) {
				delete(c.data, key)
			}
		}
		c.mutex.Unlock()
	}
}
