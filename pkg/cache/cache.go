// Package cache provides a TTL key-value cache used to absorb repeated
// weather lookups.
package cache

import (
	"context"
	"sync"
	"time"
)

// Store is the cache contract. Implementations: the in-memory Cache below and
// the Redis-backed cache in internal/infrastructure/redis.
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
}

type entry struct {
	value     string
	expiresAt time.Time
}

// Cache is a simple in-memory TTL cache.
type Cache struct {
	mu    sync.RWMutex
	items map[string]entry
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{items: map[string]entry{}}
}

// Set stores value under key for ttl.
func (c *Cache) Set(_ context.Context, key, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
}

// Get returns the value under key if it has not expired.
func (c *Cache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.items[key]
	if !ok || time.Now().After(e.expiresAt) {
		return "", false
	}
	return e.value, true
}

// Delete removes key.
func (c *Cache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = map[string]entry{}
}
