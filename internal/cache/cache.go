// Package cache provides a small in-memory TTL cache. Entries expire a fixed
// duration after insertion; the clock is injected so expiry is testable
// without sleeping.
package cache

import (
	"sync"
	"time"
)

// Clock returns the current time. Production callers pass time.Now.
type Clock func() time.Time

// Cache is a mutex-guarded map with per-entry expiry. Expired entries are
// dropped lazily on Get and eagerly by PurgeExpired.
type Cache[V any] struct {
	ttl   time.Duration
	now   Clock
	mu    sync.Mutex
	items map[string]entry[V]
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// New creates a cache whose entries live for ttl. A nil clock defaults to
// time.Now. A non-positive ttl disables caching entirely: Get always misses.
func New[V any](ttl time.Duration, now Clock) *Cache[V] {
	if now == nil {
		now = time.Now
	}
	return &Cache[V]{
		ttl:   ttl,
		now:   now,
		items: make(map[string]entry[V]),
	}
}

// Get returns the cached value for key if present and unexpired.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	if c.ttl <= 0 {
		return zero, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.items, key)
		return zero, false
	}
	return e.value, true
}

// Put stores value under key, resetting its TTL.
func (c *Cache[V]) Put(key string, value V) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry[V]{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Delete removes key if present.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// PurgeExpired removes every expired entry and returns how many were dropped.
func (c *Cache[V]) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	dropped := 0
	for key, e := range c.items {
		if now.After(e.expiresAt) {
			delete(c.items, key)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of entries currently held, including any that have
// expired but not yet been purged.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
