package search

import (
	"sync"
	"time"
)

// DefaultTTL is how long an ad-hoc result set stays reusable.
const DefaultTTL = 5 * time.Minute

type cacheEntry struct {
	result    *Result
	expiresAt time.Time
}

// Cache is a short-TTL in-memory cache for ad-hoc search results, keyed by
// the normalized query (sorted keywords + sorted sources + freshness).
// Owned by the composition root and passed into the search service — no
// package-level state. Expired entries are dropped lazily: on read and by
// Sweep, not by a background timer.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

// NewCache returns a cache with the given TTL (DefaultTTL if zero).
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{ttl: ttl, entries: make(map[string]cacheEntry)}
}

// Get returns the cached result for key, or nil if absent or expired.
func (c *Cache) Get(key string) *Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil
	}
	return e.result
}

// Put stores a result under key with the cache's TTL.
func (c *Cache) Put(key string, result *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{result: result, expiresAt: time.Now().Add(c.ttl)}
}

// Sweep evicts every expired entry and returns how many were dropped.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	dropped := 0
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			dropped++
		}
	}
	return dropped
}

// Len reports the current entry count, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
