// Package cache implements the time-boxed response cache consulted by the
// request executor. Keys are logical request paths; payloads are raw
// response bytes, so a hit is byte-identical to the network response it
// replaced.
package cache

import (
	"strings"
	"sync"
	"time"
)

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// Cache is a mutex-serialized key→payload store with absolute expiry.
// Expired entries behave as absent and are purged lazily at read time.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached payload for key, or ok=false if the key is absent
// or expired.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.entries[key]
	if !exists {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}

	return e.payload, true
}

// Set stores payload under key with absolute expiry now+ttl, replacing any
// prior entry.
func (c *Cache) Set(key string, payload []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		payload:   payload,
		expiresAt: c.now().Add(ttl),
	}
}

// Invalidate removes every entry whose key starts with prefix and returns
// the number of entries removed. Mutations call this synchronously before
// their result is surfaced, so a subsequent read can never observe the
// pre-mutation payload.
func (c *Cache) Invalidate(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}

	return removed
}

// Clear drops every entry (logout/reset).
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry)
}
