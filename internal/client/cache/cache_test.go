package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// withClock pins the cache's clock for expiry tests.
func withClock(c *Cache, t time.Time) *time.Time {
	current := t
	c.now = func() time.Time { return current }
	return &current
}

func TestGetSet(t *testing.T) {
	c := New()

	_, ok := c.Get("/api/v1/meals?date=2026-02-09")
	assert.False(t, ok)

	payload := []byte(`[{"id":"m1"}]`)
	c.Set("/api/v1/meals?date=2026-02-09", payload, time.Minute)

	got, ok := c.Get("/api/v1/meals?date=2026-02-09")
	assert.True(t, ok)
	assert.Equal(t, payload, got)
}

func TestExpiry(t *testing.T) {
	c := New()
	clock := withClock(c, time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC))

	c.Set("key", []byte("v"), time.Minute)

	*clock = clock.Add(59 * time.Second)
	_, ok := c.Get("key")
	assert.True(t, ok)

	// now == expiresAt counts as expired
	*clock = clock.Add(time.Second)
	_, ok = c.Get("key")
	assert.False(t, ok)

	// the expired entry was purged, not just hidden
	c.mu.Lock()
	_, exists := c.entries["key"]
	c.mu.Unlock()
	assert.False(t, exists)
}

func TestSetReplaces(t *testing.T) {
	c := New()

	c.Set("key", []byte("old"), time.Minute)
	c.Set("key", []byte("new"), time.Minute)

	got, ok := c.Get("key")
	assert.True(t, ok)
	assert.Equal(t, []byte("new"), got)
}

func TestInvalidatePrefix(t *testing.T) {
	c := New()

	c.Set("/api/v1/meals?date=2026-02-09", []byte("a"), time.Minute)
	c.Set("/api/v1/meals?date=2026-02-10", []byte("b"), time.Minute)
	c.Set("/api/v1/stats/weekly?start=2026-02-09", []byte("c"), time.Minute)
	c.Set("/api/v1/water?date=2026-02-09", []byte("d"), time.Minute)

	removed := c.Invalidate("/api/v1/meals")
	assert.Equal(t, 2, removed)

	_, ok := c.Get("/api/v1/meals?date=2026-02-09")
	assert.False(t, ok)
	_, ok = c.Get("/api/v1/water?date=2026-02-09")
	assert.True(t, ok)

	assert.Equal(t, 0, c.Invalidate("/api/v1/meals"))
}

func TestClear(t *testing.T) {
	c := New()
	c.Set("a", []byte("1"), time.Minute)
	c.Set("b", []byte("2"), time.Minute)

	c.Clear()

	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.False(t, ok)
}
