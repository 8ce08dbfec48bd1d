package policy

import (
	"sync"
	"time"
)

// ttlCache is a short-TTL in-memory cache for policy and trust lookups.
// It keeps hot corpora and chatty requesters from hitting Postgres on every
// gated call. Call Close to stop the background eviction goroutine.
type ttlCache[V any] struct {
	mu      sync.RWMutex
	entries map[string]cachedEntry[V]
	ttl     time.Duration
	done    chan struct{}
}

type cachedEntry[V any] struct {
	value     V
	expiresAt time.Time
}

func newTTLCache[V any](ttl time.Duration) *ttlCache[V] {
	c := &ttlCache[V]{
		entries: make(map[string]cachedEntry[V]),
		ttl:     ttl,
		done:    make(chan struct{}),
	}
	go c.evictLoop()
	return c
}

// Get returns the cached value and true if a valid entry exists.
func (c *ttlCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		var zero V
		return zero, false
	}
	return entry.value, true
}

// Set stores a value with the configured TTL.
func (c *ttlCache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cachedEntry[V]{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Close stops the background eviction goroutine.
func (c *ttlCache[V]) Close() {
	close(c.done)
}

// evictLoop removes expired entries every minute.
func (c *ttlCache[V]) evictLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *ttlCache[V]) evictExpired() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, v := range c.entries {
		if now.After(v.expiresAt) {
			delete(c.entries, k)
		}
	}
}
