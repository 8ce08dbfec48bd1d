package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	evictEvery = time.Minute
	evictAfter = 10 * time.Minute
)

type entry struct {
	remaining float64
	seen      time.Time
}

// MemoryBucket is a Limiter backed by one token bucket per key.
//
// Each key refills at perMinute/60 tokens per second up to a capacity of
// burst. A background goroutine drops keys idle for ten minutes so the
// map stays bounded.
type MemoryBucket struct {
	refill   float64 // tokens per second
	capacity float64

	mu      sync.Mutex
	entries map[string]*entry

	stop sync.Once
	done chan struct{}
}

// NewMemoryBucket creates a token bucket limiter allowing a sustained
// perMinute requests per key, with bursts up to burst. Call Close to stop
// the eviction goroutine.
func NewMemoryBucket(perMinute int, burst int) *MemoryBucket {
	m := &MemoryBucket{
		refill:   float64(perMinute) / 60,
		capacity: float64(burst),
		entries:  make(map[string]*entry),
		done:     make(chan struct{}),
	}
	go m.evictLoop()
	return m
}

// Allow takes one token from key's bucket. False means the caller is over
// its limit and the request should be rejected.
func (m *MemoryBucket) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	e, ok := m.entries[key]
	if !ok {
		m.entries[key] = &entry{remaining: m.capacity - 1, seen: now}
		return true, nil
	}

	e.remaining += now.Sub(e.seen).Seconds() * m.refill
	if e.remaining > m.capacity {
		e.remaining = m.capacity
	}
	e.seen = now

	if e.remaining < 1 {
		return false, nil
	}
	e.remaining--
	return true, nil
}

// Close stops the eviction goroutine. Safe to call more than once.
func (m *MemoryBucket) Close() error {
	m.stop.Do(func() { close(m.done) })
	return nil
}

func (m *MemoryBucket) evictLoop() {
	ticker := time.NewTicker(evictEvery)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.evictIdle()
		}
	}
}

func (m *MemoryBucket) evictIdle() {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-evictAfter)
	for key, e := range m.entries {
		if e.seen.Before(cutoff) {
			delete(m.entries, key)
		}
	}
}
