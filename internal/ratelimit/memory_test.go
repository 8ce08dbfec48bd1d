package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBucketAllowsBurst(t *testing.T) {
	m := NewMemoryBucket(600, 5)
	t.Cleanup(func() { _ = m.Close() })

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		ok, err := m.Allow(ctx, "key")
		require.NoError(t, err)
		assert.True(t, ok, "request %d should be inside the burst", i)
	}
}

func TestMemoryBucketDeniesOverBurst(t *testing.T) {
	m := NewMemoryBucket(600, 3)
	t.Cleanup(func() { _ = m.Close() })

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		ok, err := m.Allow(ctx, "key")
		require.NoError(t, err)
		require.True(t, ok)
	}

	ok, err := m.Allow(ctx, "key")
	require.NoError(t, err)
	assert.False(t, ok, "fourth request should exceed the burst")
}

func TestMemoryBucketRefills(t *testing.T) {
	// 60000 per minute is 1000 tokens per second, so a few milliseconds
	// of sleep refills at least one token.
	m := NewMemoryBucket(60000, 2)
	t.Cleanup(func() { _ = m.Close() })

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, _ = m.Allow(ctx, "key")
	}
	ok, _ := m.Allow(ctx, "key")
	require.False(t, ok)

	time.Sleep(5 * time.Millisecond)

	ok, err := m.Allow(ctx, "key")
	require.NoError(t, err)
	assert.True(t, ok, "token should have refilled after the sleep")
}

func TestMemoryBucketKeysAreIndependent(t *testing.T) {
	m := NewMemoryBucket(600, 1)
	t.Cleanup(func() { _ = m.Close() })

	ctx := context.Background()
	ok, _ := m.Allow(ctx, "a")
	require.True(t, ok)
	ok, _ = m.Allow(ctx, "a")
	require.False(t, ok)

	ok, _ = m.Allow(ctx, "b")
	assert.True(t, ok, "exhausting one key must not affect another")
}

func TestMemoryBucketRefillCapsAtCapacity(t *testing.T) {
	m := NewMemoryBucket(60000, 3)
	t.Cleanup(func() { _ = m.Close() })

	ctx := context.Background()
	_, _ = m.Allow(ctx, "key")

	m.mu.Lock()
	m.entries["key"].seen = time.Now().Add(-time.Hour)
	m.mu.Unlock()

	for i := 0; i < 3; i++ {
		ok, _ := m.Allow(ctx, "key")
		require.True(t, ok, "request %d after long idle", i)
	}
	ok, _ := m.Allow(ctx, "key")
	assert.False(t, ok, "an hour idle must not refill past capacity")
}

func TestMemoryBucketConcurrentAccounting(t *testing.T) {
	m := NewMemoryBucket(600, 50)
	t.Cleanup(func() { _ = m.Close() })

	ctx := context.Background()
	var wg sync.WaitGroup
	counts := make([]int, 10)
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				if ok, _ := m.Allow(ctx, "shared"); ok {
					counts[idx]++
				}
			}
		}(g)
	}
	wg.Wait()

	total := 0
	for _, c := range counts {
		total += c
	}
	assert.GreaterOrEqual(t, total, 1)
	assert.LessOrEqual(t, total, 50, "100 immediate requests can consume at most the burst")
}

func TestMemoryBucketEvictsIdleKeys(t *testing.T) {
	m := NewMemoryBucket(600, 5)
	t.Cleanup(func() { _ = m.Close() })

	ctx := context.Background()
	_, _ = m.Allow(ctx, "idle")
	_, _ = m.Allow(ctx, "fresh")

	m.mu.Lock()
	m.entries["idle"].seen = time.Now().Add(-15 * time.Minute)
	m.mu.Unlock()

	m.evictIdle()

	m.mu.Lock()
	_, idleKept := m.entries["idle"]
	_, freshKept := m.entries["fresh"]
	m.mu.Unlock()

	assert.False(t, idleKept)
	assert.True(t, freshKept)
}

func TestMemoryBucketCloseIdempotent(t *testing.T) {
	m := NewMemoryBucket(600, 5)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
}

func TestDisabledAlwaysAllows(t *testing.T) {
	var l Disabled
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		ok, err := l.Allow(ctx, "anything")
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.NoError(t, l.Close())
}
