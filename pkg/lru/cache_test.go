package lru_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schierlm/mnemonifier/pkg/lru"
)

const (
	// testMaxEntries is the default max entries for basic tests.
	testMaxEntries = 100

	// smallMaxEntries limits the cache to 3 entries for eviction tests.
	smallMaxEntries = 3

	// testConcurrentGoroutines is the number of goroutines for concurrency tests.
	testConcurrentGoroutines = 32

	// testConcurrentOps is the number of operations per goroutine.
	testConcurrentOps = 200
)

func TestCache_GetPut(t *testing.T) {
	t.Parallel()

	cache := lru.New(lru.WithMaxEntries[rune, string](testMaxEntries))

	got, found := cache.Get('x')
	assert.False(t, found)
	assert.Empty(t, got)

	cache.Put('x', "hello")

	got, found = cache.Get('x')
	require.True(t, found)
	assert.Equal(t, "hello", got)
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	cache := lru.New(lru.WithMaxEntries[int, string](smallMaxEntries))

	cache.Put(1, "a")
	cache.Put(2, "b")
	cache.Put(3, "c")

	// Key 1 becomes most recently used, so key 2 is next in line.
	cache.Get(1)
	cache.Put(4, "d")

	_, found := cache.Get(2)
	assert.False(t, found, "key 2 should be evicted")

	for _, key := range []int{1, 3, 4} {
		_, found = cache.Get(key)
		assert.True(t, found, "key %d should still exist", key)
	}

	assert.Equal(t, smallMaxEntries, cache.Len())
	assert.Equal(t, int64(1), cache.Stats().Evictions)
}

func TestCache_DuplicatePutUpdates(t *testing.T) {
	t.Parallel()

	cache := lru.New(lru.WithMaxEntries[int, string](testMaxEntries))

	cache.Put(1, "first")
	cache.Put(1, "second")

	got, found := cache.Get(1)
	require.True(t, found)
	assert.Equal(t, "second", got)
	assert.Equal(t, 1, cache.Len())
}

func TestCache_Clear(t *testing.T) {
	t.Parallel()

	cache := lru.New(lru.WithMaxEntries[int, string](testMaxEntries))

	cache.Put(1, "a")
	cache.Put(2, "b")
	cache.Clear()

	assert.Equal(t, 0, cache.Len())

	_, found := cache.Get(1)
	assert.False(t, found)
}

func TestCache_Stats(t *testing.T) {
	t.Parallel()

	cache := lru.New(lru.WithMaxEntries[int, string](testMaxEntries))

	cache.Put(1, "a")
	cache.Get(1) // Hit.
	cache.Get(2) // Miss.

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, testMaxEntries, stats.MaxEntries)
	assert.InDelta(t, 0.5, stats.HitRate(), 0.001)
}

func TestStats_HitRate_Empty(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.0, lru.Stats{}.HitRate(), 0.001)
}

func TestNew_RequiresLimit(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { lru.New[int, string]() })
	assert.Panics(t, func() { lru.New(lru.WithMaxEntries[int, string](0)) })
}

func TestCache_Concurrent(t *testing.T) {
	t.Parallel()

	cache := lru.New(lru.WithMaxEntries[int, int](testMaxEntries))

	var wg sync.WaitGroup

	for g := range testConcurrentGoroutines {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range testConcurrentOps {
				key := (g*testConcurrentOps + i) % (testMaxEntries * 2)
				cache.Put(key, i)
				cache.Get(key)
			}
		}()
	}

	wg.Wait()

	assert.LessOrEqual(t, cache.Len(), testMaxEntries)
}
