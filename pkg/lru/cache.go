// Package lru provides a small generic thread-safe LRU cache with hit and
// miss accounting.
package lru

import (
	"sync"
)

// node links an entry into the recency ring. The ring's sentinel is the
// cache's root node; root.next is the most recently used entry.
type node[K comparable, V any] struct {
	key        K
	value      V
	prev, next *node[K, V]
}

// Cache is a thread-safe generic LRU cache bounded by entry count.
type Cache[K comparable, V any] struct {
	mu    sync.Mutex
	index map[K]*node[K, V]
	root  node[K, V]
	limit int

	hits, misses, evictions int64
}

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithMaxEntries sets the maximum number of entries.
func WithMaxEntries[K comparable, V any](n int) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.limit = n
	}
}

// New creates a new LRU cache. WithMaxEntries must be provided with a
// positive limit; otherwise New panics.
func New[K comparable, V any](opts ...Option[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{}

	for _, opt := range opts {
		opt(c)
	}

	if c.limit <= 0 {
		panic("lru: a positive WithMaxEntries limit is required")
	}

	c.reset()

	return c
}

func (c *Cache[K, V]) reset() {
	c.index = make(map[K]*node[K, V], min(c.limit, 1024))
	c.root.prev = &c.root
	c.root.next = &c.root
}

// Len returns the number of entries in the cache.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.index)
}

// Get returns the value for key and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.index[key]
	if !ok {
		c.misses++

		var zero V

		return zero, false
	}

	c.hits++
	c.promote(n)

	return n.value, true
}

// Put stores value under key. When the cache is full the least recently
// used entry makes room.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.index[key]; ok {
		n.value = value
		c.promote(n)

		return
	}

	if len(c.index) >= c.limit {
		oldest := c.root.prev
		unlink(oldest)
		delete(c.index, oldest.key)
		c.evictions++
	}

	n := &node[K, V]{key: key, value: value}
	c.index[key] = n
	c.pushFront(n)
}

// Clear drops every entry. Counters survive.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reset()
}

func (c *Cache[K, V]) promote(n *node[K, V]) {
	if c.root.next == n {
		return
	}

	unlink(n)
	c.pushFront(n)
}

func (c *Cache[K, V]) pushFront(n *node[K, V]) {
	n.prev = &c.root
	n.next = c.root.next
	c.root.next.prev = n
	c.root.next = n
}

func unlink[K comparable, V any](n *node[K, V]) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev, n.next = nil, nil
}
