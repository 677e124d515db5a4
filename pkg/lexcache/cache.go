// Package lexcache provides a bounded first-in first-out cache of lex
// results keyed by literal source text.
package lexcache

import (
	"sync"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// DefaultSize is the capacity of caches created with a size below one.
const DefaultSize = 10

// Cache maps keys to values, evicting the oldest insertion once full.
// Lookups do not refresh an entry's position. A Cache is safe for
// concurrent use.
type Cache[V any] struct {
	mu      sync.Mutex
	entries *linkedhashmap.Map
	size    int
	hits    uint64
	misses  uint64
}

// New creates a cache holding at most size entries.
func New[V any](size int) *Cache[V] {
	if size < 1 {
		size = DefaultSize
	}
	return &Cache[V]{
		entries: linkedhashmap.New(),
		size:    size,
	}
}

// Get returns the value stored under key.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	value, found := c.entries.Get(key)
	if !found {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	return value.(V), true //nolint:forcetypeassert // only Put stores values
}

// Put stores value under key. An existing key keeps its insertion
// position.
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, found := c.entries.Get(key); !found {
		for c.entries.Size() >= c.size {
			c.evictOldest()
		}
	}
	c.entries.Put(key, value)
}

// GetOrCompute returns the cached value for key, calling compute and
// storing its result on a miss. Errors are returned and not cached.
// compute runs without the lock held.
func (c *Cache[V]) GetOrCompute(key string, compute func() (V, error)) (V, bool, error) {
	if value, ok := c.Get(key); ok {
		return value, true, nil
	}
	value, err := compute()
	if err != nil {
		return value, false, err
	}
	c.Put(key, value)
	return value, false, nil
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Size()
}

// Keys returns the cached keys, oldest first.
func (c *Cache[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, c.entries.Size())
	for _, k := range c.entries.Keys() {
		keys = append(keys, k.(string)) //nolint:forcetypeassert // keys are strings
	}
	return keys
}

// Stats returns the number of hits and misses since creation or the last
// Clear.
func (c *Cache[V]) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Clear removes every entry and resets the statistics.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Clear()
	c.hits, c.misses = 0, 0
}

func (c *Cache[V]) evictOldest() {
	it := c.entries.Iterator()
	if it.First() {
		c.entries.Remove(it.Key())
	}
}
