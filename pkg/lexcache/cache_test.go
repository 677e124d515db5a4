package lexcache_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdstream/pkg/lexcache"
)

func TestCache_GetPut(t *testing.T) {
	t.Parallel()

	c := lexcache.New[int](3)
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Put("a", 1)
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, got)

	hits, misses := c.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
}

func TestCache_EvictsOldestInsertion(t *testing.T) {
	t.Parallel()

	c := lexcache.New[string](3)
	for _, k := range []string{"a", "b", "c"} {
		c.Put(k, k)
	}

	// Reading does not refresh position.
	_, _ = c.Get("a")
	c.Put("d", "d")

	assert.Equal(t, []string{"b", "c", "d"}, c.Keys())
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestCache_OverwriteKeepsPosition(t *testing.T) {
	t.Parallel()

	c := lexcache.New[int](2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("a", 3)

	assert.Equal(t, []string{"a", "b"}, c.Keys())
	got, _ := c.Get("a")
	assert.Equal(t, 3, got)
	assert.Equal(t, 2, c.Len())
}

func TestCache_DefaultSize(t *testing.T) {
	t.Parallel()

	c := lexcache.New[int](0)
	for i := range 15 {
		c.Put(fmt.Sprint(i), i)
	}
	assert.Equal(t, lexcache.DefaultSize, c.Len())
	assert.Equal(t, "5", c.Keys()[0])
}

func TestCache_GetOrCompute(t *testing.T) {
	t.Parallel()

	c := lexcache.New[int](2)
	calls := 0
	compute := func() (int, error) {
		calls++
		return 42, nil
	}

	v, hit, err := c.GetOrCompute("k", compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 42, v)

	v, hit, err = c.GetOrCompute("k", compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)

	errBoom := errors.New("boom")
	_, _, err = c.GetOrCompute("bad", func() (int, error) { return 0, errBoom })
	require.ErrorIs(t, err, errBoom)
	_, ok := c.Get("bad")
	assert.False(t, ok, "errors are not cached")
}

func TestCache_Clear(t *testing.T) {
	t.Parallel()

	c := lexcache.New[int](2)
	c.Put("a", 1)
	_, _ = c.Get("a")
	c.Clear()

	assert.Equal(t, 0, c.Len())
	hits, misses := c.Stats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
}

func TestCache_Concurrent(t *testing.T) {
	t.Parallel()

	c := lexcache.New[int](4)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				key := fmt.Sprint((i + j) % 6)
				c.Put(key, j)
				_, _ = c.Get(key)
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 4)
}
