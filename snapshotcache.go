package nodeward

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// SnapshotCache memoizes the result of a pure, zero-argument supplier
// behind an at-most-one-concurrent-compute guard. Get returns the cached
// value if present; otherwise it computes a fresh one, coalescing any
// other concurrent callers onto the same in-flight computation via
// singleflight rather than a hand-rolled mutex-plus-condvar — the two
// give identical guarantees, and singleflight is already a transitive
// dependency of the teacher module this engine is built from.
//
// Invalidate clears the cached value. A compute racing with an Invalidate
// never writes a stale result back into the cache: the next Get simply
// triggers a fresh compute instead.
type SnapshotCache[T any] struct {
	compute func() T

	group singleflight.Group
	mu    sync.RWMutex
	value *T
	gen   uint64
}

// NewSnapshotCache builds a cache around the given pure supplier.
func NewSnapshotCache[T any](compute func() T) *SnapshotCache[T] {
	return &SnapshotCache[T]{compute: compute}
}

// Get returns the cached value, computing it if necessary.
func (c *SnapshotCache[T]) Get() T {
	c.mu.RLock()
	if c.value != nil {
		v := *c.value
		c.mu.RUnlock()
		return v
	}
	gen := c.gen
	c.mu.RUnlock()

	res, _, _ := c.group.Do("snapshot", func() (any, error) {
		v := c.compute()

		c.mu.Lock()
		if c.gen == gen {
			c.value = &v
		}
		c.mu.Unlock()

		return v, nil
	})
	return res.(T)
}

// Invalidate clears the cached value, forcing the next Get to recompute.
func (c *SnapshotCache[T]) Invalidate() {
	c.mu.Lock()
	c.value = nil
	c.gen++
	c.mu.Unlock()
}
