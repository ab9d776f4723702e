// # internal/cache/cache.go
//
// In-memory compilation cache keyed by source fingerprint: LRU bounded,
// single-flight per fingerprint, failures never cached. Concurrent callers
// asking for the same fingerprint share one compilation and all receive its
// result; callers for distinct fingerprints never block each other.
package cache

import (
	"container/list"
	"sync"
)

type Cache[V any] struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	lru      *list.List // front = most recent
	inflight map[string]*flight[V]
	stats    Stats
}

type entry[V any] struct {
	fingerprint string
	value       V
}

type flight[V any] struct {
	done chan struct{}
	val  V
	err  error
}

// Stats is a point-in-time counter snapshot.
type Stats struct {
	Hits          uint64
	Misses        uint64
	Invalidations uint64
	Evictions     uint64
}

// HitRate is hits over lookups, 0 when nothing has been looked up.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// New creates a cache holding at most capacity entries. capacity < 1 is
// treated as 1.
func New[V any](capacity int) *Cache[V] {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache[V]{
		capacity: capacity,
		entries:  map[string]*list.Element{},
		lru:      list.New(),
		inflight: map[string]*flight[V]{},
	}
}

// GetOrCompile returns the cached value for fingerprint or runs compile to
// produce it. While a compilation is in flight, other callers with the same
// fingerprint wait for it instead of compiling again. A failed compilation
// is returned to every waiter and nothing is cached.
func (c *Cache[V]) GetOrCompile(fingerprint string, compile func() (V, error)) (V, error) {
	c.mu.Lock()
	if el, ok := c.entries[fingerprint]; ok {
		c.lru.MoveToFront(el)
		c.stats.Hits++
		v := el.Value.(*entry[V]).value
		c.mu.Unlock()
		return v, nil
	}
	if f, ok := c.inflight[fingerprint]; ok {
		c.mu.Unlock()
		<-f.done
		return f.val, f.err
	}
	c.stats.Misses++
	f := &flight[V]{done: make(chan struct{})}
	c.inflight[fingerprint] = f
	c.mu.Unlock()

	f.val, f.err = compile()
	close(f.done)

	c.mu.Lock()
	delete(c.inflight, fingerprint)
	if f.err == nil {
		c.insert(fingerprint, f.val)
	}
	c.mu.Unlock()
	return f.val, f.err
}

// insert assumes the lock is held.
func (c *Cache[V]) insert(fingerprint string, v V) {
	if el, ok := c.entries[fingerprint]; ok {
		el.Value.(*entry[V]).value = v
		c.lru.MoveToFront(el)
		return
	}
	c.entries[fingerprint] = c.lru.PushFront(&entry[V]{fingerprint: fingerprint, value: v})
	for c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		c.lru.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry[V]).fingerprint)
		c.stats.Evictions++
	}
}

// Get returns the cached value without compiling.
func (c *Cache[V]) Get(fingerprint string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[fingerprint]; ok {
		c.lru.MoveToFront(el)
		c.stats.Hits++
		return el.Value.(*entry[V]).value, true
	}
	c.stats.Misses++
	var zero V
	return zero, false
}

// Put stores a value directly, e.g. when warming from the persistent store.
func (c *Cache[V]) Put(fingerprint string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.insert(fingerprint, v)
}

// Invalidate drops the entry for a fingerprint, if present. In-flight
// compilations are unaffected; their result lands normally.
func (c *Cache[V]) Invalidate(fingerprint string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[fingerprint]; ok {
		c.lru.Remove(el)
		delete(c.entries, fingerprint)
	}
	c.stats.Invalidations++
}

// Purge empties the cache.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]*list.Element{}
	c.lru.Init()
}

func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
