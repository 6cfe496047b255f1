// Package cache provides a short-lived result cache backed by a bounded
// in-memory map with an optional durable side-store.
package cache

import (
	"sync"
	"time"
)

const (
	// DefaultTTL is the entry lifetime when the caller does not override it.
	DefaultTTL = time.Hour
	// DefaultMaxEntries is the in-memory entry ceiling.
	DefaultMaxEntries = 1000
)

// DurableStore is the persistent side-store behind the in-memory map.
// Values are opaque bytes so the memory and durable copies stay identical.
type DurableStore interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte, ttl time.Duration) error
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Cache is a bounded FIFO cache. When the entry count exceeds the ceiling,
// entries are evicted in insertion order. Access recency is not tracked.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	order      []string
	maxEntries int
	ttl        time.Duration
	durable    DurableStore
	now        func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithMaxEntries overrides the in-memory entry ceiling.
func WithMaxEntries(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithTTL overrides the default entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithDurableStore attaches a persistent side-store. Reads fall through to
// it on memory miss and repopulate memory on hit; writes go to both.
func WithDurableStore(s DurableStore) Option {
	return func(c *Cache) { c.durable = s }
}

// New builds a cache with the default ceiling and TTL.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:    make(map[string]*entry),
		maxEntries: DefaultMaxEntries,
		ttl:        DefaultTTL,
		now:        time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get returns the cached value for key. A memory miss falls through to the
// durable store; a durable hit repopulates memory.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		if c.now().Before(e.expiresAt) {
			val := e.value
			c.mu.Unlock()
			return val, true
		}
		c.removeLocked(key)
	}
	c.mu.Unlock()

	if c.durable == nil {
		return nil, false
	}
	val, ok, err := c.durable.Get(key)
	if err != nil || !ok {
		return nil, false
	}
	c.mu.Lock()
	c.putLocked(key, val)
	c.mu.Unlock()
	return val, true
}

// Set stores value under key in memory and, when configured, the durable
// store. The durable write error is returned but memory is updated
// regardless, so callers keep read-after-write locally.
func (c *Cache) Set(key string, value []byte) error {
	c.mu.Lock()
	c.putLocked(key, value)
	c.mu.Unlock()

	if c.durable == nil {
		return nil
	}
	return c.durable.Set(key, value, c.ttl)
}

// Len returns the current in-memory entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) putLocked(key string, value []byte) {
	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = &entry{value: value, expiresAt: c.now().Add(c.ttl)}
	for len(c.entries) > c.maxEntries {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

func (c *Cache) removeLocked(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
