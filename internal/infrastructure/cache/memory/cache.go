// Package memory implements the read-through cache port as an in-process map
// with per-entry TTL. The service runs as a single process, so no distributed
// invalidation is needed; TTL bounds staleness when an eviction is missed.
package memory

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     any
	expiresAt time.Time
}

type Cache struct {
	mu      sync.Mutex
	entries map[string]entry

	now func() time.Time
	// onLookup, when set, observes hits and misses (metrics hook).
	onLookup func(hit bool)
}

type Option func(*Cache)

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithLookupObserver(fn func(hit bool)) Option {
	return func(c *Cache) { c.onLookup = fn }
}

func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Remember returns the cached value for key, or runs producer and caches its
// result for ttl. Producer errors are returned and never cached. The producer
// runs outside the lock; two concurrent misses may both produce and the last
// write wins.
func (c *Cache) Remember(ctx context.Context, key string, ttl time.Duration, producer func(context.Context) (any, error)) (any, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && c.now().Before(e.expiresAt) {
		c.mu.Unlock()
		c.observe(true)
		return e.value, nil
	}
	c.mu.Unlock()
	c.observe(false)

	value, err := producer(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
	return value, nil
}

func (c *Cache) Forget(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Len reports live (unexpired) entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	now := c.now()
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}

func (c *Cache) observe(hit bool) {
	if c.onLookup != nil {
		c.onLookup(hit)
	}
}
