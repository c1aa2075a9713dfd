package cache

import (
	"sync"
	"time"
)

type entry struct {
	value  any
	expiry time.Time
}

// Cache is a bounded TTL map meant to be constructed once and injected into
// whichever service needs it, so callers can swap it for a fake in tests.
type Cache struct {
	mu    sync.Mutex
	ttl   time.Duration
	max   int
	items map[string]entry
}

func New(ttl time.Duration, max int) *Cache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if max <= 0 {
		max = 10000
	}
	return &Cache{ttl: ttl, max: max, items: make(map[string]entry, max)}
}

func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items[key]
	if !ok || time.Now().After(e.expiry) {
		delete(c.items, key)
		return nil, false
	}
	return e.value, true
}

func (c *Cache) Set(key string, value any) {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = entry{value: value, expiry: now.Add(c.ttl)}
	if len(c.items) > c.max {
		for k, e := range c.items {
			if now.After(e.expiry) {
				delete(c.items, k)
			}
			if len(c.items) <= c.max {
				break
			}
		}
	}
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
