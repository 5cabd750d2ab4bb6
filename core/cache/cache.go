// Package cache is a small in-process TTL cache with tag invalidation.
// Used as the dashboard fallback when Redis is not configured.
package cache

import (
	"sync"
	"time"
)

type item struct {
	value     interface{}
	expiresAt int64 // unix nanos, 0 = no expiry
}

type Cache struct {
	mu    sync.Mutex
	items map[string]item
	tags  map[string]map[string]struct{} // tag -> keys
}

var (
	once     sync.Once
	instance *Cache
)

// GetInstance returns the process-wide cache.
func GetInstance() *Cache {
	once.Do(func() {
		instance = New()
	})
	return instance
}

func New() *Cache {
	return &Cache{
		items: make(map[string]item),
		tags:  make(map[string]map[string]struct{}),
	}
}

// Set stores value under key with a TTL in seconds (0 = no expiry) and
// optional tags for group invalidation.
func (c *Cache) Set(key string, value interface{}, ttl int64, tags []string) {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(time.Duration(ttl) * time.Second).UnixNano()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = item{value: value, expiresAt: expiresAt}
	for _, tag := range tags {
		keys, ok := c.tags[tag]
		if !ok {
			keys = make(map[string]struct{})
			c.tags[tag] = keys
		}
		keys[key] = struct{}{}
	}
}

// Get returns (value, true) when key is present and unexpired.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if it.expiresAt > 0 && time.Now().UnixNano() > it.expiresAt {
		delete(c.items, key)
		return nil, false
	}
	return it.value, true
}

// Delete removes a single key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// InvalidateTag drops every key registered under tag.
func (c *Cache) InvalidateTag(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.tags[tag] {
		delete(c.items, key)
	}
	delete(c.tags, tag)
}
