package di

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// InMemoryCache is a bounded TTL cache for query results. The least recently
// used entry is evicted when full; expired entries are dropped on read.
type InMemoryCache struct {
	items *lru.Cache[string, cacheItem]
	now   func() time.Time
}

type cacheItem struct {
	value     interface{}
	expiresAt time.Time
}

// NewInMemoryCache creates a new in-memory cache holding at most maxEntries
func NewInMemoryCache(maxEntries int) *InMemoryCache {
	if maxEntries <= 0 {
		maxEntries = 256
	}
	items, err := lru.New[string, cacheItem](maxEntries)
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}
	return &InMemoryCache{
		items: items,
		now:   time.Now,
	}
}

// Get retrieves a value from cache
func (c *InMemoryCache) Get(ctx context.Context, key string) (interface{}, bool) {
	item, ok := c.items.Get(key)
	if !ok {
		return nil, false
	}
	if c.now().After(item.expiresAt) {
		c.items.Remove(key)
		return nil, false
	}
	return item.value, true
}

// Set stores a value in cache with TTL in seconds
func (c *InMemoryCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	c.items.Add(key, cacheItem{
		value:     value,
		expiresAt: c.now().Add(time.Duration(ttl) * time.Second),
	})
	return nil
}

// Len reports the number of stored entries, expired ones included
func (c *InMemoryCache) Len() int {
	return c.items.Len()
}
