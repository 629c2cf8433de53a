// Package infra provides shared infrastructure components used across
// the application.
package infra

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is a thread-safe in-memory cache with a default TTL, backed by
// go-cache. Expired entries are purged every cleanup interval.
type Cache struct {
	c *gocache.Cache
}

// NewCache creates a cache with the given default TTL. A non-positive ttl
// means entries never expire. Expired entries are swept every 2×ttl.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		return &Cache{c: gocache.New(gocache.NoExpiration, 0)}
	}
	return &Cache{c: gocache.New(ttl, 2*ttl)}
}

// Get retrieves a value from the cache. Returns nil, false if not found or expired.
func (c *Cache) Get(key string) (any, bool) {
	return c.c.Get(key)
}

// Set stores a value in the cache with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.c.Set(key, value, gocache.DefaultExpiration)
}

// Flush removes all entries from the cache.
func (c *Cache) Flush() {
	c.c.Flush()
}

// Len returns the number of stored entries, including expired ones not yet
// swept.
func (c *Cache) Len() int {
	return c.c.ItemCount()
}
