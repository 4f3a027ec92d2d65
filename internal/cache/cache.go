// Package cache provides an in-memory TTL cache with ETag support for the
// serve surface. Expired entries are evicted lazily on access and swept on
// writes, so the cache needs no background goroutine.
package cache

import (
	"crypto/md5"
	"fmt"
	"sync"
	"time"
)

// sweepThreshold triggers a full sweep of expired entries during Set.
const sweepThreshold = 256

type entry struct {
	data      []byte
	etag      string
	expiresAt time.Time
}

// Cache is a thread-safe in-memory TTL cache.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	enabled bool
}

// New creates a new cache. Pass enabled=false to create a no-op cache.
func New(enabled bool) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		enabled: enabled,
	}
}

// Get retrieves a cached value. Returns data, etag, and whether a live entry
// was found. An expired entry is removed on the way out.
func (c *Cache) Get(key string) (data []byte, etag string, ok bool) {
	if !c.enabled {
		return nil, "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, exists := c.entries[key]
	if !exists {
		return nil, "", false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, "", false
	}
	return e.data, e.etag, true
}

// Set stores a value with a TTL and returns its ETag.
func (c *Cache) Set(key string, data []byte, ttl time.Duration) string {
	etag := ComputeETag(data)
	if !c.enabled {
		return etag
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= sweepThreshold {
		c.sweepLocked()
	}
	c.entries[key] = entry{
		data:      data,
		etag:      etag,
		expiresAt: time.Now().Add(ttl),
	}
	return etag
}

// Stats returns cache statistics.
func (c *Cache) Stats() map[string]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	live := 0
	now := time.Now()
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			live++
		}
	}
	return map[string]interface{}{
		"enabled":   c.enabled,
		"keys":      len(c.entries),
		"live_keys": live,
	}
}

func (c *Cache) sweepLocked() {
	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// ComputeETag generates a weak ETag from response data using MD5.
func ComputeETag(data []byte) string {
	hash := md5.Sum(data)
	return fmt.Sprintf(`W/"%x"`, hash[:8])
}

// CheckETagMatch checks if If-None-Match header matches the current ETag.
func CheckETagMatch(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	if ifNoneMatch == "*" {
		return true
	}
	return ifNoneMatch == etag
}
