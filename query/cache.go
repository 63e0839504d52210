package query

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ProgramCache stores compiled expression programs keyed by expression.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MemoryCache is a ProgramCache backed by an in-process expiring map.
type MemoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache builds a cache whose entries expire after ttl. A ttl of zero
// or less keeps entries until the process exits.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		return &MemoryCache{store: gocache.New(gocache.NoExpiration, 0)}
	}
	return &MemoryCache{store: gocache.New(ttl, 2*ttl)}
}

// Get returns the cached program for key.
func (c *MemoryCache) Get(key string) (any, bool) {
	if c == nil || c.store == nil {
		return nil, false
	}
	return c.store.Get(key)
}

// Set stores value under key using the cache default expiration.
func (c *MemoryCache) Set(key string, value any) {
	if c == nil || c.store == nil {
		return
	}
	c.store.Set(key, value, gocache.DefaultExpiration)
}

// Len reports the number of cached programs, including expired ones not yet
// evicted.
func (c *MemoryCache) Len() int {
	if c == nil || c.store == nil {
		return 0
	}
	return c.store.ItemCount()
}

// Flush drops every cached program.
func (c *MemoryCache) Flush() {
	if c == nil || c.store == nil {
		return
	}
	c.store.Flush()
}
