package merge

import (
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/parkgate/parkgate-core/internal/infrastructure/config"
)

// Cache is a TTL-bounded LRU over upstream lookup results. It is advisory:
// a nil *Cache is valid and caches nothing.
//
// Occupancy data changes continuously upstream, so the TTL stays short and
// applies uniformly; there is no per-collection tuning.
type Cache struct {
	lru *expirable.LRU[string, any]
}

// NewCache builds a cache from configuration, or nil when disabled.
func NewCache(cfg config.CacheConfig) *Cache {
	if !cfg.Enabled {
		return nil
	}
	return &Cache{
		lru: expirable.NewLRU[string, any](cfg.Size, nil, cfg.GetTTL()),
	}
}

// Get returns the cached value for a key, if present and not expired.
func (c *Cache) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	return c.lru.Get(key)
}

// Add stores a value under a key.
func (c *Cache) Add(key string, v any) {
	if c == nil {
		return
	}
	c.lru.Add(key, v)
}
