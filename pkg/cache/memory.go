package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/lborres/quill/core"
)

const (
	DefaultTTL     = 7 * 24 * time.Hour
	DefaultMaxSize = 10000
)

// InMemoryCache is a bounded CSRF token store. Entries expire after the
// configured TTL and the least recently used entry is evicted once MaxSize
// keys are held, so a flood of anonymous sessions cannot grow it without limit.
type InMemoryCache struct {
	lru *expirable.LRU[string, string]
	ttl time.Duration

	// counters
	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	deletes   atomic.Int64
	evictions atomic.Int64
}

var _ core.TokenStore = (*InMemoryCache)(nil)

func NewInMemoryCache(c core.CacheConfig) *InMemoryCache {
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	if c.MaxSize <= 0 {
		c.MaxSize = DefaultMaxSize
	}

	return &InMemoryCache{
		lru: expirable.NewLRU[string, string](c.MaxSize, nil, c.TTL),
		ttl: c.TTL,
	}
}

func (c *InMemoryCache) Get(_ context.Context, sessionKey string) (string, error) {
	token, ok := c.lru.Get(sessionKey)
	if !ok {
		c.misses.Add(1)
		return "", core.ErrTokenNotFound
	}
	c.hits.Add(1)
	return token, nil
}

func (c *InMemoryCache) Set(_ context.Context, sessionKey, token string) error {
	if evicted := c.lru.Add(sessionKey, token); evicted {
		c.evictions.Add(1)
	}
	c.sets.Add(1)
	return nil
}

func (c *InMemoryCache) Delete(_ context.Context, sessionKey string) error {
	if c.lru.Remove(sessionKey) {
		c.deletes.Add(1)
	}
	return nil
}

func (c *InMemoryCache) Len() int {
	return c.lru.Len()
}

func (c *InMemoryCache) Stats() core.CacheStats {
	return core.CacheStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Sets:      c.sets.Load(),
		Deletes:   c.deletes.Load(),
		Evictions: c.evictions.Load(),
		Size:      c.Len(),
		TTL:       c.ttl,
	}
}
