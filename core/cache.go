package core

import (
	"time"

	"github.com/lborres/quill/pkg/metrics"
)

// CacheConfig configures the bounded in-memory token store
type CacheConfig struct {
	TTL     time.Duration
	MaxSize int
}

// CacheStats are simple counters for store behavior, exported as metrics
// when the store reports them.
type CacheStats = metrics.StoreStats
