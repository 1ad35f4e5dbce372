// Package cache memoizes answers in a bounded in-process store and keeps the
// counters behind the hit/miss analytics.
package cache

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pario-ai/answercache/pkg/analytics"
	"github.com/pario-ai/answercache/pkg/cache/lru"
	"github.com/pario-ai/answercache/pkg/metrics"
	"github.com/pario-ai/answercache/pkg/models"
)

// Options configures a Cache.
type Options struct {
	MaxSize             int
	TTL                 time.Duration
	AvgTokensPerRequest int

	// Now defaults to time.Now.
	Now     func() time.Time
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// Cache is an LRU+TTL answer store with running analytics counters.
// One mutex covers the store and the counters.
type Cache struct {
	mu    sync.Mutex
	store *lru.Store

	tokensPerHit uint64
	now          func() time.Time
	metrics      *metrics.Metrics
	logger       *zap.Logger

	totalRequests uint64
	hits          uint64
	misses        uint64
	cachedTokens  uint64
}

// New creates an empty Cache.
func New(opts Options) *Cache {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tokens := opts.AvgTokensPerRequest
	if tokens < 0 {
		tokens = 0
	}
	return &Cache{
		store:        lru.New(opts.MaxSize, opts.TTL),
		tokensPerHit: uint64(tokens),
		now:          now,
		metrics:      opts.Metrics,
		logger:       logger,
	}
}

// Lookup counts a request, prunes, and returns the cached answer for key.
// A hit promotes the entry and credits the saved tokens; a miss is counted
// but leaves the store for the caller to fill with Insert.
func (c *Cache) Lookup(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalRequests++
	c.pruneLocked()

	value, ok := c.store.Get(key)
	if !ok {
		c.misses++
		c.metrics.ObserveMiss()
		return "", false
	}
	c.hits++
	c.cachedTokens += c.tokensPerHit
	c.metrics.ObserveHit(int(c.tokensPerHit))
	return value, true
}

// Insert stores value under key as the most recently used entry, stamped
// with the current time, evicting to capacity.
func (c *Cache) Insert(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n := c.store.Set(key, value, c.now()); n > 0 {
		c.metrics.ObserveEvictions(metrics.ReasonCapacity, n)
		c.logger.Debug("evicted entries", zap.String("reason", metrics.ReasonCapacity), zap.Int("count", n))
	}
	c.metrics.SetEntries(c.store.Len())
}

// Prune expires stale entries and evicts to capacity. Counters are untouched.
func (c *Cache) Prune() models.PruneResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pruneLocked()
}

// Clear drops every entry and keeps the counters.
func (c *Cache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.store.Clear()
	c.metrics.SetEntries(0)
	return n
}

// Len returns the resident entry count without pruning.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Len()
}

// Keys returns resident keys, most recently used first.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Keys()
}

// Snapshot copies the counters and current occupancy. It does not prune, so
// the size may include entries that have expired since the last lookup.
func (c *Cache) Snapshot() analytics.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return analytics.Snapshot{
		TotalRequests: c.totalRequests,
		CacheHits:     c.hits,
		CacheMisses:   c.misses,
		CachedTokens:  c.cachedTokens,
		CacheSize:     c.store.Len(),
	}
}

func (c *Cache) pruneLocked() models.PruneResult {
	expired, evicted := c.store.Prune(c.now())
	if expired > 0 {
		c.metrics.ObserveEvictions(metrics.ReasonTTL, expired)
		c.logger.Debug("evicted entries", zap.String("reason", metrics.ReasonTTL), zap.Int("count", expired))
	}
	if evicted > 0 {
		c.metrics.ObserveEvictions(metrics.ReasonCapacity, evicted)
		c.logger.Debug("evicted entries", zap.String("reason", metrics.ReasonCapacity), zap.Int("count", evicted))
	}
	c.metrics.SetEntries(c.store.Len())
	return models.PruneResult{Expired: expired, Evicted: evicted}
}
