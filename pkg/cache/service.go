package cache

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/pario-ai/answercache/pkg/analytics"
	"github.com/pario-ai/answercache/pkg/answer"
	"github.com/pario-ai/answercache/pkg/keying"
	"github.com/pario-ai/answercache/pkg/models"
)

// ServiceOptions configures a Service.
type ServiceOptions struct {
	// HitLatency and MissLatency are the synthetic latencies reported per
	// branch, in milliseconds.
	HitLatency  int
	MissLatency int
	Analytics   analytics.Settings
	Logger      *zap.Logger
}

// Service answers queries through the cache, calling the generator on misses.
type Service struct {
	cache *Cache
	gen   answer.Generator
	group singleflight.Group
	opts  ServiceOptions
	log   *zap.Logger
}

// NewService wires a cache to a generator.
func NewService(c *Cache, gen answer.Generator, opts ServiceOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cache: c, gen: gen, opts: opts, log: logger}
}

// Cache returns the underlying cache.
func (s *Service) Cache() *Cache { return s.cache }

// Answer resolves query from cache or the generator.
//
// The generator runs outside the cache lock. Concurrent misses on the same
// key share a single generator call and a single insert; each caller is
// still counted as a miss.
func (s *Service) Answer(ctx context.Context, query string) (models.QueryResult, error) {
	key := keying.Normalize(query)

	if value, ok := s.cache.Lookup(key); ok {
		return models.QueryResult{
			Answer:   value,
			Cached:   true,
			Latency:  s.opts.HitLatency,
			CacheKey: key,
		}, nil
	}

	v, err, shared := s.group.Do(key, func() (any, error) {
		// Detached so one caller going away does not fail the others.
		ans, err := s.gen.Generate(context.WithoutCancel(ctx), query)
		if err != nil {
			return "", err
		}
		s.cache.Insert(key, ans)
		return ans, nil
	})
	if err != nil {
		return models.QueryResult{}, fmt.Errorf("generate answer: %w", err)
	}
	if shared {
		s.log.Debug("coalesced miss", zap.String("cache_key", key))
	}

	return models.QueryResult{
		Answer:   v.(string),
		Cached:   false,
		Latency:  s.opts.MissLatency,
		CacheKey: key,
	}, nil
}

// Analytics reports the current counters and occupancy.
func (s *Service) Analytics() models.AnalyticsReport {
	return analytics.Compute(s.cache.Snapshot(), s.opts.Analytics)
}
