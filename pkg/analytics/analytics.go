// Package analytics turns raw cache counters into the reported hit/miss and
// cost-savings figures.
package analytics

import (
	"math"

	"github.com/pario-ai/answercache/pkg/models"
)

var strategies = []string{"exact match", "LRU eviction", "TTL expiration"}

// Strategies returns the policies in effect. Each call returns a fresh slice.
func Strategies() []string {
	return append([]string(nil), strategies...)
}

// Snapshot is a point-in-time copy of the cache counters and occupancy.
type Snapshot struct {
	TotalRequests uint64
	CacheHits     uint64
	CacheMisses   uint64
	CachedTokens  uint64
	CacheSize     int
}

// Settings parameterizes cost estimation.
type Settings struct {
	CostPerMillionTokens float64
	IncludeSavingsPct    bool
}

// Compute derives the external report from a snapshot.
func Compute(s Snapshot, cfg Settings) models.AnalyticsReport {
	hitRate := ratio(s.CacheHits, s.TotalRequests)
	missRate := ratio(s.CacheMisses, s.TotalRequests)

	report := models.AnalyticsReport{
		HitRate:       round2(hitRate),
		MissRate:      round2(missRate),
		TotalRequests: s.TotalRequests,
		CacheHits:     s.CacheHits,
		CacheMisses:   s.CacheMisses,
		CacheSize:     s.CacheSize,
		CostSavings:   round2(CostSavings(s.CachedTokens, cfg.CostPerMillionTokens)),
		Strategies:    Strategies(),
	}
	if cfg.IncludeSavingsPct {
		pct := round2(hitRate * 100)
		report.CostSavingsPercent = &pct
	}
	return report
}

// CostSavings estimates the money saved by serving tokens from cache.
func CostSavings(cachedTokens uint64, costPerMillion float64) float64 {
	return float64(cachedTokens) * costPerMillion / 1_000_000
}

func ratio(n, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

// round2 rounds to two decimals, halves away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
