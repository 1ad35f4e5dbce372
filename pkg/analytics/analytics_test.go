package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaults = Settings{CostPerMillionTokens: 0.50, IncludeSavingsPct: true}

func TestComputeZeroState(t *testing.T) {
	r := Compute(Snapshot{}, defaults)

	assert.Zero(t, r.HitRate)
	assert.Zero(t, r.MissRate)
	assert.False(t, math.IsNaN(r.HitRate))
	assert.Zero(t, r.CostSavings)
	require.NotNil(t, r.CostSavingsPercent)
	assert.Zero(t, *r.CostSavingsPercent)
	assert.Equal(t, []string{"exact match", "LRU eviction", "TTL expiration"}, r.Strategies)
}

func TestComputeRates(t *testing.T) {
	r := Compute(Snapshot{TotalRequests: 3, CacheHits: 2, CacheMisses: 1, CachedTokens: 1000, CacheSize: 1}, defaults)

	assert.Equal(t, 0.67, r.HitRate)
	assert.Equal(t, 0.33, r.MissRate)
	assert.Equal(t, uint64(3), r.TotalRequests)
	assert.Equal(t, 1, r.CacheSize)
	require.NotNil(t, r.CostSavingsPercent)
	assert.Equal(t, 66.67, *r.CostSavingsPercent)
}

func TestComputeCostSavings(t *testing.T) {
	// 20,000 hits at 500 tokens each is 10M tokens, $5 at $0.50/M.
	r := Compute(Snapshot{TotalRequests: 20000, CacheHits: 20000, CachedTokens: 10_000_000}, defaults)
	assert.Equal(t, 5.0, r.CostSavings)

	// Small savings round away in the report but not in CostSavings.
	assert.InDelta(t, 0.00025, CostSavings(500, 0.50), 1e-12)
	r = Compute(Snapshot{TotalRequests: 1, CacheHits: 1, CachedTokens: 500}, defaults)
	assert.Zero(t, r.CostSavings)
}

func TestComputeWithoutSavingsPercent(t *testing.T) {
	r := Compute(Snapshot{TotalRequests: 4, CacheHits: 1}, Settings{CostPerMillionTokens: 1})
	assert.Nil(t, r.CostSavingsPercent)
	assert.Equal(t, 0.25, r.HitRate)
}

func TestCostSavingsMonotonic(t *testing.T) {
	prev := -1.0
	var tokens uint64
	for range 100 {
		tokens += 500
		got := Compute(Snapshot{CachedTokens: tokens}, defaults).CostSavings
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}
}

func TestStrategiesNotShared(t *testing.T) {
	r := Compute(Snapshot{}, defaults)
	r.Strategies[0] = "mutated"
	assert.Equal(t, "exact match", Strategies()[0])

	s := Strategies()
	s[1] = "mutated"
	assert.Equal(t, "LRU eviction", Strategies()[1])
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 0.13, round2(0.125))
	assert.Equal(t, 0.5, round2(0.5))
	assert.Equal(t, 0.33, round2(1.0/3))
	assert.Equal(t, 0.67, round2(2.0/3))
}
