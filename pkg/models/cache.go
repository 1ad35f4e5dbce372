package models

// AnalyticsReport is the point-in-time view served by GET /analytics.
// Rates and money are rounded to two decimals; counters are exact.
type AnalyticsReport struct {
	HitRate            float64  `json:"hitRate"`
	MissRate           float64  `json:"missRate"`
	TotalRequests      uint64   `json:"totalRequests"`
	CacheHits          uint64   `json:"cacheHits"`
	CacheMisses        uint64   `json:"cacheMisses"`
	CacheSize          int      `json:"cacheSize"`
	CostSavings        float64  `json:"costSavings"`
	CostSavingsPercent *float64 `json:"costSavingsPercent,omitempty"`
	Strategies         []string `json:"strategies"`
}

// PruneResult reports how many entries a maintenance pass removed.
type PruneResult struct {
	Expired int `json:"expired"`
	Evicted int `json:"evicted"`
}
