package models

import "time"

// QueryLogEntry is one answered query in the request journal.
type QueryLogEntry struct {
	RequestID string    `json:"request_id"`
	CacheKey  string    `json:"cache_key"`
	Query     string    `json:"query,omitempty"`
	Cached    bool      `json:"cached"`
	LatencyMs int       `json:"latency_ms"`
	CreatedAt time.Time `json:"created_at"`
}

// QueryLogOpts specifies filters for searching the journal.
type QueryLogOpts struct {
	CacheKey  string
	RequestID string
	Since     time.Time
	Cached    *bool
	Limit     int
}

// QueryLogStat holds hit and miss counts for one day.
type QueryLogStat struct {
	Day    string
	Hits   int
	Misses int
}
