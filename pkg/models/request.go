package models

// QueryRequest is the body of POST /.
type QueryRequest struct {
	Query *string `json:"query"`
}

// QueryResult is the answer to a single query plus cache metadata.
type QueryResult struct {
	Answer   string `json:"answer"`
	Cached   bool   `json:"cached"`
	Latency  int    `json:"latency"`
	CacheKey string `json:"cacheKey"`
}
