package analytics

import "time"

// Endpoint names the lookup surface an event came from.
type Endpoint string

const (
	EndpointMatches    Endpoint = "matches"
	EndpointAnagrams   Endpoint = "anagrams"
	EndpointDictionary Endpoint = "dictionary"
	EndpointRelated    Endpoint = "related"
)

// LookupEvent is recorded once per successful lookup request.
type LookupEvent struct {
	RequestID string    `json:"request_id"`
	Endpoint  Endpoint  `json:"endpoint"`
	Query     string    `json:"query"`
	Total     int       `json:"total"`
	Returned  int       `json:"returned"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot is a persisted copy of the aggregate stats.
type Snapshot struct {
	Stats      AggregatedStats `json:"stats"`
	CapturedAt time.Time       `json:"captured_at"`
}
