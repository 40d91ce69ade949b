package analytics

import (
	"cmp"
	"slices"
	"sync"
	"time"
)

// maxLatencySamples bounds the latency window used for percentiles.
const maxLatencySamples = 10000

type AggregatedStats struct {
	TotalLookups      int64              `json:"total_lookups"`
	ByEndpoint        map[Endpoint]int64 `json:"by_endpoint"`
	CacheHits         int64              `json:"cache_hits"`
	ZeroResultCount   int64              `json:"zero_result_count"`
	ZeroResultRate    float64            `json:"zero_result_rate"`
	AvgLatencyMs      float64            `json:"avg_latency_ms"`
	P50LatencyMs      int64              `json:"p50_latency_ms"`
	P95LatencyMs      int64              `json:"p95_latency_ms"`
	P99LatencyMs      int64              `json:"p99_latency_ms"`
	TopQueries        []QueryCount       `json:"top_queries"`
	ZeroResultQueries []QueryCount       `json:"zero_result_queries"`
	QueriesPerMinute  float64            `json:"queries_per_minute"`
}

type QueryCount struct {
	Endpoint Endpoint `json:"endpoint"`
	Query    string   `json:"query"`
	Count    int64    `json:"count"`
}

type queryKey struct {
	endpoint Endpoint
	query    string
}

// Aggregator keeps in-process totals over every recorded event.
type Aggregator struct {
	mu                sync.Mutex
	total             int64
	byEndpoint        map[Endpoint]int64
	cacheHits         int64
	zeroResults       int64
	latencies         []int64
	next              int
	queryCounts       map[queryKey]int64
	zeroResultQueries map[queryKey]int64
	startTime         time.Time
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		byEndpoint:        make(map[Endpoint]int64),
		latencies:         make([]int64, 0, 1024),
		queryCounts:       make(map[queryKey]int64),
		zeroResultQueries: make(map[queryKey]int64),
		startTime:         time.Now(),
	}
}

// Record folds one event into the totals.
func (a *Aggregator) Record(event LookupEvent) {
	key := queryKey{endpoint: event.Endpoint, query: event.Query}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.total++
	a.byEndpoint[event.Endpoint]++
	if event.CacheHit {
		a.cacheHits++
	}
	a.queryCounts[key]++
	if event.Total == 0 {
		a.zeroResults++
		a.zeroResultQueries[key]++
	}
	if len(a.latencies) < maxLatencySamples {
		a.latencies = append(a.latencies, event.LatencyMs)
	} else {
		a.latencies[a.next] = event.LatencyMs
		a.next = (a.next + 1) % maxLatencySamples
	}
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	stats := AggregatedStats{
		TotalLookups:    a.total,
		ByEndpoint:      make(map[Endpoint]int64, len(a.byEndpoint)),
		CacheHits:       a.cacheHits,
		ZeroResultCount: a.zeroResults,
	}
	for k, v := range a.byEndpoint {
		stats.ByEndpoint[k] = v
	}
	if a.total > 0 {
		stats.ZeroResultRate = float64(a.zeroResults) / float64(a.total)
	}
	if len(a.latencies) > 0 {
		sorted := slices.Clone(a.latencies)
		slices.Sort(sorted)

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	stats.TopQueries = topN(a.queryCounts, 10)
	stats.ZeroResultQueries = topN(a.zeroResultQueries, 10)
	if elapsed := time.Since(a.startTime).Minutes(); elapsed > 0 {
		stats.QueriesPerMinute = float64(stats.TotalLookups) / elapsed
	}
	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN returns the n most frequent queries, ties broken by endpoint then query.
func topN(counts map[queryKey]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for k, count := range counts {
		result = append(result, QueryCount{Endpoint: k.endpoint, Query: k.query, Count: count})
	}
	slices.SortFunc(result, func(a, b QueryCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Endpoint, b.Endpoint); c != 0 {
			return c
		}
		return cmp.Compare(a.Query, b.Query)
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
