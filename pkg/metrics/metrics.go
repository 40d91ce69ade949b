// Package metrics defines the Prometheus collectors used by the lexicon
// service and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	LexiconQueriesTotal  *prometheus.CounterVec
	LexiconQueryLatency  *prometheus.HistogramVec
	LexiconResultsCount  *prometheus.HistogramVec
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	RateLimitedTotal     prometheus.Counter
	WordsLoaded          *prometheus.GaugeVec
	WordNetRecords       *prometheus.GaugeVec
	LoadDuration         *prometheus.GaugeVec
	AnalyticsDropped     prometheus.Counter
	CircuitBreakerState  *prometheus.GaugeVec
}

// New creates all collectors and registers them with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		LexiconQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lexicon_queries_total",
				Help: "Lexical queries by endpoint and outcome (ok, zero_result, invalid, error).",
			},
			[]string{"endpoint", "outcome"},
		),
		LexiconQueryLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lexicon_query_latency_seconds",
				Help:    "Lexical query latency in seconds.",
				Buckets: []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
			[]string{"endpoint"},
		),
		LexiconResultsCount: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lexicon_results_count",
				Help:    "Total matches per lexical query.",
				Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000, 10000},
			},
			[]string{"endpoint"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lookup_cache_hits_total",
				Help: "Dictionary lookups served from the Redis cache.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lookup_cache_misses_total",
				Help: "Dictionary lookups computed because the cache had no entry.",
			},
		),
		RateLimitedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rate_limited_requests_total",
				Help: "Requests rejected by the per-client token bucket.",
			},
		),
		WordsLoaded: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "word_index_words",
				Help: "Words in the crossword index by length.",
			},
			[]string{"length"},
		),
		WordNetRecords: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wordnet_records",
				Help: "Loaded WordNet records by kind.",
			},
			[]string{"kind"},
		),
		LoadDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lexicon_load_duration_seconds",
				Help: "Startup load time by component.",
			},
			[]string{"component"},
		),
		AnalyticsDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "analytics_events_dropped_total",
				Help: "Lookup events dropped because the collector buffer was full.",
			},
		),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
			},
			[]string{"name"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.LexiconQueriesTotal,
		m.LexiconQueryLatency,
		m.LexiconResultsCount,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.RateLimitedTotal,
		m.WordsLoaded,
		m.WordNetRecords,
		m.LoadDuration,
		m.AnalyticsDropped,
		m.CircuitBreakerState,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
