// Package router wires the lexicon routes and applies the middleware chain
// (RequestID → Logging → Metrics → CORS → RateLimit → Timeout).
package router

import (
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/api/handler"
	apimw "github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/api/middleware"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/metrics"
	pkgmw "github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/middleware"
)

// Config carries the optional pieces of the chain. A nil Limiter disables
// rate limiting; a nil Metrics skips the metrics middleware.
type Config struct {
	Limiter        apimw.Limiter
	ClientHeader   string
	Metrics        *metrics.Metrics
	RequestTimeout time.Duration
}

// New builds the HTTP handler.
//
// Route table:
//
//	GET /v1/matches               crossword pattern search
//	GET /v1/anagrams              anagram search
//	GET /v1/wordnet/dictionary    dictionary lookup
//	GET /v1/wordnet/related       related words
//	GET /v1/analytics             aggregate lookup stats
//	GET /v1/analytics/history     stored snapshots
//	GET /v1/cache/stats           lookup cache counters
//	GET /robots.txt
//	GET /healthz                  plain "ok"
//	GET /health/live, /health/ready
func New(h *handler.Handler, stats *analytics.Handler, checker *health.Checker, cfg Config) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	mux.HandleFunc("GET /robots.txt", h.Robots)

	mux.HandleFunc("GET /v1/matches", h.Matches)
	mux.HandleFunc("GET /v1/anagrams", h.Anagrams)
	mux.HandleFunc("GET /v1/wordnet/dictionary", h.Dictionary)
	mux.HandleFunc("GET /v1/wordnet/related", h.Related)
	mux.HandleFunc("GET /v1/cache/stats", h.CacheStats)

	if stats != nil {
		mux.HandleFunc("GET /v1/analytics", stats.Stats)
		mux.HandleFunc("GET /v1/analytics/history", stats.History)
	}

	mws := []func(http.Handler) http.Handler{pkgmw.RequestID, pkgmw.Logging}
	if cfg.Metrics != nil {
		mws = append(mws, pkgmw.Metrics(cfg.Metrics))
	}
	mws = append(mws, apimw.CORS(apimw.DefaultCORSConfig()))
	if cfg.Limiter != nil {
		mws = append(mws, apimw.RateLimit(cfg.Limiter, cfg.ClientHeader, cfg.Metrics))
	}
	if cfg.RequestTimeout > 0 {
		mws = append(mws, pkgmw.Timeout(cfg.RequestTimeout))
	}
	return pkgmw.Chain(mux, mws...)
}
