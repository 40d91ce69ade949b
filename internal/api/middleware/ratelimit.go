// Package middleware holds the HTTP middleware specific to the lexicon API.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/metrics"
)

// DefaultClientHeader is the proxy header that identifies the client.
const DefaultClientHeader = "Fly-Client-IP"

const dropLogInterval = time.Minute

// Limiter admits or rejects a request for a client key.
type Limiter interface {
	Allow(key string) bool
}

type dropLog struct {
	dropped atomic.Int64
	mu      sync.Mutex
	last    time.Time
	logger  *slog.Logger
}

// record counts a drop and logs the running total at most once per interval.
func (d *dropLog) record(now time.Time) {
	d.dropped.Add(1)
	d.mu.Lock()
	defer d.mu.Unlock()
	if now.Sub(d.last) < dropLogInterval {
		return
	}
	if n := d.dropped.Swap(0); n > 0 {
		d.logger.Warn("rate limiter dropped requests", "count", n, "interval", dropLogInterval)
	}
	d.last = now
}

// RateLimit rejects clients that exhausted their token bucket with 429.
// Clients are keyed by the trusted header; requests without it and health
// probes pass through. m may be nil.
func RateLimit(limiter Limiter, header string, m *metrics.Metrics) func(http.Handler) http.Handler {
	if header == "" {
		header = DefaultClientHeader
	}
	drops := &dropLog{
		last:   time.Now(),
		logger: slog.Default().With("component", "rate-limit"),
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/healthz" || strings.HasPrefix(r.URL.Path, "/health/") {
				next.ServeHTTP(w, r)
				return
			}
			client := strings.TrimSpace(r.Header.Get(header))
			if client == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !limiter.Allow(client) {
				drops.record(time.Now())
				if m != nil {
					m.RateLimitedTotal.Inc()
				}
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte("rate limited"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
