// Package cache stores dictionary and related-word responses in Redis and
// coalesces concurrent misses for the same key.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/wntypes"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/resilience"
)

const (
	keyPrefix   = "lex:"
	opTimeout   = 100 * time.Millisecond
	breakerName = "redis-cache"
)

// Backend is the subset of pkg/redis the cache needs.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// LookupCache is a read-through JSON cache. Redis failures degrade to
// computing the value; they are never returned to the caller.
type LookupCache struct {
	backend Backend
	ttl     time.Duration
	group   singleflight.Group
	breaker *resilience.CircuitBreaker
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New wraps backend. m may be nil.
func New(backend Backend, ttl time.Duration, m *metrics.Metrics) *LookupCache {
	c := &LookupCache{
		backend: backend,
		ttl:     ttl,
		metrics: m,
		logger:  slog.Default().With("component", "lookup-cache"),
	}
	c.breaker = resilience.NewCircuitBreaker(breakerName, resilience.CircuitBreakerConfig{
		FailureThreshold: 5,
		ResetTimeout:     30 * time.Second,
		OnStateChange: func(name string, to resilience.State) {
			if m != nil {
				m.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			}
		},
	})
	return c
}

// Key builds the cache key for an endpoint, a word and a pos filter.
func Key(endpoint, word string, posFilter []wntypes.Pos) string {
	var b strings.Builder
	b.WriteString(endpoint)
	b.WriteByte('|')
	b.WriteString(strings.ToLower(strings.TrimSpace(word)))
	b.WriteByte('|')
	for _, p := range posFilter {
		b.WriteByte(p.Char())
	}
	hash := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%s%s:%x", keyPrefix, endpoint, hash[:16])
}

func (c *LookupCache) get(ctx context.Context, key string) ([]byte, bool) {
	var data []byte
	err := c.breaker.Execute(func() error {
		return resilience.WithTimeout(ctx, opTimeout, "cache get", func(ctx context.Context) error {
			var err error
			data, err = c.backend.Get(ctx, key)
			if pkgredis.IsNilError(err) {
				return nil
			}
			return err
		})
	})
	if err != nil {
		c.logger.Warn("cache get failed", "key", key, "error", err)
		return nil, false
	}
	return data, data != nil
}

func (c *LookupCache) set(ctx context.Context, key string, data []byte) {
	err := c.breaker.Execute(func() error {
		return resilience.WithTimeout(ctx, opTimeout, "cache set", func(ctx context.Context) error {
			return c.backend.Set(ctx, key, data, c.ttl)
		})
	})
	if err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

func (c *LookupCache) recordHit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *LookupCache) recordMiss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// GetOrCompute returns the cached value for key, or runs compute once across
// concurrent callers and stores its result. The bool reports a cache hit.
// A nil cache always computes.
func GetOrCompute[T any](ctx context.Context, c *LookupCache, key string, compute func() (T, error)) (T, bool, error) {
	if c == nil {
		v, err := compute()
		return v, false, err
	}
	if v, ok := decode[T](ctx, c, key); ok {
		c.recordHit()
		return v, true, nil
	}
	c.recordMiss()
	val, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := decode[T](ctx, c, key); ok {
			return v, nil
		}
		v, err := compute()
		if err != nil {
			return v, err
		}
		if data, err := json.Marshal(v); err != nil {
			c.logger.Error("cache marshal failed", "key", key, "error", err)
		} else {
			c.set(context.WithoutCancel(ctx), key, data)
		}
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	return val.(T), false, nil
}

func decode[T any](ctx context.Context, c *LookupCache, key string) (T, bool) {
	var v T
	data, ok := c.get(ctx, key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		return v, false
	}
	return v, true
}

// Invalidate deletes every lookup cache entry.
func (c *LookupCache) Invalidate(ctx context.Context) error {
	deleted, err := c.backend.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns hit and miss counts since start.
func (c *LookupCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// BreakerState exposes the Redis circuit breaker state for health checks.
func (c *LookupCache) BreakerState() resilience.State {
	return c.breaker.GetState()
}
