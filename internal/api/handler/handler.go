// Package handler serves the crossword, anagram and WordNet lookup endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/cache"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/lookup"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/wntypes"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/wordindex"
	apperrors "github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/tracing"
)

const (
	cacheMatches    = "public, max-age=300"
	cacheDictionary = "public, max-age=3600"
	cacheRelated    = "public, max-age=1800"
	cacheRobots     = "public, max-age=86400, immutable"

	robotsBody = "User-agent: *\nDisallow: /"
)

// WordIndex answers crossword and anagram queries.
type WordIndex interface {
	Query(params wordindex.QueryParams) wordindex.Result
	QueryAnagram(params wordindex.AnagramParams) wordindex.Result
}

// Lookup answers WordNet questions.
type Lookup interface {
	Dictionary(ctx context.Context, word string, posFilter []wntypes.Pos) (*lookup.DictionaryResponse, error)
	Related(ctx context.Context, word string, posFilter []wntypes.Pos) (*lookup.RelatedResponse, error)
}

// Options bounds paging and toggles Cache-Control headers.
type Options struct {
	DefaultPageSize     int
	MaxPageSize         int
	DisableCacheHeaders bool
}

// Deps carries the optional collaborators. Any field may be nil.
type Deps struct {
	Cache     *cache.LookupCache
	Collector *analytics.Collector
	Metrics   *metrics.Metrics
	Tracer    *tracing.Tracer
}

type Handler struct {
	index  WordIndex
	lookup Lookup
	deps   Deps
	opts   Options
	logger *slog.Logger
}

func New(index WordIndex, lk Lookup, opts Options, deps Deps) *Handler {
	if opts.MaxPageSize < 1 {
		opts.MaxPageSize = 500
	}
	if opts.DefaultPageSize < 1 {
		opts.DefaultPageSize = min(50, opts.MaxPageSize)
	}
	return &Handler{
		index:  index,
		lookup: lk,
		deps:   deps,
		opts:   opts,
		logger: slog.Default().With("component", "lexicon-handler"),
	}
}

// MatchesResponse is one page of crossword or anagram matches.
type MatchesResponse struct {
	Pattern  string   `json:"pattern"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
	Total    int      `json:"total"`
	HasMore  bool     `json:"has_more"`
	Items    []string `json:"items"`
}

func (h *Handler) Matches(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()
	ctx, span := h.deps.Tracer.StartSpan(r.Context(), "matches", logger.RequestID(r.Context()))
	defer span.End()

	raw := q.Get("pattern")
	pattern, err := wordindex.ParsePattern(raw)
	if err != nil {
		h.fail(ctx, w, analytics.EndpointMatches, err)
		return
	}
	page, pageSize, err := h.paging(q.Get("page"), q.Get("page_size"))
	if err != nil {
		h.fail(ctx, w, analytics.EndpointMatches, err)
		return
	}
	must, err := wordindex.ParseLetters(q.Get("must_include"))
	if err != nil {
		h.fail(ctx, w, analytics.EndpointMatches, err)
		return
	}
	cannot, err := wordindex.ParseLetters(q.Get("cannot_include"))
	if err != nil {
		h.fail(ctx, w, analytics.EndpointMatches, err)
		return
	}

	res := h.index.Query(wordindex.QueryParams{
		Pattern:       pattern,
		MustInclude:   must,
		CannotInclude: cannot,
		Page:          page,
		PageSize:      pageSize,
	})
	span.SetAttr("total", res.Total)
	h.done(ctx, analytics.EndpointMatches, raw, res.Total, len(res.Items), false, start)
	h.cacheControl(w, cacheMatches)
	h.writeJSON(w, http.StatusOK, MatchesResponse{
		Pattern:  raw,
		Page:     page,
		PageSize: pageSize,
		Total:    res.Total,
		HasMore:  res.HasMore,
		Items:    res.Items,
	})
}

func (h *Handler) Anagrams(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()
	ctx, span := h.deps.Tracer.StartSpan(r.Context(), "anagrams", logger.RequestID(r.Context()))
	defer span.End()

	letters := strings.TrimSpace(q.Get("letters"))
	if letters == "" {
		h.fail(ctx, w, analytics.EndpointAnagrams,
			apperrors.Invalidf(apperrors.ErrInvalidLetters, "letters is required"))
		return
	}
	if len(letters) > wordindex.MaxWordLen {
		h.fail(ctx, w, analytics.EndpointAnagrams,
			apperrors.Invalidf(apperrors.ErrInvalidLetters, "letters must be at most %d", wordindex.MaxWordLen))
		return
	}
	raw := strings.Repeat("_", len(letters))
	if q.Has("pattern") {
		raw = q.Get("pattern")
	}
	pattern, err := wordindex.ParsePattern(raw)
	if err != nil {
		h.fail(ctx, w, analytics.EndpointAnagrams, err)
		return
	}
	if len(pattern) != len(letters) {
		h.fail(ctx, w, analytics.EndpointAnagrams,
			apperrors.Invalidf(apperrors.ErrInvalidPattern, "pattern length must match letters length"))
		return
	}
	bag, err := wordindex.ParseLetterBag(letters, len(letters))
	if err != nil {
		h.fail(ctx, w, analytics.EndpointAnagrams, err)
		return
	}
	page, pageSize, err := h.paging(q.Get("page"), q.Get("page_size"))
	if err != nil {
		h.fail(ctx, w, analytics.EndpointAnagrams, err)
		return
	}
	if err := wordindex.CheckBagCoversPattern(pattern, bag); err != nil {
		h.fail(ctx, w, analytics.EndpointAnagrams, err)
		return
	}

	res := h.index.QueryAnagram(wordindex.AnagramParams{
		Pattern:  pattern,
		Bag:      bag,
		Page:     page,
		PageSize: pageSize,
	})
	span.SetAttr("total", res.Total)
	h.done(ctx, analytics.EndpointAnagrams, letters, res.Total, len(res.Items), false, start)
	h.cacheControl(w, cacheMatches)
	h.writeJSON(w, http.StatusOK, MatchesResponse{
		Pattern:  raw,
		Page:     page,
		PageSize: pageSize,
		Total:    res.Total,
		HasMore:  res.HasMore,
		Items:    res.Items,
	})
}

func (h *Handler) Dictionary(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, span := h.deps.Tracer.StartSpan(r.Context(), "dictionary", logger.RequestID(r.Context()))
	defer span.End()

	word, posFilter, err := wordParams(r)
	if err != nil {
		h.fail(ctx, w, analytics.EndpointDictionary, err)
		return
	}
	resp, hit, err := cache.GetOrCompute(ctx, h.deps.Cache, cache.Key("dictionary", word, posFilter),
		func() (*lookup.DictionaryResponse, error) {
			return h.lookup.Dictionary(ctx, word, posFilter)
		})
	if err != nil {
		h.fail(ctx, w, analytics.EndpointDictionary, err)
		return
	}
	span.SetAttr("cache_hit", hit)
	h.done(ctx, analytics.EndpointDictionary, resp.Normalized, len(resp.Results), len(resp.Results), hit, start)
	h.cacheControl(w, cacheDictionary)
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Related(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, span := h.deps.Tracer.StartSpan(r.Context(), "related", logger.RequestID(r.Context()))
	defer span.End()

	word, posFilter, err := wordParams(r)
	if err != nil {
		h.fail(ctx, w, analytics.EndpointRelated, err)
		return
	}
	resp, hit, err := cache.GetOrCompute(ctx, h.deps.Cache, cache.Key("related", word, posFilter),
		func() (*lookup.RelatedResponse, error) {
			return h.lookup.Related(ctx, word, posFilter)
		})
	if err != nil {
		h.fail(ctx, w, analytics.EndpointRelated, err)
		return
	}
	span.SetAttr("cache_hit", hit)
	h.done(ctx, analytics.EndpointRelated, resp.Normalized, len(resp.Synsets), len(resp.Synsets), hit, start)
	h.cacheControl(w, cacheRelated)
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	h.cacheControl(w, cacheRobots)
	w.Write([]byte(robotsBody))
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// CacheStats reports lookup cache hit and miss counts.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.deps.Cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.deps.Cache.Stats()
	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"hit_rate": hitRate,
		"breaker":  h.deps.Cache.BreakerState().String(),
	})
}

func wordParams(r *http.Request) (string, []wntypes.Pos, error) {
	q := r.URL.Query()
	word := strings.TrimSpace(q.Get("word"))
	if word == "" {
		return "", nil, apperrors.Invalidf(apperrors.ErrInvalidInput, "word is required")
	}
	posFilter, err := lookup.ParsePosFilter(q.Get("pos"), q.Has("pos"))
	if err != nil {
		return "", nil, err
	}
	return word, posFilter, nil
}

// paging applies defaults and clamps page_size to the configured maximum.
func (h *Handler) paging(rawPage, rawSize string) (int, int, error) {
	page, err := parseCount(rawPage, 1, "page")
	if err != nil {
		return 0, 0, err
	}
	size, err := parseCount(rawSize, h.opts.DefaultPageSize, "page_size")
	if err != nil {
		return 0, 0, err
	}
	if err := wordindex.ValidatePage(page, size); err != nil {
		return 0, 0, err
	}
	return page, min(size, h.opts.MaxPageSize), nil
}

func parseCount(raw string, def int, name string) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperrors.Invalidf(apperrors.ErrInvalidPage, "%s must be a non-negative integer", name)
	}
	return n, nil
}

func (h *Handler) cacheControl(w http.ResponseWriter, value string) {
	if !h.opts.DisableCacheHeaders {
		w.Header().Set("Cache-Control", value)
	}
}

// done records metrics, analytics and a log line for a served lookup.
func (h *Handler) done(ctx context.Context, endpoint analytics.Endpoint, query string, total, returned int, hit bool, start time.Time) {
	elapsed := time.Since(start)
	outcome := "ok"
	if total == 0 {
		outcome = "zero_result"
	}
	if m := h.deps.Metrics; m != nil {
		m.LexiconQueriesTotal.WithLabelValues(string(endpoint), outcome).Inc()
		m.LexiconQueryLatency.WithLabelValues(string(endpoint)).Observe(elapsed.Seconds())
		m.LexiconResultsCount.WithLabelValues(string(endpoint)).Observe(float64(total))
	}
	if h.deps.Collector != nil {
		h.deps.Collector.Track(analytics.LookupEvent{
			RequestID: logger.RequestID(ctx),
			Endpoint:  endpoint,
			Query:     query,
			Total:     total,
			Returned:  returned,
			LatencyMs: elapsed.Milliseconds(),
			CacheHit:  hit,
			Timestamp: time.Now().UTC(),
		})
	}
	logger.FromContext(ctx).Debug("lookup completed",
		"endpoint", endpoint,
		"query", query,
		"total", total,
		"returned", returned,
		"cache_hit", hit,
		"latency", elapsed,
	)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, endpoint analytics.Endpoint, err error) {
	outcome := "invalid"
	if !apperrors.IsCallerError(err) {
		outcome = "error"
		logger.FromContext(ctx).Error("lookup failed", "endpoint", endpoint, "error", err)
	}
	if m := h.deps.Metrics; m != nil {
		m.LexiconQueriesTotal.WithLabelValues(string(endpoint), outcome).Inc()
	}
	h.writeError(w, err)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	h.writeJSON(w, apperrors.HTTPStatusCode(err), map[string]string{"error": apperrors.PublicMessage(err)})
}
