package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/lookup"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/morphy"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/wordindex"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/wordnet"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/metrics"
)

const wordnetFixture = "../../wordnet/testdata/wn"

type env struct {
	h   *Handler
	m   *metrics.Metrics
	agg *analytics.Aggregator
	col *analytics.Collector
}

func newEnv(t *testing.T, opts Options) *env {
	t.Helper()
	idx, err := wordindex.Build(strings.NewReader("cat\ncot\ncut\nact\ntea\neat\nate\ntee\n"))
	if err != nil {
		t.Fatal(err)
	}
	store, err := wordnet.Load(wordnetFixture, wordnet.LoadOwned)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	lem, err := morphy.Load(wordnetFixture)
	if err != nil {
		t.Fatal(err)
	}

	e := &env{m: metrics.New(prometheus.NewRegistry()), agg: analytics.NewAggregator()}
	e.col = analytics.NewCollector(e.agg, nil, 64, e.m)
	e.col.Start(context.Background())
	t.Cleanup(e.col.Close)
	e.h = New(idx, lookup.New(store, lem), opts, Deps{Collector: e.col, Metrics: e.m})
	return e
}

func (e *env) get(fn http.HandlerFunc, path string, query url.Values) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	fn(rec, httptest.NewRequest(http.MethodGet, path+"?"+query.Encode(), nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	return v
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["error"]
}

func TestMatches(t *testing.T) {
	e := newEnv(t, Options{DefaultPageSize: 2, MaxPageSize: 5})

	rec := e.get(e.h.Matches, "/v1/matches", url.Values{"pattern": {"C_T"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=300" {
		t.Errorf("Cache-Control = %q", got)
	}
	resp := decode[MatchesResponse](t, rec)
	want := MatchesResponse{Pattern: "C_T", Page: 1, PageSize: 2, Total: 3, HasMore: true, Items: []string{"cat", "cot"}}
	if !reflect.DeepEqual(resp, want) {
		t.Errorf("resp = %+v, want %+v", resp, want)
	}

	rec = e.get(e.h.Matches, "/v1/matches", url.Values{"pattern": {"c_t"}, "page": {"2"}, "page_size": {"1000"}})
	resp = decode[MatchesResponse](t, rec)
	if resp.PageSize != 5 || resp.Total != 3 || len(resp.Items) != 0 || resp.HasMore {
		t.Errorf("clamped page 2 = %+v", resp)
	}

	rec = e.get(e.h.Matches, "/v1/matches", url.Values{"pattern": {"c_t"}, "page": {"4611686018427387905"}, "page_size": {"4"}})
	resp = decode[MatchesResponse](t, rec)
	if rec.Code != http.StatusOK || resp.Total != 3 || len(resp.Items) != 0 || resp.HasMore {
		t.Errorf("huge page = %d %+v", rec.Code, resp)
	}

	rec = e.get(e.h.Matches, "/v1/matches", url.Values{"pattern": {"___"}, "must_include": {"a"}, "cannot_include": {"e"}})
	if resp = decode[MatchesResponse](t, rec); !reflect.DeepEqual(resp.Items, []string{"act", "cat"}) {
		t.Errorf("filtered items = %v", resp.Items)
	}
}

func TestMatchesRejectsBadInput(t *testing.T) {
	e := newEnv(t, Options{})
	tests := []struct {
		name  string
		query url.Values
	}{
		{"missing pattern", url.Values{}},
		{"bad char", url.Values{"pattern": {"c*t"}}},
		{"too long", url.Values{"pattern": {strings.Repeat("_", 25)}}},
		{"zero page", url.Values{"pattern": {"c_t"}, "page": {"0"}}},
		{"zero page size", url.Values{"pattern": {"c_t"}, "page_size": {"0"}}},
		{"non-numeric page", url.Values{"pattern": {"c_t"}, "page": {"two"}}},
		{"bad letters", url.Values{"pattern": {"c_t"}, "must_include": {"a1"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.get(e.h.Matches, "/v1/matches", tt.query)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d", rec.Code)
			}
			if errorOf(t, rec) == "" {
				t.Error("empty error message")
			}
		})
	}
	if got := testutil.ToFloat64(e.m.LexiconQueriesTotal.WithLabelValues("matches", "invalid")); got != float64(len(tests)) {
		t.Errorf("invalid counter = %v", got)
	}
}

func TestAnagrams(t *testing.T) {
	e := newEnv(t, Options{DisableCacheHeaders: true})

	rec := e.get(e.h.Anagrams, "/v1/anagrams", url.Values{"letters": {"TEA"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Cache-Control"); got != "" {
		t.Errorf("Cache-Control = %q with headers disabled", got)
	}
	resp := decode[MatchesResponse](t, rec)
	if resp.Pattern != "___" || !reflect.DeepEqual(resp.Items, []string{"ate", "eat", "tea"}) {
		t.Errorf("resp = %+v", resp)
	}

	rec = e.get(e.h.Anagrams, "/v1/anagrams", url.Values{"letters": {"tea"}, "pattern": {"t__"}})
	if resp = decode[MatchesResponse](t, rec); !reflect.DeepEqual(resp.Items, []string{"tea"}) {
		t.Errorf("fixed t = %v", resp.Items)
	}

	tests := []struct {
		query url.Values
		msg   string
	}{
		{url.Values{}, "letters is required"},
		{url.Values{"letters": {"   "}}, "letters is required"},
		{url.Values{"letters": {strings.Repeat("a", 25)}}, "letters must be at most 24"},
		{url.Values{"letters": {"tea"}, "pattern": {"t_"}}, "pattern length must match letters length"},
		{url.Values{"letters": {"tea"}, "pattern": {"x__"}}, "pattern requires letters not present in the bag"},
		{url.Values{"letters": {"tea"}, "pattern": {"tt_"}}, "pattern requires letters not present in the bag"},
	}
	for _, tt := range tests {
		rec := e.get(e.h.Anagrams, "/v1/anagrams", tt.query)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%v: status = %d", tt.query, rec.Code)
			continue
		}
		if got := errorOf(t, rec); got != tt.msg {
			t.Errorf("%v: error = %q, want %q", tt.query, got, tt.msg)
		}
	}
}

func TestDictionary(t *testing.T) {
	e := newEnv(t, Options{})

	rec := e.get(e.h.Dictionary, "/v1/wordnet/dictionary", url.Values{"word": {"dogs"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=3600" {
		t.Errorf("Cache-Control = %q", got)
	}
	resp := decode[lookup.DictionaryResponse](t, rec)
	if len(resp.Results) != 1 || resp.Results[0].SynsetID.Offset != 1740 || *resp.Results[0].SenseCount != 42 {
		t.Errorf("results = %+v", resp.Results)
	}

	rec = e.get(e.h.Dictionary, "/v1/wordnet/dictionary", url.Values{"word": {"xyzzy"}})
	resp = decode[lookup.DictionaryResponse](t, rec)
	if resp.Note == nil || *resp.Note != `no WordNet entries found for "xyzzy"` {
		t.Errorf("note = %v", resp.Note)
	}

	rec = e.get(e.h.Dictionary, "/v1/wordnet/dictionary", url.Values{})
	if rec.Code != http.StatusBadRequest || errorOf(t, rec) != "word is required" {
		t.Errorf("missing word = %d", rec.Code)
	}
	rec = e.get(e.h.Dictionary, "/v1/wordnet/dictionary", url.Values{"word": {"dog"}, "pos": {"q"}})
	if rec.Code != http.StatusBadRequest || errorOf(t, rec) != "pos must be one of n|v|a|r" {
		t.Errorf("bad pos = %d", rec.Code)
	}
	rec = e.get(e.h.Dictionary, "/v1/wordnet/dictionary", url.Values{"word": {"dog"}, "pos": {""}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty pos = %d", rec.Code)
	}
}

func TestRelated(t *testing.T) {
	e := newEnv(t, Options{})
	rec := e.get(e.h.Related, "/v1/wordnet/related", url.Values{"word": {"ran"}, "pos": {"Verb"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=1800" {
		t.Errorf("Cache-Control = %q", got)
	}
	resp := decode[lookup.RelatedResponse](t, rec)
	if len(resp.Synsets) != 1 || resp.Synsets[0].Relations[0].Kind != "hypernyms" {
		t.Fatalf("synsets = %+v", resp.Synsets)
	}
	if !reflect.DeepEqual(resp.Lemmas, []string{"run"}) {
		t.Errorf("lemmas = %v", resp.Lemmas)
	}
}

func TestRobotsAndHealthz(t *testing.T) {
	e := newEnv(t, Options{})
	rec := e.get(e.h.Robots, "/robots.txt", nil)
	if rec.Body.String() != "User-agent: *\nDisallow: /" {
		t.Errorf("robots body = %q", rec.Body.String())
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=86400, immutable" {
		t.Errorf("robots Cache-Control = %q", got)
	}
	rec = e.get(e.h.Healthz, "/healthz", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}
	rec = e.get(e.h.CacheStats, "/v1/cache/stats", nil)
	if decode[map[string]string](t, rec)["status"] != "disabled" {
		t.Error("cache stats without cache")
	}
}

func TestLookupsAreTracked(t *testing.T) {
	e := newEnv(t, Options{})
	e.get(e.h.Matches, "/v1/matches", url.Values{"pattern": {"c_t"}})
	e.get(e.h.Dictionary, "/v1/wordnet/dictionary", url.Values{"word": {"xyzzy"}})
	e.get(e.h.Matches, "/v1/matches", url.Values{"pattern": {"!"}})
	e.col.Close()

	stats := e.agg.Stats()
	if stats.TotalLookups != 2 || stats.ZeroResultCount != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if got := testutil.ToFloat64(e.m.LexiconQueriesTotal.WithLabelValues("dictionary", "zero_result")); got != 1 {
		t.Errorf("zero_result counter = %v", got)
	}
}
