package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

type Config struct {
	BaseURL     string
	Concurrency int
	Duration    time.Duration
	ClientIDs   int
	Targets     []Target
}

// Target is one request path with its query string.
type Target struct {
	Endpoint string
	Path     string
	Query    url.Values
}

func (t Target) URL(base string) string {
	return base + t.Path + "?" + t.Query.Encode()
}

type Stats struct {
	totalRequests atomic.Int64
	successCount  atomic.Int64
	errorCount    atomic.Int64
	rateLimited   atomic.Int64
	latencies     map[string][]time.Duration
	latenciesMu   sync.Mutex
	statusCodes   map[int]*atomic.Int64
	statusCodesMu sync.Mutex
}

func NewStats() *Stats {
	return &Stats{
		latencies:   make(map[string][]time.Duration),
		statusCodes: make(map[int]*atomic.Int64),
	}
}

func (s *Stats) RecordRequest(endpoint string, duration time.Duration, statusCode int, err error) {
	s.totalRequests.Add(1)

	if err != nil {
		s.errorCount.Add(1)
		return
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		s.successCount.Add(1)
	case statusCode == http.StatusTooManyRequests:
		s.rateLimited.Add(1)
	default:
		s.errorCount.Add(1)
	}

	s.latenciesMu.Lock()
	s.latencies[endpoint] = append(s.latencies[endpoint], duration)
	s.latenciesMu.Unlock()

	s.statusCodesMu.Lock()
	if _, ok := s.statusCodes[statusCode]; !ok {
		s.statusCodes[statusCode] = &atomic.Int64{}
	}
	s.statusCodes[statusCode].Add(1)
	s.statusCodesMu.Unlock()
}

func defaultTargets() []Target {
	var targets []Target
	for _, p := range []string{"c_t", "__ll_", "s___e", "_a_a_", "qu___", "____ing", "b__", "__z__"} {
		targets = append(targets, Target{"matches", "/v1/matches", url.Values{"pattern": {p}}})
	}
	targets = append(targets,
		Target{"matches", "/v1/matches", url.Values{"pattern": {"_____"}, "must_include": {"ae"}, "cannot_include": {"s"}}},
		Target{"matches", "/v1/matches", url.Values{"pattern": {"______"}, "page": {"3"}, "page_size": {"100"}}},
	)
	for _, letters := range []string{"tac", "listen", "earth", "danger", "stone", "parsley"} {
		targets = append(targets, Target{"anagrams", "/v1/anagrams", url.Values{"letters": {letters}}})
	}
	for _, word := range []string{"dog", "running", "better", "children", "happiest", "geese", "quickly", "ran"} {
		targets = append(targets, Target{"dictionary", "/v1/wordnet/dictionary", url.Values{"word": {word}}})
	}
	targets = append(targets, Target{"dictionary", "/v1/wordnet/dictionary", url.Values{"word": {"run"}, "pos": {"v"}}})
	return targets
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the lexicon service")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	clientIDs := flag.Int("clients", 0, "distinct Fly-Client-IP values to send (0 sends none)")
	flag.Parse()

	cfg := Config{
		BaseURL:     *baseURL,
		Concurrency: *concurrency,
		Duration:    *duration,
		ClientIDs:   *clientIDs,
		Targets:     defaultTargets(),
	}

	fmt.Println("=== Lexicon Load Test ===")
	fmt.Printf("Target:      %s\n", cfg.BaseURL)
	fmt.Printf("Concurrency: %d\n", cfg.Concurrency)
	fmt.Printf("Duration:    %s\n", cfg.Duration)
	fmt.Printf("Requests:    %d unique\n", len(cfg.Targets))
	fmt.Println()

	stats := runLoadTest(cfg)
	printReport(stats, cfg.Duration)
}

func runLoadTest(cfg Config) *Stats {
	stats := NewStats()
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.Concurrency * 2,
			MaxIdleConnsPerHost: cfg.Concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	var wg sync.WaitGroup
	fmt.Print("Running")

	for w := 0; w < cfg.Concurrency; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			idx := workerID

			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				target := cfg.Targets[idx%len(cfg.Targets)]
				idx++

				req := mustNewRequest(ctx, target.URL(cfg.BaseURL))
				if cfg.ClientIDs > 0 {
					req.Header.Set("Fly-Client-IP", fmt.Sprintf("10.0.0.%d", idx%cfg.ClientIDs))
				}

				start := time.Now()
				resp, err := client.Do(req)
				duration := time.Since(start)

				if err != nil {
					if ctx.Err() != nil {
						return
					}
					stats.RecordRequest(target.Endpoint, duration, 0, err)
					continue
				}
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()

				stats.RecordRequest(target.Endpoint, duration, resp.StatusCode, nil)
			}
		}(w)
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Print(".")
			}
		}
	}()

	wg.Wait()
	fmt.Println(" done!")
	fmt.Println()
	return stats
}

func mustNewRequest(ctx context.Context, rawURL string) *http.Request {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		panic(fmt.Sprintf("creating request: %v", err))
	}
	return req
}

func printReport(stats *Stats, duration time.Duration) {
	total := stats.totalRequests.Load()
	success := stats.successCount.Load()
	errors := stats.errorCount.Load()

	fmt.Println("=== Results ===")
	fmt.Printf("Total Requests:  %d\n", total)
	fmt.Printf("Successful:      %d\n", success)
	fmt.Printf("Rate Limited:    %d\n", stats.rateLimited.Load())
	fmt.Printf("Errors:          %d\n", errors)

	if total > 0 {
		errorRate := float64(errors) / float64(total) * 100
		fmt.Printf("Error Rate:      %.2f%%\n", errorRate)
		rps := float64(total) / duration.Seconds()
		fmt.Printf("Requests/sec:    %.2f\n", rps)
	}

	stats.latenciesMu.Lock()
	byEndpoint := make(map[string][]time.Duration, len(stats.latencies))
	var all []time.Duration
	for endpoint, l := range stats.latencies {
		byEndpoint[endpoint] = slices.Clone(l)
		all = append(all, l...)
	}
	stats.latenciesMu.Unlock()

	printLatency("all", all)
	endpoints := make([]string, 0, len(byEndpoint))
	for endpoint := range byEndpoint {
		endpoints = append(endpoints, endpoint)
	}
	sort.Strings(endpoints)
	for _, endpoint := range endpoints {
		printLatency(endpoint, byEndpoint[endpoint])
	}

	fmt.Println()
	fmt.Println("=== Status Codes ===")
	stats.statusCodesMu.Lock()
	codes := make([]int, 0, len(stats.statusCodes))
	for code := range stats.statusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		count := stats.statusCodes[code].Load()
		fmt.Printf("  %d: %d\n", code, count)
	}
	stats.statusCodesMu.Unlock()

	if total == 0 {
		fmt.Println()
		fmt.Println("WARNING: No requests completed. Is the service running?")
		os.Exit(1)
	}
}

func printLatency(name string, latencies []time.Duration) {
	if len(latencies) == 0 {
		return
	}
	slices.Sort(latencies)

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	avg := sum / time.Duration(len(latencies))

	var sumSquared float64
	avgFloat := float64(avg)
	for _, l := range latencies {
		diff := float64(l) - avgFloat
		sumSquared += diff * diff
	}
	stddev := time.Duration(math.Sqrt(sumSquared / float64(len(latencies))))

	fmt.Println()
	fmt.Printf("=== Latency (%s, n=%d) ===\n", name, len(latencies))
	fmt.Printf("Min:    %s\n", latencies[0])
	fmt.Printf("Avg:    %s\n", avg)
	fmt.Printf("P50:    %s\n", percentile(latencies, 50))
	fmt.Printf("P90:    %s\n", percentile(latencies, 90))
	fmt.Printf("P95:    %s\n", percentile(latencies, 95))
	fmt.Printf("P99:    %s\n", percentile(latencies, 99))
	fmt.Printf("Max:    %s\n", latencies[len(latencies)-1])
	fmt.Printf("StdDev: %s\n", stddev)
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
