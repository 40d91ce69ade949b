package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/analytics/store"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/api/handler"
	apimw "github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/api/middleware"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/api/router"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/cache"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/lookup"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/morphy"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/ratelimit"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/wordindex"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/wordnet"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/resilience"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/tracing"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	noCache := flag.Bool("no-cache", false, "omit Cache-Control headers")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *noCache {
		cfg.HTTPCache.Disabled = true
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting lexicon service", "addr", cfg.Server.Addr(), "load_mode", cfg.Lexicon.LoadMode)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(prometheus.DefaultRegisterer)
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdownMetrics(ctx)
		}()
	}

	start := time.Now()
	index, err := wordindex.BuildFromFile(cfg.Lexicon.WordlistPath)
	if err != nil {
		slog.Error("failed to build word index", "path", cfg.Lexicon.WordlistPath, "error", err)
		os.Exit(1)
	}
	if m != nil {
		m.LoadDuration.WithLabelValues("wordindex").Set(time.Since(start).Seconds())
		for length, n := range index.Lengths() {
			m.WordsLoaded.WithLabelValues(strconv.Itoa(length)).Set(float64(n))
		}
	}

	mode, err := wordnet.ParseLoadMode(cfg.Lexicon.LoadMode)
	if err != nil {
		slog.Error("invalid load mode", "error", err)
		os.Exit(1)
	}
	start = time.Now()
	dict, err := wordnet.Load(cfg.Lexicon.WordNetDir, mode)
	if err != nil {
		slog.Error("failed to load wordnet", "dir", cfg.Lexicon.WordNetDir, "error", err)
		os.Exit(1)
	}
	defer dict.Close()
	lemmatizer, err := morphy.Load(cfg.Lexicon.WordNetDir)
	if err != nil {
		slog.Error("failed to load exception lists", "dir", cfg.Lexicon.WordNetDir, "error", err)
		os.Exit(1)
	}
	if m != nil {
		m.LoadDuration.WithLabelValues("wordnet").Set(time.Since(start).Seconds())
		m.WordNetRecords.WithLabelValues("index_entries").Set(float64(dict.IndexCount()))
		m.WordNetRecords.WithLabelValues("lemmas").Set(float64(dict.LemmaCount()))
		m.WordNetRecords.WithLabelValues("synsets").Set(float64(dict.SynsetCount()))
		m.WordNetRecords.WithLabelValues("frame_templates").Set(float64(dict.FrameTemplateCount()))
		m.WordNetRecords.WithLabelValues("sense_counts").Set(float64(dict.SenseCountEntries()))
	}
	lk := lookup.New(dict, lemmatizer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checker := health.NewChecker()
	checker.Register("word_index", health.LoadedCheck("words", index.WordCount))
	checker.Register("wordnet", health.LoadedCheck("synsets", dict.SynsetCount))

	var lookupCache *cache.LookupCache
	if cfg.Redis.Enabled {
		var redisClient *pkgredis.Client
		err := resilience.Retry(ctx, "redis connect", resilience.RetryConfig{MaxAttempts: 3}, func() error {
			var err error
			redisClient, err = pkgredis.NewClient(ctx, cfg.Redis)
			return err
		})
		if err != nil {
			slog.Warn("redis unavailable, lookup caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			lookupCache = cache.New(redisClient, cfg.Redis.CacheTTL, m)
			// Entries from a previous dictionary build may be stale.
			if err := lookupCache.Invalidate(ctx); err != nil {
				slog.Warn("startup cache invalidation failed", "error", err)
			}
			checker.Register("redis", health.PingCheck(redisClient.Ping, true))
			slog.Info("lookup cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	var (
		collector *analytics.Collector
		statsH    *analytics.Handler
	)
	if cfg.Analytics.Enabled {
		var publisher analytics.Publisher
		if cfg.Analytics.PublishToKafka {
			producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.LookupEvents)
			defer producer.Close()
			publisher = producer
			slog.Info("publishing lookup events", "topic", cfg.Kafka.Topics.LookupEvents)
		}
		aggregator := analytics.NewAggregator()
		collector = analytics.NewCollector(aggregator, publisher, cfg.Analytics.BufferSize, m)
		collector.Start(ctx)
		defer collector.Close()

		var history analytics.SnapshotLister
		if cfg.Postgres.Enabled {
			snapshots, db, err := openSnapshotStore(ctx, cfg.Postgres)
			if err != nil {
				slog.Warn("postgres unavailable, snapshot history disabled", "error", err)
			} else {
				defer db.Close()
				history = snapshots
				checker.Register("postgres", health.PingCheck(db.Ping, true))
				saved := snapshots.StartPeriodicSave(ctx, aggregator, cfg.Analytics.SnapshotInterval)
				defer func() { <-saved }()
			}
		}
		statsH = analytics.NewHandler(aggregator, history)
		slog.Info("analytics enabled", "buffer", cfg.Analytics.BufferSize)
	}

	var limiter apimw.Limiter
	if cfg.RateLimit.Enabled {
		rl := ratelimit.New(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, cfg.RateLimit.IdleTTL)
		defer rl.Close()
		limiter = rl
		slog.Info("rate limiting enabled",
			"rps", cfg.RateLimit.RequestsPerSecond,
			"burst", cfg.RateLimit.Burst,
			"header", cfg.RateLimit.ClientHeader,
		)
	}

	h := handler.New(index, lk, handler.Options{
		DefaultPageSize:     cfg.Search.DefaultPageSize,
		MaxPageSize:         cfg.Search.MaxPageSize,
		DisableCacheHeaders: cfg.HTTPCache.Disabled,
	}, handler.Deps{
		Cache:     lookupCache,
		Collector: collector,
		Metrics:   m,
		Tracer:    tracing.NewTracer(cfg.Tracing.Enabled, cfg.Tracing.SampleRate),
	})

	server := &http.Server{
		Addr: cfg.Server.Addr(),
		Handler: router.New(h, statsH, checker, router.Config{
			Limiter:        limiter,
			ClientHeader:   cfg.RateLimit.ClientHeader,
			Metrics:        m,
			RequestTimeout: cfg.Server.RequestTimeout,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		slog.Error("failed to listen", "addr", server.Addr, "error", err)
		os.Exit(1)
	}
	slog.Info("lexicon service listening",
		"addr", server.Addr,
		"words", index.WordCount(),
		"synsets", dict.SynsetCount(),
	)
	// serve drains in-flight requests before returning, so the deferred
	// teardown below never unmaps the dictionary under a live handler.
	if err := serve(ctx, server, ln, cfg.Server.ShutdownTimeout); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("lexicon service stopped")
}

// openSnapshotStore connects to Postgres with retries and prepares the
// snapshot table.
func openSnapshotStore(ctx context.Context, cfg config.PostgresConfig) (*store.Store, *postgres.Client, error) {
	var db *postgres.Client
	err := resilience.Retry(ctx, "postgres connect", resilience.RetryConfig{MaxAttempts: 3}, func() error {
		var err error
		db, err = postgres.New(ctx, cfg)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	snapshots := store.New(db)
	if err := snapshots.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return snapshots, db, nil
}
