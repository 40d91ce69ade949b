// Command lexstats aggregates lookup events published by lexicond.
//
// It consumes the lookup-events topic, folds each event into an in-memory
// aggregator, optionally snapshots the totals to Postgres, and serves
// GET /v1/analytics and GET /v1/analytics/history.
//
// Usage:
//
//	go run ./cmd/lexstats [-config configs/development.yaml]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/analytics/store"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	port := flag.Int("port", 8081, "HTTP port for the analytics API")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting lexicon analytics worker", "port", *port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aggregator := analytics.NewAggregator()
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.LookupEvents, analytics.HandleEvent(aggregator))
	consumed := make(chan struct{})
	go func() {
		defer close(consumed)
		if err := consumer.Start(ctx); err != nil {
			slog.Error("consumer error", "error", err)
		}
	}()
	defer func() { <-consumed }()
	slog.Info("consuming lookup events",
		"topic", cfg.Kafka.Topics.LookupEvents,
		"group", cfg.Kafka.ConsumerGroup,
	)

	checker := health.NewChecker()
	var history analytics.SnapshotLister
	if cfg.Postgres.Enabled {
		var db *postgres.Client
		err := resilience.Retry(ctx, "postgres connect", resilience.RetryConfig{MaxAttempts: 5}, func() error {
			var err error
			db, err = postgres.New(ctx, cfg.Postgres)
			return err
		})
		if err != nil {
			slog.Error("postgres unavailable", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		snapshots := store.New(db)
		if err := snapshots.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare snapshot table", "error", err)
			os.Exit(1)
		}
		if last, err := snapshots.LatestSnapshot(ctx); err != nil {
			slog.Warn("reading latest snapshot failed", "error", err)
		} else if last != nil {
			slog.Info("previous snapshot found",
				"captured_at", last.CapturedAt,
				"total_lookups", last.Stats.TotalLookups,
			)
		}
		history = snapshots
		checker.Register("postgres", health.PingCheck(db.Ping, false))
		saved := snapshots.StartPeriodicSave(ctx, aggregator, cfg.Analytics.SnapshotInterval)
		defer func() { <-saved }()
	}

	statsH := analytics.NewHandler(aggregator, history)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/analytics", statsH.Stats)
	mux.HandleFunc("GET /v1/analytics/history", statsH.History)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      middleware.Chain(mux, middleware.RequestID, middleware.Logging),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("analytics API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		stop()
	}
	// Wait for in-flight requests before the deferred store teardown runs.
	<-drained

	slog.Info("lexicon analytics worker stopped")
}
