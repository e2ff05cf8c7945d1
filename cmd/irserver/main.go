package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AustinPardosi/IR-System-BE/internal/analytics"
	"github.com/AustinPardosi/IR-System-BE/internal/engine"
	"github.com/AustinPardosi/IR-System-BE/internal/engine/tokenizer"
	"github.com/AustinPardosi/IR-System-BE/internal/server"
	"github.com/AustinPardosi/IR-System-BE/internal/server/cache"
	"github.com/AustinPardosi/IR-System-BE/pkg/config"
	"github.com/AustinPardosi/IR-System-BE/pkg/health"
	"github.com/AustinPardosi/IR-System-BE/pkg/kafka"
	"github.com/AustinPardosi/IR-System-BE/pkg/logger"
	"github.com/AustinPardosi/IR-System-BE/pkg/metrics"
	"github.com/AustinPardosi/IR-System-BE/pkg/middleware"
	"github.com/AustinPardosi/IR-System-BE/pkg/postgres"
	pkgredis "github.com/AustinPardosi/IR-System-BE/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting retrieval service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
		slog.Info("metrics server started", "port", cfg.Metrics.Port)
	}

	eng, err := engine.New(engine.Config{
		Tokenizer: tokenizer.Config{
			StopwordsFile: cfg.Tokenizer.StopwordsFile,
			Stemmer:       cfg.Tokenizer.Stemmer,
		},
		ExpansionThreshold:  cfg.Retrieval.ExpansionThreshold,
		ExpansionMaxPerTerm: cfg.Retrieval.ExpansionMaxPerTerm,
		Metrics:             m,
	})
	if err != nil {
		slog.Error("failed to build engine", "error", err)
		os.Exit(1)
	}

	var queryCache *cache.QueryCache
	redisClient, err := pkgredis.Dial(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, query caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis)
		slog.Info("query cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	var collector *analytics.Collector
	var aggregator *analytics.Aggregator
	if cfg.Analytics.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.QueryEvents)
		collector = analytics.NewCollector(producer, cfg.Analytics.BatchSize, cfg.Analytics.FlushInterval)
		collector.Start(ctx)
		defer collector.Close()

		aggregator = analytics.NewAggregator(cfg.Kafka, cfg.Kafka.Topics.QueryEvents)
		go func() {
			if err := aggregator.Start(ctx); err != nil && ctx.Err() == nil {
				slog.Error("analytics aggregator error", "error", err)
			}
		}()
		slog.Info("analytics pipeline started", "topic", cfg.Kafka.Topics.QueryEvents)

		if db, err := postgres.Open(cfg.Postgres); err != nil {
			slog.Warn("postgres unavailable, analytics snapshots disabled", "error", err)
		} else {
			defer db.Close()
			store := analytics.NewStore(db)
			store.StartSnapshotLoop(ctx, aggregator, cfg.Analytics.SnapshotInterval)
		}
	}

	checker := health.New(2 * time.Second)
	checker.Add("engine", true, func(ctx context.Context) (string, error) {
		return fmt.Sprintf("%d documents indexed", eng.DocumentCount()), nil
	})
	checker.Add("redis", false, func(ctx context.Context) (string, error) {
		if redisClient == nil {
			return "not configured", nil
		}
		return cfg.Redis.Addr, redisClient.Ping(ctx)
	})

	h := server.New(eng, queryCache, collector, m, *cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/documents", h.IngestDocument)
	mux.HandleFunc("POST /api/v1/documents/batch", h.IngestBatch)
	mux.HandleFunc("POST /api/v1/documents/upload", h.UploadCorpus)
	mux.HandleFunc("DELETE /api/v1/documents/{id}", h.RemoveDocument)
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("POST /api/v1/train", h.Train)
	mux.HandleFunc("POST /api/v1/evaluate", h.Evaluate)
	mux.HandleFunc("GET /api/v1/index", h.InspectIndex)
	mux.HandleFunc("GET /api/v1/index/terms", h.InvertedFile)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	if aggregator != nil {
		analyticsH := analytics.NewHandler(aggregator)
		mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
	}
	mux.HandleFunc("GET /health/live", checker.Liveness())
	mux.HandleFunc("GET /health/ready", checker.Readiness())

	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.Tracing(chain)
	chain = middleware.RequestID(chain)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("retrieval service listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("retrieval service stopped")
}
