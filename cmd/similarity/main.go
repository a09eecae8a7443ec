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
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/comparator/cache"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/comparator/handler"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/comparator/router"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/presets"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/similarity"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/ratelimit"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/resilience"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/tracing"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	seed := flag.Bool("seed-presets", false, "upsert the bundled presets into postgres and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if err := run(cfg, *seed); err != nil {
		slog.Error("similarity service failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, seed bool) error {
	defaultStrategy, err := similarity.ParseStrategy(cfg.Comparison.DefaultStrategy)
	if err != nil {
		return fmt.Errorf("comparison.defaultStrategy: %w", err)
	}
	defaultMetric, err := similarity.ParseMetric(cfg.Comparison.DefaultMetric)
	if err != nil {
		return fmt.Errorf("comparison.defaultMetric: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdownMetrics(shutdownCtx)
		}()
	}

	checker := health.NewChecker()

	store, closeStore, err := openPresets(ctx, cfg, m, checker, seed)
	if err != nil {
		return err
	}
	defer closeStore()
	if seed {
		return nil
	}

	resultCache, closeCache, err := openCache(cfg, checker)
	if err != nil {
		return err
	}
	defer closeCache()

	aggregator := analytics.NewAggregator()
	var tracker analytics.Tracker = aggregator
	var collector *analytics.Collector
	g, gctx := errgroup.WithContext(ctx)

	if cfg.Kafka.Enabled {
		topic := cfg.Kafka.Topics.ComparisonEvents
		producer := kafka.NewProducer(cfg.Kafka, topic)
		defer producer.Close()
		collector = analytics.NewCollector(producer, analytics.CollectorConfig{})
		// In-flight requests keep tracking after the signal until Shutdown
		// returns. The deferred Close drains them.
		collector.Start(context.WithoutCancel(ctx))
		defer collector.Close()
		tracker = collector

		consumer := kafka.NewConsumer(cfg.Kafka, topic, analytics.HandleEvent(aggregator))
		g.Go(func() error {
			return consumer.Start(gctx)
		})
		slog.Info("analytics streaming through kafka", "topic", topic, "brokers", cfg.Kafka.Brokers)
	} else {
		slog.Info("kafka disabled, analytics aggregated in process")
	}

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.New(cfg.RateLimit.RequestsPerMinute, time.Minute)
		defer limiter.Close()
	}

	h := handler.New(handler.Options{
		Presets:         store,
		Cache:           resultCache,
		Tracker:         tracker,
		Metrics:         m,
		Tracer:          tracing.NewTracer(cfg.Tracing.Enabled),
		DefaultStrategy: defaultStrategy,
		DefaultMetric:   defaultMetric,
		MaxTextBytes:    cfg.Comparison.MaxTextBytes,
	})

	server := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router.New(router.Deps{
			Handler:   h,
			Analytics: analytics.NewHandler(aggregator, collector),
			Health:    checker,
			Limiter:   limiter,
			Metrics:   m,
			Timeout:   cfg.Server.RequestTimeout,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g.Go(func() error {
		slog.Info("similarity service listening",
			"addr", server.Addr,
			"default_strategy", defaultStrategy,
			"default_metric", defaultMetric,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("similarity service stopped")
	return nil
}

func openPresets(ctx context.Context, cfg *config.Config, m *metrics.Metrics, checker *health.Checker, seed bool) (presets.Store, func(), error) {
	embedded, err := presets.NewEmbedded()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Presets.Source != config.PresetSourcePostgres && !seed {
		checker.Register("presets", func(context.Context) health.ComponentHealth {
			return health.ComponentHealth{Status: health.StatusUp, Message: "embedded"}
		})
		return embedded, func() {}, nil
	}

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to preset store: %w", err)
	}
	breaker := presets.NewBreaker(func(name string, _, to resilience.State) {
		if m != nil {
			m.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		}
	})
	store := presets.NewPostgres(db, breaker, cfg.Presets.QueryTimeout)
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	if seed {
		if err := store.Seed(ctx, embedded.All()); err != nil {
			db.Close()
			return nil, nil, err
		}
	}
	checker.Register("presets", health.PingCheck(store.Ping))
	slog.Info("presets served from postgres", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
	return store, func() { db.Close() }, nil
}

func openCache(cfg *config.Config, checker *health.Checker) (*cache.Cache, func(), error) {
	if !cfg.Cache.Enabled {
		slog.Info("result cache disabled")
		return nil, func() {}, nil
	}
	var remote cache.Remote
	closeRemote := func() {}
	if cfg.Redis.Enabled {
		client, err := pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, result cache is local only", "error", err)
			checker.Register("redis", func(context.Context) health.ComponentHealth {
				return health.ComponentHealth{Status: health.StatusDegraded, Message: "unavailable at startup"}
			})
		} else {
			remote = client
			closeRemote = func() { client.Close() }
			checker.Register("redis", health.Optional(health.PingCheck(client.Ping)))
		}
	}
	c, err := cache.New(cfg.Cache, remote)
	if err != nil {
		closeRemote()
		return nil, nil, err
	}
	slog.Info("result cache enabled",
		"local_size", cfg.Cache.LocalSize,
		"ttl", cfg.Cache.TTL,
		"redis", remote != nil,
	)
	return c, closeRemote, nil
}
