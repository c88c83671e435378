package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	"zipstate/internal/apikey"
	"zipstate/internal/audit"
	lookuphandler "zipstate/internal/lookup/handler"
	lookupmetrics "zipstate/internal/lookup/metrics"
	lookupservice "zipstate/internal/lookup/service"
	"zipstate/internal/lookup/store/misses"
	"zipstate/internal/platform/config"
	"zipstate/internal/platform/httpserver"
	"zipstate/internal/platform/logger"
	platformmetrics "zipstate/internal/platform/metrics"
	platformredis "zipstate/internal/platform/redis"
	"zipstate/internal/ratelimit"
	"zipstate/internal/region"
	httptransport "zipstate/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	health := map[string]httptransport.HealthCheck{}

	// Audit pipeline. The in-process store always runs so /admin/audit has
	// data; Kafka joins the fanout when brokers are configured.
	auditStore := audit.NewInMemoryStore(0)
	var publisher audit.Publisher = audit.NewPublisher(auditStore, audit.WithAsyncBuffer(1024))
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPub, err := audit.NewKafkaPublisher(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			return fmt.Errorf("connect kafka: %w", err)
		}
		publisher = audit.Fanout{publisher, kafkaPub}
		log.Info("audit events streaming to kafka",
			"brokers", cfg.Kafka.Brokers,
			"topic", cfg.Kafka.Topic,
		)
	}
	defer func() { _ = publisher.Close() }()

	// Persistence. Without a DSN both stores stay in memory, which is the
	// single-node development setup.
	var keyStore apikey.Store = apikey.NewInMemory()
	var missStore misses.Store = misses.NewInMemoryStore()
	if cfg.Postgres.DSN != "" {
		db, err := sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer db.Close()

		pgKeys, err := apikey.NewPostgres(ctx, db)
		if err != nil {
			return fmt.Errorf("bootstrap api key store: %w", err)
		}
		keyStore = pgKeys

		pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
		if err != nil {
			return fmt.Errorf("open pgx pool: %w", err)
		}
		defer pool.Close()

		pgMisses, err := misses.NewPostgresStore(ctx, pool)
		if err != nil {
			return fmt.Errorf("bootstrap miss store: %w", err)
		}
		missStore = pgMisses

		health["postgres"] = db.PingContext
		log.Info("postgres connected")
	}

	// Rate limit buckets live in Redis when configured so limits hold
	// across replicas; otherwise they are per-process. A Redis outage trips
	// a breaker and the limiter degrades to the in-memory store rather than
	// failing requests.
	var buckets ratelimit.BucketStore = ratelimit.NewInMemoryBucketStore()
	rdb, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if rdb != nil {
		defer rdb.Close()
		buckets = ratelimit.NewFallbackBucketStore(
			ratelimit.NewRedisBucketStore(rdb.Client),
			ratelimit.NewInMemoryBucketStore(),
			log,
		)
		health["redis"] = rdb.Health
		log.Info("redis connected")
	}

	limitSvc, err := ratelimit.NewService(buckets,
		ratelimit.WithLogger(log),
		ratelimit.WithMetrics(ratelimit.NewMetrics(registry)),
		ratelimit.WithAuditPublisher(publisher),
		ratelimit.WithLimit(ratelimit.ClassLookup, ratelimit.Limit{
			Requests: cfg.RateLimit.Requests,
			Window:   cfg.RateLimit.Window,
		}),
	)
	if err != nil {
		return fmt.Errorf("build rate limiter: %w", err)
	}

	lookupSvc, err := lookupservice.New(
		region.PostalIndex(),
		region.AreaCodeIndex(),
		lookupservice.WithMissStore(missStore),
		lookupservice.WithAuditPublisher(publisher),
		lookupservice.WithLogger(log),
		lookupservice.WithMetrics(lookupmetrics.New(registry)),
	)
	if err != nil {
		return fmt.Errorf("build lookup service: %w", err)
	}

	tokens := apikey.NewTokenService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Audience)
	keySvc := apikey.NewService(keyStore, tokens,
		apikey.WithLogger(log),
		apikey.WithAuditPublisher(publisher),
		apikey.WithTokenTTL(cfg.JWT.TTL),
	)

	router := httptransport.NewRouter(httptransport.Config{
		AdminToken:     cfg.AdminToken,
		AuthRequired:   cfg.AuthRequired,
		RequestTimeout: cfg.RequestTimeout,
	}, httptransport.Deps{
		Logger:    log,
		Metrics:   platformmetrics.New(registry),
		Gatherer:  registry,
		Lookups:   lookuphandler.New(lookupSvc, log),
		Auth:      httptransport.NewAuthHandler(keySvc, log),
		Admin:     httptransport.NewAdminHandler(keySvc, auditStore, missStore, log),
		Validator: apikey.NewValidatorAdapter(tokens),
		RateLimit: ratelimit.NewMiddleware(limitSvc, log, ratelimit.WithDisabled(!cfg.RateLimit.Enabled)),
		Health:    health,
	})

	srv := httpserver.New(cfg.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("zipstate listening", "addr", cfg.Addr, "auth_required", cfg.AuthRequired)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
