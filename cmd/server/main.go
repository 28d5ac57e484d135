package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"mysafepocket/internal/audit"
	"mysafepocket/internal/platform/config"
	"mysafepocket/internal/platform/database"
	"mysafepocket/internal/platform/health"
	"mysafepocket/internal/platform/kafka"
	"mysafepocket/internal/platform/logger"
	"mysafepocket/internal/platform/metrics"
	"mysafepocket/internal/platform/redis"
	"mysafepocket/internal/platform/tracer"
	"mysafepocket/internal/pocket/service"
	"mysafepocket/internal/pocket/store"
	httptransport "mysafepocket/internal/transport/http"
	"mysafepocket/migrations"
	"mysafepocket/pkg/platform/circuit"
)

const auditBufferSize = 256

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	log.Info("initializing mysafepocket",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"store", cfg.Store,
	)

	if err := run(cfg, log); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	healthHandler := health.New(cfg.Environment)

	pocketStore, closeStore, err := openStore(ctx, cfg, reg, healthHandler)
	if err != nil {
		return err
	}
	defer closeStore()

	auditor, closeAudit, err := openAudit(ctx, cfg, log, healthHandler)
	if err != nil {
		return err
	}
	defer closeAudit()

	svc := service.NewService(pocketStore,
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithAuditor(auditor),
		service.WithTracer(tracer.NewOTel()),
	)

	router := httptransport.NewRouter(httptransport.Config{
		Pockets:        svc,
		Health:         healthHandler,
		Metrics:        m,
		Gatherer:       reg,
		Logger:         log,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStore selects the pocket store backend and registers its readiness check.
func openStore(ctx context.Context, cfg config.Server, reg prometheus.Registerer, h *health.Handler) (service.Store, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		pool, err := database.New(ctx, database.DefaultConfig(cfg.DatabaseURL))
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := database.Migrate(ctx, pool.DB(), migrations.FS); err != nil {
			_ = pool.Close()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		h.RegisterCheck("postgres", pool.Health)
		return store.NewPostgres(pool.DB()), func() { _ = pool.Close() }, nil

	case config.StoreRedis:
		client, err := redis.New(ctx, redis.DefaultConfig(cfg.RedisURL))
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		redis.RegisterPoolMetrics(reg, client.Client)
		h.RegisterCheck("redis", client.Health)
		return store.NewRedis(client.Client), func() { _ = client.Close() }, nil

	default:
		s := store.NewInMemoryStore()
		h.RegisterCheck("memory", s.Ping)
		return s, func() {}, nil
	}
}

// openAudit publishes audit events to Kafka when brokers are configured and
// keeps them in memory otherwise. A failing broker diverts events to memory.
func openAudit(ctx context.Context, cfg config.Server, log *slog.Logger, h *health.Handler) (*audit.Publisher, func(), error) {
	if len(cfg.KafkaBrokers) == 0 {
		pub := audit.NewPublisher(audit.NewInMemoryStore(), audit.WithPublisherLogger(log))
		return pub, func() {}, nil
	}

	producer, err := kafka.NewProducer(kafka.DefaultConfig(cfg.KafkaBrokers), log)
	if err != nil {
		return nil, nil, fmt.Errorf("create kafka producer: %w", err)
	}
	if err := producer.EnsureTopic(ctx, cfg.AuditTopic, 3, 1); err != nil {
		log.Warn("could not ensure audit topic", "topic", cfg.AuditTopic, "error", err)
	}
	h.RegisterCheck("kafka", producer.Ping)

	sink := audit.NewResilientStore(
		audit.NewKafkaStore(producer, cfg.AuditTopic),
		audit.NewInMemoryStore(),
		circuit.New("audit_kafka"),
		log,
	)
	pub := audit.NewPublisher(
		sink,
		audit.WithAsyncBuffer(auditBufferSize),
		audit.WithPublisherLogger(log),
	)
	return pub, func() {
		pub.Close()
		_ = producer.Close()
	}, nil
}
