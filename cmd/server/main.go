// watchgate is the sanctions-screening backend: it fronts the external
// entity-search service with per-analyst screening sessions, disposition
// lists, a review queue, and an append-only audit trail.
//
// main wires configuration, the audit pipeline, token validation, and the
// HTTP surface, then runs the server and the audit worker until a signal
// arrives. Business logic lives in the internal packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"watchgate/internal/admin"
	"watchgate/internal/auth/revocation"
	"watchgate/internal/auth/token"
	"watchgate/internal/gateway"
	gwmetrics "watchgate/internal/gateway/metrics"
	"watchgate/internal/platform/config"
	"watchgate/internal/platform/httpserver"
	"watchgate/internal/platform/logger"
	platformmetrics "watchgate/internal/platform/metrics"
	platformredis "watchgate/internal/platform/redis"
	"watchgate/internal/ratelimit"
	screening "watchgate/internal/screening/handler"
	screeningmetrics "watchgate/internal/screening/metrics"
	"watchgate/internal/screening/reconcile"
	"watchgate/internal/screening/service"
	"watchgate/internal/screening/session"
	httptransport "watchgate/internal/transport/http"
	"watchgate/pkg/platform/audit"
	kafkasink "watchgate/pkg/platform/audit/sink/kafka"
	auditmemory "watchgate/pkg/platform/audit/store/memory"
	auditpostgres "watchgate/pkg/platform/audit/store/postgres"
	"watchgate/pkg/platform/audit/worker"
	"watchgate/pkg/platform/middleware/auth"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "watchgate:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Audit pipeline: durable store, optional Kafka fan-out, async worker.
	auditStore, closeStore, err := buildAuditStore(ctx, cfg.Audit)
	if err != nil {
		return err
	}
	defer closeStore()

	var sink audit.Sink
	if len(cfg.Audit.KafkaBrokers) > 0 {
		ks, err := kafkasink.New(cfg.Audit.KafkaBrokers, cfg.Audit.KafkaTopic)
		if err != nil {
			return fmt.Errorf("kafka sink: %w", err)
		}
		defer ks.Close()
		if err := ks.EnsureTopic(ctx, 1, 1); err != nil {
			log.Warn("kafka topic check failed, sink stays best-effort", "error", err)
		}
		sink = ks
		log.Info("audit events fan out to kafka", "topic", cfg.Audit.KafkaTopic)
	}

	auditWorker := worker.New(auditStore, sink, cfg.Audit.BufferSize, log, worker.NewMetrics())

	// Token revocation list: shared via Redis when configured, otherwise
	// process-local (single-node dev mode).
	var trl auth.TokenRevocationChecker
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		trl = revocation.NewRedisTRL(redisClient.Client)
		log.Info("token revocation list backed by redis")
	} else {
		trl = revocation.NewMemoryTRL()
		log.Warn("REDIS_URL not set, token revocation list is process-local")
	}

	// Screening core: gateway client, per-analyst sessions, service.
	gatewayClient := gateway.New(cfg.Gateway, log, gwmetrics.New())

	sessions := session.NewManager(cfg.Session.TTL, cfg.Session.SweepInterval, log)
	defer sessions.Close()

	scrMetrics := screeningmetrics.New()
	screeningmetrics.RegisterActiveSessions(func() float64 {
		return float64(sessions.Len())
	})

	reconciler := reconcile.New(gatewayClient, cfg.Reconcile, log, scrMetrics)
	svc := service.New(gatewayClient, auditWorker, reconciler, log, scrMetrics)

	limiter := ratelimit.New(ratelimit.NewMemoryStore(), cfg.RateLimit, auditWorker, log, ratelimit.NewMetrics())

	router := httptransport.NewRouter(httptransport.Deps{
		Screening:      screening.New(svc, sessions, log),
		Admin:          admin.New(auditStore, auditWorker, log),
		Limiter:        limiter,
		TokenValidator: token.NewVerifier(cfg.Auth.JWTSecret),
		Revocations:    trl,
		Security:       httptransport.NewSecurityRecorder(auditWorker),
		AdminKeyHash:   cfg.Auth.AdminKeyHash,
		HTTPMetrics:    platformmetrics.NewHTTP(),
		Logger:         log,
	})

	srv := httpserver.New(cfg.Server, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return auditWorker.Run(gctx)
	})

	g.Go(func() error {
		log.Info("watchgate listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Info("watchgate stopped")
	return err
}

// buildAuditStore selects the audit backend. Postgres gets its schema
// ensured at boot so a fresh database works without a migration step.
func buildAuditStore(ctx context.Context, cfg config.AuditConfig) (audit.Store, func(), error) {
	switch cfg.Store {
	case "postgres":
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open audit database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("audit database unreachable: %w", err)
		}
		store := auditpostgres.New(db)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("audit schema: %w", err)
		}
		return store, func() { _ = db.Close() }, nil
	default:
		return auditmemory.NewInMemoryStore(0), func() {}, nil
	}
}
