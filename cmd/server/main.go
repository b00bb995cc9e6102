package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	achievementhandler "escolar/internal/achievement/handler"
	"escolar/internal/audit"
	"escolar/internal/audit/deadletter"
	audithandler "escolar/internal/audit/handler"
	auditmetrics "escolar/internal/audit/metrics"
	auditmem "escolar/internal/audit/store/memory"
	auditpg "escolar/internal/audit/store/postgres"
	"escolar/internal/jwtauth"
	"escolar/internal/platform/config"
	"escolar/internal/platform/httpserver"
	"escolar/internal/platform/logger"
	"escolar/internal/platform/middleware"
	platformredis "escolar/internal/platform/redis"
	"escolar/internal/store"
	"escolar/internal/tenant"
)

// main wires the process-wide dependencies: one store handle, one journal,
// one binder. Per-request handles are bound by the handlers via the binder.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	var (
		db      *sql.DB
		records store.AuditableStore
		journal audit.Journal
		err     error
	)
	if cfg.PostgresDSN != "" {
		db, err = sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("open postgres", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			log.Error("ping postgres", "error", err.Error())
			os.Exit(1)
		}
		records = store.NewPostgres(db)
		journal = auditpg.New(db)
	} else {
		log.Warn("no postgres DSN configured, using in-memory stores")
		records = store.NewInMemory()
		journal = auditmem.NewStore()
	}

	var sink audit.FailureSink = deadletter.NewLog(log)
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("connect redis", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		sink = deadletter.NewRedis(redisClient.Client, log)
	}

	metrics := auditmetrics.New()
	binder := tenant.NewBinder(records, journal,
		tenant.WithLogger(log),
		tenant.WithMetrics(metrics),
		tenant.WithFailureSink(sink),
	)

	resolver := jwtauth.NewService(cfg.JWTSigningKey, cfg.JWTIssuer)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if db != nil {
			if err := db.PingContext(req.Context()); err != nil {
				http.Error(w, "postgres unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(req.Context()); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(resolver, log))
		audithandler.New(journal, log).Register(r)
		achievementhandler.New(binder, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting escolar", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err.Error())
		os.Exit(1)
	}
}
