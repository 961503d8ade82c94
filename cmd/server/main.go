// Command server runs the proctor identity and roster API.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"proctor/internal/audit"
	httpapi "proctor/internal/http"
	identityhandler "proctor/internal/identity/handler"
	identitymetrics "proctor/internal/identity/metrics"
	identityservice "proctor/internal/identity/service"
	userstore "proctor/internal/identity/store/user"
	"proctor/internal/platform/config"
	"proctor/internal/platform/httpserver"
	"proctor/internal/platform/logger"
	platformredis "proctor/internal/platform/redis"
	rosterhandler "proctor/internal/roster/handler"
	rostermetrics "proctor/internal/roster/metrics"
	rosterservice "proctor/internal/roster/service"
	groupstore "proctor/internal/roster/store/group"
	sessionstore "proctor/internal/session/store"
	"proctor/migrations"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	healthChecks := map[string]httpapi.HealthCheck{}

	// Store selection: postgres and redis when configured, in-memory otherwise.
	var (
		users      identityservice.UserStore
		groups     rosterservice.GroupStore
		auditStore audit.Store
	)
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		if err := migrations.Up(ctx, db); err != nil {
			return err
		}
		users = userstore.NewPostgres(db)
		groups = groupstore.NewPostgres(db)
		auditStore = audit.NewPostgresStore(db)
		healthChecks["postgres"] = db.PingContext
		log.Info("postgres stores enabled")
	} else {
		users = userstore.NewMemory()
		groups = groupstore.NewMemory()
		auditStore = audit.NewMemoryStore()
		log.Info("in-memory stores enabled")
	}

	var sessions identityservice.SessionStore = sessionstore.NewMemory()
	if cfg.RedisURL != "" {
		redisClient, err := platformredis.New(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		sessions = sessionstore.NewRedis(redisClient.Client)
		healthChecks["redis"] = redisClient.Health
		log.Info("redis session store enabled")
	}

	publisher := audit.NewPublisher(auditStore)

	identitySvc := identityservice.New(users, sessions, cfg.SessionTTL,
		identityservice.WithLogger(log),
		identityservice.WithMetrics(identitymetrics.New()),
		identityservice.WithAuditPublisher(publisher),
	)
	rosterSvc := rosterservice.New(groups, users,
		rosterservice.WithLogger(log),
		rosterservice.WithMetrics(rostermetrics.New()),
		rosterservice.WithAuditPublisher(publisher),
	)

	secureCookies := cfg.Environment != "development"
	router := httpapi.NewRouter(httpapi.Dependencies{
		Logger:       log,
		Identity:     identityhandler.New(identitySvc, log, cfg.CookieName, secureCookies),
		Roster:       rosterhandler.New(rosterSvc, log),
		Auth:         identitySvc,
		CookieName:   cfg.CookieName,
		HealthChecks: healthChecks,
	})

	srv := httpserver.New(cfg.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Addr, "environment", cfg.Environment)
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
