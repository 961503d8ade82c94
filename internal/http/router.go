// Package httpapi assembles the HTTP surface: middleware chain, feature
// routes, health and metrics endpoints.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	identityhandler "proctor/internal/identity/handler"
	"proctor/internal/platform/middleware"
	rosterhandler "proctor/internal/roster/handler"
	"proctor/pkg/platform/httputil"
)

// HealthCheck reports whether a named backing service is reachable.
type HealthCheck func(ctx context.Context) error

// Dependencies collects everything the router mounts. HealthChecks is keyed
// by component name; an empty map means only the process itself is checked.
type Dependencies struct {
	Logger       *slog.Logger
	Identity     *identityhandler.Handler
	Roster       *rosterhandler.Handler
	Auth         middleware.Authenticator
	CookieName   string
	HealthChecks map[string]HealthCheck
}

// NewRouter wires the middleware chain and every feature handler.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(deps.Logger))

	r.Get("/healthz", handleHealth(deps.HealthChecks))
	r.Handle("/metrics", promhttp.Handler())

	requireSession := middleware.RequireSession(deps.Auth, deps.CookieName, deps.Logger)
	deps.Identity.Register(r, requireSession)
	deps.Roster.Register(r, requireSession)

	return r
}

func handleHealth(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}
		healthy := true
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				status[name] = err.Error()
				healthy = false
				continue
			}
			status[name] = "ok"
		}
		if !healthy {
			status["status"] = "degraded"
			httputil.WriteJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, status)
	}
}
