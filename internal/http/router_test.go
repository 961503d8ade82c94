package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identityhandler "proctor/internal/identity/handler"
	identityservice "proctor/internal/identity/service"
	userstore "proctor/internal/identity/store/user"
	rosterhandler "proctor/internal/roster/handler"
	rosterservice "proctor/internal/roster/service"
	groupstore "proctor/internal/roster/store/group"
	sessionstore "proctor/internal/session/store"
	"proctor/pkg/testutil"
)

func newTestRouter(t *testing.T, checks map[string]HealthCheck) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := userstore.NewMemory()
	identitySvc := identityservice.New(users, sessionstore.NewMemory(), time.Hour,
		identityservice.WithLogger(logger))
	rosterSvc := rosterservice.New(groupstore.NewMemory(), users,
		rosterservice.WithLogger(logger))

	return NewRouter(Dependencies{
		Logger:       logger,
		Identity:     identityhandler.New(identitySvc, logger, "proctor_session", false),
		Roster:       rosterhandler.New(rosterSvc, logger),
		Auth:         identitySvc,
		CookieName:   "proctor_session",
		HealthChecks: checks,
	})
}

func TestHealthz(t *testing.T) {
	t.Run("no checks", func(t *testing.T) {
		router := newTestRouter(t, nil)
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "status", "ok")
	})

	t.Run("degraded when a backing service fails", func(t *testing.T) {
		router := newTestRouter(t, map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
		testutil.AssertJSONContains(t, rr, "status", "degraded")
		testutil.AssertJSONContains(t, rr, "postgres", "ok")
	})
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)
	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	testutil.AssertStatusOK(t, rr)
	assert.NotEmpty(t, rr.Body.String())
}

func TestGuardedRoutesRejectAnonymous(t *testing.T) {
	router := newTestRouter(t, nil)
	for _, path := range []string{"/auth/me", "/groups", "/students"} {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, path))
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	}
}

func TestFullLoginFlowThroughRouter(t *testing.T) {
	router := newTestRouter(t, nil)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/register", map[string]string{
		"username": "alice", "password": "secret", "full_name": "Alice A",
	}))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	loginRR := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/login", map[string]string{
		"username": "alice", "password": "secret",
	}))
	testutil.AssertStatusOK(t, loginRR)
	cookies := loginRR.Result().Cookies()
	require.NotEmpty(t, cookies)

	meReq := testutil.NewRequest(t, http.MethodGet, "/auth/me")
	for _, c := range cookies {
		meReq.AddCookie(c)
	}
	meRR := testutil.DoRequest(router, meReq)
	testutil.AssertStatusOK(t, meRR)
	testutil.AssertJSONContains(t, meRR, "username", "alice")
}
