// Package handler exposes the authentication and account endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"proctor/internal/identity/models"
	smodels "proctor/internal/session/models"
	id "proctor/pkg/domain"
	dErrors "proctor/pkg/domain-errors"
	"proctor/pkg/platform/httputil"
	"proctor/pkg/requestcontext"
)

// Service defines the identity operations the handler depends on.
type Service interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, username, password string) (*smodels.Session, *models.User, error)
	Logout(ctx context.Context, sessionID id.SessionID) error
	CurrentUser(ctx context.Context) (*models.CurrentUserView, error)
	UpdateUserField(ctx context.Context, rawField, value string) error
	ListStudents(ctx context.Context) ([]models.StudentEntry, error)
}

// Handler handles identity endpoints.
type Handler struct {
	svc           Service
	logger        *slog.Logger
	cookieName    string
	secureCookies bool
}

// New creates an identity Handler. secureCookies should be true everywhere
// except local development over plain HTTP.
func New(svc Service, logger *slog.Logger, cookieName string, secureCookies bool) *Handler {
	return &Handler{
		svc:           svc,
		logger:        logger,
		cookieName:    cookieName,
		secureCookies: secureCookies,
	}
}

// Register mounts the identity routes. requireSession guards the
// authenticated surface; registration, login, and logout stay public.
func (h *Handler) Register(r chi.Router, requireSession func(http.Handler) http.Handler) {
	r.Post("/auth/register", h.handleRegister)
	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/logout", h.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(requireSession)
		r.Get("/auth/me", h.handleMe)
		r.Patch("/auth/me", h.handleUpdateMe)
		r.Get("/students", h.handleListStudents)
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	user, err := h.svc.Register(ctx, &req)
	if err != nil {
		h.logger.WarnContext(ctx, "registration rejected",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, user.View())
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	session, user, err := h.svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	http.SetCookie(w, h.sessionCookie(session.ID.String(), session.ExpiresAt))
	httputil.WriteJSON(w, http.StatusOK, user.View())
}

// handleLogout clears the session slot. It succeeds whether or not a valid
// session was presented, so repeated logouts are harmless.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cookie, err := r.Cookie(h.cookieName); err == nil {
		if sessionID, parseErr := id.ParseSessionID(cookie.Value); parseErr == nil {
			if err := h.svc.Logout(ctx, sessionID); err != nil {
				h.logger.ErrorContext(ctx, "logout failed",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, err)
				return
			}
		}
	}

	http.SetCookie(w, h.expiredCookie())
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"logged_out": true})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.CurrentUser(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

type updateFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (h *Handler) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.svc.UpdateUserField(ctx, req.Field, req.Value); err != nil {
		h.logger.WarnContext(ctx, "field update rejected",
			"field", req.Field,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	view, err := h.svc.CurrentUser(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.svc.ListStudents(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"students": students})
}

func (h *Handler) sessionCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *Handler) expiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
