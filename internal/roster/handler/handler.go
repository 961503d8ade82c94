// Package handler exposes the distribution group endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"proctor/internal/roster/models"
	id "proctor/pkg/domain"
	dErrors "proctor/pkg/domain-errors"
	"proctor/pkg/platform/httputil"
	"proctor/pkg/requestcontext"
)

// Service defines the roster operations the handler depends on.
type Service interface {
	CreateGroup(ctx context.Context, req *models.CreateGroupRequest) (*models.Group, error)
	ListGroups(ctx context.Context) ([]*models.Group, error)
	GroupMembers(ctx context.Context, groupID id.GroupID) (map[id.UserID]string, error)
	DeleteGroup(ctx context.Context, groupID id.GroupID) error
}

// Handler handles group endpoints. Every route requires a session.
type Handler struct {
	svc    Service
	logger *slog.Logger
}

// New creates a roster Handler.
func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the group routes behind the session guard.
func (h *Handler) Register(r chi.Router, requireSession func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(requireSession)
		r.Post("/groups", h.handleCreateGroup)
		r.Get("/groups", h.handleListGroups)
		r.Get("/groups/{groupID}/members", h.handleGroupMembers)
		r.Delete("/groups/{groupID}", h.handleDeleteGroup)
	})
}

func (h *Handler) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	group, err := h.svc.CreateGroup(ctx, &req)
	if err != nil {
		h.logger.WarnContext(ctx, "group creation rejected",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, group)
}

func (h *Handler) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.svc.ListGroups(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

func (h *Handler) handleGroupMembers(w http.ResponseWriter, r *http.Request) {
	groupID, err := id.ParseGroupID(chi.URLParam(r, "groupID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	members, err := h.svc.GroupMembers(r.Context(), groupID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"members": members})
}

func (h *Handler) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := id.ParseGroupID(chi.URLParam(r, "groupID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.svc.DeleteGroup(r.Context(), groupID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
