package service

import (
	"context"

	"proctor/internal/identity/models"
	id "proctor/pkg/domain"
)

// Resolver ties one request's session value to a resolved identity. It is a
// two-state machine: Anonymous until resolution or login succeeds, then
// Authenticated with a cached CurrentUserView. A Resolver lives for exactly
// one request; nothing about it is shared between requests.
type Resolver struct {
	svc       *Service
	sessionID id.SessionID
	current   *models.CurrentUserView
}

// NewResolver builds a resolver from the raw session value carried by the
// request. An empty value, a malformed value, or a session that no longer
// resolves all yield the Anonymous state rather than an error.
func NewResolver(ctx context.Context, svc *Service, rawSession string) *Resolver {
	r := &Resolver{svc: svc}
	if rawSession == "" {
		return r
	}

	sessionID, err := id.ParseSessionID(rawSession)
	if err != nil {
		return r
	}
	r.sessionID = sessionID

	userID, err := svc.Authenticate(ctx, sessionID)
	if err != nil {
		return r
	}
	user, err := svc.UserByID(ctx, userID)
	if err != nil {
		return r
	}
	r.current = user.View()
	return r
}

// Login attempts the credential check. On success the resolver transitions
// to Authenticated and reports the new session ID via SessionID. On failure
// the current state is left untouched: callers must not infer logout from a
// failed login.
func (r *Resolver) Login(ctx context.Context, username, password string) bool {
	session, user, err := r.svc.Login(ctx, username, password)
	if err != nil {
		return false
	}
	r.sessionID = session.ID
	r.current = user.View()
	return true
}

// Logout clears the session slot and reports whether the clear succeeded.
// The cached view is not reset; the next request's resolver construction
// observes the cleared session and lands in Anonymous.
func (r *Resolver) Logout(ctx context.Context) bool {
	if r.sessionID.IsZero() {
		return true
	}
	if err := r.svc.Logout(ctx, r.sessionID); err != nil {
		return false
	}
	r.sessionID = id.SessionID{}
	return true
}

// CurrentUser returns the cached identity snapshot, or nil when Anonymous.
func (r *Resolver) CurrentUser() *models.CurrentUserView {
	return r.current
}

// IsAuthenticated reports whether the resolver holds a resolved identity.
func (r *Resolver) IsAuthenticated() bool {
	return r.current != nil
}

// SessionID exposes the session the resolver is bound to, zero when none.
func (r *Resolver) SessionID() id.SessionID {
	return r.sessionID
}
