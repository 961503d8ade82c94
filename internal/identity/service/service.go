// Package service orchestrates registration, credential checks, and the
// session lifecycle behind the authentication endpoints.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"proctor/internal/audit"
	"proctor/internal/identity/credentials"
	"proctor/internal/identity/metrics"
	"proctor/internal/identity/models"
	smodels "proctor/internal/session/models"
	id "proctor/pkg/domain"
	dErrors "proctor/pkg/domain-errors"
	"proctor/pkg/platform/sentinel"
	"proctor/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/service_mocks.go -package=mocks

// UserStore persists user records. Create must return
// sentinel.ErrAlreadyUsed on a username collision without mutating state.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateField(ctx context.Context, userID id.UserID, field models.UpdatableField, value string) error
	ListByAccountType(ctx context.Context, accountType models.AccountType) ([]*models.User, error)
}

// SessionStore persists server-side session records. Delete must be
// idempotent so logout never fails on an already-cleared session.
type SessionStore interface {
	Save(ctx context.Context, session *smodels.Session) error
	FindByID(ctx context.Context, sessionID id.SessionID) (*smodels.Session, error)
	Delete(ctx context.Context, sessionID id.SessionID) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates identity and session management.
type Service struct {
	users          UserStore
	sessions       SessionStore
	sessionTTL     time.Duration
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service. sessionTTL bounds how long a login stays valid.
func New(users UserStore, sessions SessionStore, sessionTTL time.Duration, opts ...Option) *Service {
	s := &Service{
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		tracer:     otel.Tracer("proctor/identity"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a user with a fresh salt and hashed password. The account
// type defaults to student unless explicitly assessor.
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	ctx, span := s.tracer.Start(ctx, "identity.Register")
	defer span.End()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	accountType, err := models.ParseAccountType(req.AccountType)
	if err != nil {
		return nil, err
	}

	salt, err := credentials.GenerateSalt()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate salt")
	}

	user := &models.User{
		ID:           id.NewUserID(),
		Username:     req.Username,
		PasswordHash: credentials.Hash(req.Password, salt),
		PasswordSalt: salt,
		FullName:     req.FullName,
		AccountType:  accountType,
		CreatedAt:    requestcontext.Now(ctx),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.Newf(dErrors.CodeConflict, "username %q is already taken", req.Username)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.logAudit(ctx, audit.ActionUserRegistered, user.ID, user.Username)
	if s.metrics != nil {
		s.metrics.IncrementUsersRegistered()
	}
	return user, nil
}

// Login verifies credentials and opens a session. A missing user and a wrong
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (*smodels.Session, *models.User, error) {
	ctx, span := s.tracer.Start(ctx, "identity.Login")
	defer span.End()

	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveLogin(start)
		}
	}()

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, s.failLogin(ctx, username)
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve user")
	}

	if !credentials.Verify(password, user.PasswordSalt, user.PasswordHash) {
		return nil, nil, s.failLogin(ctx, username)
	}

	now := requestcontext.Now(ctx)
	session := &smodels.Session{
		ID:        id.NewSessionID(),
		UserID:    user.ID,
		Device:    smodels.DeviceName(requestcontext.UserAgent(ctx)),
		IPAddress: requestcontext.ClientIP(ctx),
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist session")
	}

	s.logAudit(ctx, audit.ActionUserLogin, user.ID, user.Username)
	if s.metrics != nil {
		s.metrics.LoginSuccess.Inc()
	}
	return session, user, nil
}

func (s *Service) failLogin(ctx context.Context, username string) error {
	s.logAudit(ctx, audit.ActionUserLoginFail, id.UserID{}, username)
	if s.metrics != nil {
		s.metrics.LoginFailure.Inc()
	}
	return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
}

// Logout clears the session. Clearing an absent or already-cleared session
// succeeds, so repeated logouts are harmless.
func (s *Service) Logout(ctx context.Context, sessionID id.SessionID) error {
	ctx, span := s.tracer.Start(ctx, "identity.Logout")
	defer span.End()

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear session")
	}
	s.logAudit(ctx, audit.ActionUserLogout, requestcontext.UserID(ctx), "")
	return nil
}

// Authenticate resolves a session ID into its owning user. Expired sessions
// are cleared eagerly and rejected.
func (s *Service) Authenticate(ctx context.Context, sessionID id.SessionID) (id.UserID, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return id.UserID{}, dErrors.New(dErrors.CodeUnauthorized, "unknown session")
		}
		return id.UserID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}

	if session.ExpiredAt(requestcontext.Now(ctx)) {
		_ = s.sessions.Delete(ctx, sessionID)
		return id.UserID{}, dErrors.New(dErrors.CodeUnauthorized, "session expired")
	}
	return session.UserID, nil
}

// UserByID loads a user record by identifier.
func (s *Service) UserByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

// UserByUsername loads a user record by its exact, case-sensitive username.
// An ambiguous match is reported by the store as not found.
func (s *Service) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

// CurrentUser rebuilds the identity snapshot for the authenticated caller.
func (s *Service) CurrentUser(ctx context.Context) (*models.CurrentUserView, error) {
	userID := requestcontext.UserID(ctx)
	if userID.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "not authenticated")
	}
	user, err := s.UserByID(ctx, userID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "not authenticated")
		}
		return nil, err
	}
	return user.View(), nil
}

// UpdateUserField changes one whitelisted field on the authenticated user's
// own record. Anything outside the whitelist is rejected before storage.
func (s *Service) UpdateUserField(ctx context.Context, rawField, value string) error {
	ctx, span := s.tracer.Start(ctx, "identity.UpdateUserField")
	defer span.End()

	userID := requestcontext.UserID(ctx)
	if userID.IsZero() {
		return dErrors.New(dErrors.CodeUnauthorized, "not authenticated")
	}

	field, err := models.ParseUpdatableField(rawField)
	if err != nil {
		return err
	}
	if err := validateFieldValue(field, value); err != nil {
		return err
	}

	if err := s.users.UpdateField(ctx, userID, field, value); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
	}
	return nil
}

func validateFieldValue(field models.UpdatableField, value string) error {
	switch field {
	case models.FieldPasswordHash:
		if len(value) != credentials.HashLength {
			return dErrors.New(dErrors.CodeInvalidInput, "password hash must be 64 hex characters")
		}
	case models.FieldPasswordSalt:
		if len(value) != credentials.SaltLength {
			return dErrors.New(dErrors.CodeInvalidInput, "password salt must be 32 hex characters")
		}
	case models.FieldFullName:
		if value == "" || len(value) > 128 {
			return dErrors.New(dErrors.CodeInvalidInput, "full_name must be 1-128 characters")
		}
	}
	return nil
}

// ListStudents returns the reduced student listing used by group pickers.
func (s *Service) ListStudents(ctx context.Context) ([]models.StudentEntry, error) {
	users, err := s.users.ListByAccountType(ctx, models.AccountTypeStudent)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list students")
	}
	entries := make([]models.StudentEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, models.StudentEntry{ID: u.ID, Username: u.Username, FullName: u.FullName})
	}
	return entries, nil
}

func (s *Service) logAudit(ctx context.Context, action audit.Action, userID id.UserID, subject string) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(action),
			"subject", subject,
			"user_id", userID,
			"request_id", requestcontext.RequestID(ctx),
			"log_type", "audit",
		)
	}
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		UserID:    userID,
		Action:    action,
		Subject:   subject,
		ClientIP:  requestcontext.ClientIP(ctx),
		RequestID: requestcontext.RequestID(ctx),
	})
}
