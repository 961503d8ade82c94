// Package service implements distribution group management. Group creation
// performs manual referential validation against the user directory before a
// single insert: the backing store holds no foreign keys to users, so
// validate-then-commit is the integrity mechanism.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"proctor/internal/audit"
	imodels "proctor/internal/identity/models"
	"proctor/internal/roster/metrics"
	"proctor/internal/roster/models"
	id "proctor/pkg/domain"
	dErrors "proctor/pkg/domain-errors"
	"proctor/pkg/platform/sentinel"
	"proctor/pkg/requestcontext"
)

// GroupStore persists groups. Delete reports whether a record existed.
type GroupStore interface {
	Create(ctx context.Context, group *models.Group) error
	FindByID(ctx context.Context, groupID id.GroupID) (*models.Group, error)
	List(ctx context.Context) ([]*models.Group, error)
	Delete(ctx context.Context, groupID id.GroupID) (bool, error)
}

// UserDirectory is the slice of the identity store the roster needs: member
// lookups during validation and name resolution.
type UserDirectory interface {
	FindByID(ctx context.Context, userID id.UserID) (*imodels.User, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates group creation and membership queries.
type Service struct {
	groups         GroupStore
	users          UserDirectory
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

// New constructs a Service.
func New(groups GroupStore, users UserDirectory, opts ...Option) *Service {
	s := &Service{
		groups: groups,
		users:  users,
		tracer: otel.Tracer("proctor/roster"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateGroup validates every member, then performs a single insert. No
// write happens unless the full batch validates: a malformed ID, a missing
// user, or a non-student member each reject the whole request. The window
// between validation and insert is unguarded; a member deleted in between
// surfaces later as a stale reference, never as a partial group.
func (s *Service) CreateGroup(ctx context.Context, req *models.CreateGroupRequest) (*models.Group, error) {
	ctx, span := s.tracer.Start(ctx, "roster.CreateGroup")
	defer span.End()

	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveCreateGroup(start)
		}
	}()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	members := make([]id.UserID, len(req.StudentIDs))
	for i, raw := range req.StudentIDs {
		memberID, err := id.ParseUserID(raw)
		if err != nil {
			return nil, dErrors.Newf(dErrors.CodeInvalidInput, "student id %q is not a valid identifier", raw)
		}
		members[i] = memberID
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, memberID := range members {
		memberID := memberID
		g.Go(func() error {
			user, err := s.users.FindByID(gctx, memberID)
			if err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					return dErrors.Newf(dErrors.CodeInvalidInput, "student %s does not exist", memberID)
				}
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve member")
			}
			if user.AccountType != imodels.AccountTypeStudent {
				return dErrors.Newf(dErrors.CodeInvalidInput, "user %s is not a student", memberID)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	group := &models.Group{
		ID:        id.NewGroupID(),
		Name:      req.Name,
		Members:   members,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create group")
	}

	s.logAudit(ctx, audit.ActionGroupCreated, group.ID.String())
	if s.metrics != nil {
		s.metrics.GroupsCreated.Inc()
	}
	return group, nil
}

// ListGroups returns every stored group, unfiltered.
func (s *Service) ListGroups(ctx context.Context) ([]*models.Group, error) {
	groups, err := s.groups.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list groups")
	}
	return groups, nil
}

// GroupMembers resolves each member to its full name. Membership is not
// re-validated here: a member whose user record has disappeared since
// creation surfaces as a not-found failure for the whole read.
func (s *Service) GroupMembers(ctx context.Context, groupID id.GroupID) (map[id.UserID]string, error) {
	ctx, span := s.tracer.Start(ctx, "roster.GroupMembers")
	defer span.End()

	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "group not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load group")
	}

	var mu sync.Mutex
	names := make(map[id.UserID]string, len(group.Members))

	g, gctx := errgroup.WithContext(ctx)
	for _, memberID := range group.Members {
		memberID := memberID
		g.Go(func() error {
			user, err := s.users.FindByID(gctx, memberID)
			if err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					return dErrors.Newf(dErrors.CodeNotFound, "group member %s no longer resolves", memberID)
				}
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve member")
			}
			mu.Lock()
			names[memberID] = user.FullName
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return names, nil
}

// DeleteGroup removes a group wholesale.
func (s *Service) DeleteGroup(ctx context.Context, groupID id.GroupID) error {
	ctx, span := s.tracer.Start(ctx, "roster.DeleteGroup")
	defer span.End()

	existed, err := s.groups.Delete(ctx, groupID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete group")
	}
	if !existed {
		return dErrors.New(dErrors.CodeNotFound, "group not found")
	}

	s.logAudit(ctx, audit.ActionGroupDeleted, groupID.String())
	if s.metrics != nil {
		s.metrics.GroupsDeleted.Inc()
	}
	return nil
}

func (s *Service) logAudit(ctx context.Context, action audit.Action, subject string) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(action),
			"subject", subject,
			"user_id", requestcontext.UserID(ctx),
			"request_id", requestcontext.RequestID(ctx),
			"log_type", "audit",
		)
	}
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		UserID:    requestcontext.UserID(ctx),
		Action:    action,
		Subject:   subject,
		ClientIP:  requestcontext.ClientIP(ctx),
		RequestID: requestcontext.RequestID(ctx),
	})
}
