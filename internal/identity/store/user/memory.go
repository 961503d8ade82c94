// Package user provides user record persistence. The store enforces username
// uniqueness; everything above it treats sentinel.ErrAlreadyUsed as the only
// duplicate signal.
package user

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"proctor/internal/identity/models"
	id "proctor/pkg/domain"
	"proctor/pkg/platform/sentinel"
)

// Memory keeps users in maps. Intended for tests and dependency-free runs.
type Memory struct {
	mu         sync.RWMutex
	users      map[id.UserID]models.User
	byUsername map[string]id.UserID
}

func NewMemory() *Memory {
	return &Memory{
		users:      make(map[id.UserID]models.User),
		byUsername: make(map[string]id.UserID),
	}
}

func (s *Memory) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byUsername[user.Username]; taken {
		return sentinel.ErrAlreadyUsed
	}
	s.users[user.ID] = *user
	s.byUsername[user.Username] = user.ID
	return nil
}

func (s *Memory) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[userID]; ok {
		return &user, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *Memory) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byUsername[username]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	user := s.users[userID]
	return &user, nil
}

func (s *Memory) UpdateField(_ context.Context, userID id.UserID, field models.UpdatableField, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	switch field {
	case models.FieldPasswordHash:
		user.PasswordHash = value
	case models.FieldPasswordSalt:
		user.PasswordSalt = value
	case models.FieldFullName:
		user.FullName = value
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	s.users[userID] = user
	return nil
}

func (s *Memory) ListByAccountType(_ context.Context, accountType models.AccountType) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.User
	for _, user := range s.users {
		if user.AccountType == accountType {
			u := user
			out = append(out, &u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}
