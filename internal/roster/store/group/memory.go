// Package group provides group persistence. Member references are stored as
// plain identifiers with no linkage to user records; validation happens
// above the store.
package group

import (
	"context"
	"sort"
	"sync"

	"proctor/internal/roster/models"
	id "proctor/pkg/domain"
	"proctor/pkg/platform/sentinel"
)

// Memory keeps groups in a map. Intended for tests and dependency-free runs.
type Memory struct {
	mu     sync.RWMutex
	groups map[id.GroupID]models.Group
}

func NewMemory() *Memory {
	return &Memory{groups: make(map[id.GroupID]models.Group)}
}

func (s *Memory) Create(_ context.Context, group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *group
	stored.Members = append([]id.UserID(nil), group.Members...)
	s.groups[group.ID] = stored
	return nil
}

func (s *Memory) FindByID(_ context.Context, groupID id.GroupID) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	group, ok := s.groups[groupID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := group
	out.Members = append([]id.UserID(nil), group.Members...)
	return &out, nil
}

func (s *Memory) List(_ context.Context) ([]*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Group, 0, len(s.groups))
	for _, group := range s.groups {
		g := group
		g.Members = append([]id.UserID(nil), group.Members...)
		out = append(out, &g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Memory) Delete(_ context.Context, groupID id.GroupID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[groupID]; !ok {
		return false, nil
	}
	delete(s.groups, groupID)
	return true, nil
}
