// Package store provides session persistence: an in-memory implementation
// for tests and dependency-free runs, and a Redis implementation that lets
// sessions expire server-side.
package store

import (
	"context"
	"sync"

	"proctor/internal/session/models"
	id "proctor/pkg/domain"
	"proctor/pkg/platform/sentinel"
)

// Memory keeps sessions in a map. Expiry is enforced by callers via
// Session.ExpiredAt; nothing is evicted in the background.
type Memory struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]models.Session
}

func NewMemory() *Memory {
	return &Memory{sessions: make(map[id.SessionID]models.Session)}
}

func (s *Memory) Save(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

func (s *Memory) FindByID(_ context.Context, sessionID id.SessionID) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if session, ok := s.sessions[sessionID]; ok {
		return &session, nil
	}
	return nil, sentinel.ErrNotFound
}

// Delete removes the session. Deleting an absent session is a no-op so
// logout stays idempotent.
func (s *Memory) Delete(_ context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
