package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"proctor/internal/session/models"
	id "proctor/pkg/domain"
	"proctor/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *Memory
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemory()
}

func (s *MemoryStoreSuite) newSession() *models.Session {
	now := time.Now()
	return &models.Session{
		ID:        id.NewSessionID(),
		UserID:    id.NewUserID(),
		Device:    "Chrome on Linux",
		IPAddress: "203.0.113.7",
		CreatedAt: now,
		ExpiresAt: now.Add(12 * time.Hour),
	}
}

func (s *MemoryStoreSuite) TestSaveAndFind() {
	session := s.newSession()
	s.Require().NoError(s.store.Save(context.Background(), session))

	found, err := s.store.FindByID(context.Background(), session.ID)
	s.Require().NoError(err)
	s.Equal(session.UserID, found.UserID)
	s.Equal(session.Device, found.Device)
}

func (s *MemoryStoreSuite) TestFindUnknownSession() {
	_, err := s.store.FindByID(context.Background(), id.NewSessionID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestDeleteIsIdempotent() {
	session := s.newSession()
	s.Require().NoError(s.store.Save(context.Background(), session))

	s.Require().NoError(s.store.Delete(context.Background(), session.ID))
	s.Require().NoError(s.store.Delete(context.Background(), session.ID))

	_, err := s.store.FindByID(context.Background(), session.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestSaveReturnsCopy() {
	session := s.newSession()
	s.Require().NoError(s.store.Save(context.Background(), session))

	found, err := s.store.FindByID(context.Background(), session.ID)
	s.Require().NoError(err)

	found.Device = "mutated"
	again, err := s.store.FindByID(context.Background(), session.ID)
	s.Require().NoError(err)
	s.Equal("Chrome on Linux", again.Device)
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}
