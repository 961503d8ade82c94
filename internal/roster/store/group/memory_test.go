package group

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"proctor/internal/roster/models"
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

func newTestGroup(name string, memberCount int) *models.Group {
	members := make([]id.UserID, memberCount)
	for i := range members {
		members[i] = id.NewUserID()
	}
	return &models.Group{
		ID:        id.NewGroupID(),
		Name:      name,
		Members:   members,
		CreatedAt: time.Now(),
	}
}

func (s *MemoryStoreSuite) TestCreateAndFind() {
	g := newTestGroup("TeamA", 2)
	s.Require().NoError(s.store.Create(context.Background(), g))

	found, err := s.store.FindByID(context.Background(), g.ID)
	s.Require().NoError(err)
	s.Equal("TeamA", found.Name)
	s.Equal(g.Members, found.Members)
}

func (s *MemoryStoreSuite) TestMemberOrderIsPreserved() {
	g := newTestGroup("Ordered", 5)
	s.Require().NoError(s.store.Create(context.Background(), g))

	found, err := s.store.FindByID(context.Background(), g.ID)
	s.Require().NoError(err)
	s.Equal(g.Members, found.Members)
}

func (s *MemoryStoreSuite) TestFindUnknownGroup() {
	_, err := s.store.FindByID(context.Background(), id.NewGroupID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestList() {
	first := newTestGroup("First", 1)
	first.CreatedAt = time.Now().Add(-time.Hour)
	second := newTestGroup("Second", 1)
	s.Require().NoError(s.store.Create(context.Background(), first))
	s.Require().NoError(s.store.Create(context.Background(), second))

	groups, err := s.store.List(context.Background())
	s.Require().NoError(err)
	s.Require().Len(groups, 2)
	s.Equal("First", groups[0].Name)
	s.Equal("Second", groups[1].Name)
}

func (s *MemoryStoreSuite) TestDelete() {
	g := newTestGroup("Doomed", 1)
	s.Require().NoError(s.store.Create(context.Background(), g))

	existed, err := s.store.Delete(context.Background(), g.ID)
	s.Require().NoError(err)
	s.True(existed)

	existed, err = s.store.Delete(context.Background(), g.ID)
	s.Require().NoError(err)
	s.False(existed)
}

func (s *MemoryStoreSuite) TestStoredGroupIsIsolatedFromCaller() {
	g := newTestGroup("Isolated", 2)
	s.Require().NoError(s.store.Create(context.Background(), g))

	g.Members[0] = id.NewUserID()

	found, err := s.store.FindByID(context.Background(), g.ID)
	s.Require().NoError(err)
	s.NotEqual(g.Members[0], found.Members[0])
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}
