package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"proctor/internal/identity/models"
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

func newTestUser(username string, accountType models.AccountType) *models.User {
	return &models.User{
		ID:           id.NewUserID(),
		Username:     username,
		PasswordHash: "a0b1c2d3e4f5a0b1c2d3e4f5a0b1c2d3a0b1c2d3e4f5a0b1c2d3e4f5a0b1c2d3",
		PasswordSalt: "00112233445566778899aabbccddeeff",
		FullName:     "Test " + username,
		AccountType:  accountType,
		CreatedAt:    time.Now(),
	}
}

func (s *MemoryStoreSuite) TestCreateAndFind() {
	u := newTestUser("alice", models.AccountTypeStudent)
	s.Require().NoError(s.store.Create(context.Background(), u))

	byID, err := s.store.FindByID(context.Background(), u.ID)
	s.Require().NoError(err)
	s.Equal("alice", byID.Username)

	byName, err := s.store.FindByUsername(context.Background(), "alice")
	s.Require().NoError(err)
	s.Equal(u.ID, byName.ID)
}

func (s *MemoryStoreSuite) TestDuplicateUsernameLeavesFirstRecordIntact() {
	first := newTestUser("alice", models.AccountTypeStudent)
	s.Require().NoError(s.store.Create(context.Background(), first))

	second := newTestUser("alice", models.AccountTypeAssessor)
	err := s.store.Create(context.Background(), second)
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)

	found, err := s.store.FindByUsername(context.Background(), "alice")
	s.Require().NoError(err)
	s.Equal(first.ID, found.ID)
	s.Equal(models.AccountTypeStudent, found.AccountType)
}

func (s *MemoryStoreSuite) TestUsernameIsCaseSensitive() {
	s.Require().NoError(s.store.Create(context.Background(), newTestUser("Alice", models.AccountTypeStudent)))

	_, err := s.store.FindByUsername(context.Background(), "alice")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestFindUnknown() {
	_, err := s.store.FindByID(context.Background(), id.NewUserID())
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.FindByUsername(context.Background(), "nobody")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestUpdateField() {
	u := newTestUser("alice", models.AccountTypeStudent)
	s.Require().NoError(s.store.Create(context.Background(), u))

	err := s.store.UpdateField(context.Background(), u.ID, models.FieldFullName, "Alice Changed")
	s.Require().NoError(err)

	found, err := s.store.FindByID(context.Background(), u.ID)
	s.Require().NoError(err)
	s.Equal("Alice Changed", found.FullName)
}

func (s *MemoryStoreSuite) TestUpdateFieldUnknownUser() {
	err := s.store.UpdateField(context.Background(), id.NewUserID(), models.FieldFullName, "Nobody")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestListByAccountType() {
	s.Require().NoError(s.store.Create(context.Background(), newTestUser("bob", models.AccountTypeStudent)))
	s.Require().NoError(s.store.Create(context.Background(), newTestUser("alice", models.AccountTypeStudent)))
	s.Require().NoError(s.store.Create(context.Background(), newTestUser("teacher", models.AccountTypeAssessor)))

	students, err := s.store.ListByAccountType(context.Background(), models.AccountTypeStudent)
	s.Require().NoError(err)
	s.Require().Len(students, 2)
	s.Equal("alice", students[0].Username)
	s.Equal("bob", students[1].Username)
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}
