//go:build integration

package user_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"proctor/internal/identity/models"
	"proctor/internal/identity/store/user"
	id "proctor/pkg/domain"
	"proctor/pkg/platform/sentinel"
	"proctor/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *user.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = user.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "users"))
}

func newTestUser(username string, accountType models.AccountType) *models.User {
	return &models.User{
		ID:           id.NewUserID(),
		Username:     username,
		PasswordHash: "a0b1c2d3e4f5a0b1c2d3e4f5a0b1c2d3a0b1c2d3e4f5a0b1c2d3e4f5a0b1c2d3",
		PasswordSalt: "00112233445566778899aabbccddeeff",
		FullName:     "Test " + username,
		AccountType:  accountType,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	u := newTestUser("alice", models.AccountTypeStudent)
	s.Require().NoError(s.store.Create(ctx, u))

	byID, err := s.store.FindByID(ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(u.Username, byID.Username)
	s.Equal(u.PasswordHash, byID.PasswordHash)
	s.Equal(u.PasswordSalt, byID.PasswordSalt)
	s.Equal(models.AccountTypeStudent, byID.AccountType)

	byName, err := s.store.FindByUsername(ctx, "alice")
	s.Require().NoError(err)
	s.Equal(u.ID, byName.ID)
}

func (s *PostgresStoreSuite) TestDuplicateUsername() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, newTestUser("alice", models.AccountTypeStudent)))

	err := s.store.Create(ctx, newTestUser("alice", models.AccountTypeAssessor))
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)
}

// TestConcurrentDuplicateUsername verifies that concurrent registrations of
// the same username yield exactly one success.
func (s *PostgresStoreSuite) TestConcurrentDuplicateUsername() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Create(ctx, newTestUser("race", models.AccountTypeStudent))
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, sentinel.ErrAlreadyUsed):
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load())
	s.Equal(int32(goroutines-1), conflictCount.Load())
}

func (s *PostgresStoreSuite) TestUpdateField() {
	ctx := context.Background()
	u := newTestUser("alice", models.AccountTypeStudent)
	s.Require().NoError(s.store.Create(ctx, u))

	s.Require().NoError(s.store.UpdateField(ctx, u.ID, models.FieldFullName, "Alice Changed"))

	found, err := s.store.FindByID(ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("Alice Changed", found.FullName)
}

func (s *PostgresStoreSuite) TestUpdateFieldUnknownUser() {
	err := s.store.UpdateField(context.Background(), id.NewUserID(), models.FieldFullName, "Nobody")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListByAccountType() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, newTestUser("bob", models.AccountTypeStudent)))
	s.Require().NoError(s.store.Create(ctx, newTestUser("alice", models.AccountTypeStudent)))
	s.Require().NoError(s.store.Create(ctx, newTestUser("teacher", models.AccountTypeAssessor)))

	students, err := s.store.ListByAccountType(ctx, models.AccountTypeStudent)
	s.Require().NoError(err)
	s.Require().Len(students, 2)
	s.Equal("alice", students[0].Username)
	s.Equal("bob", students[1].Username)
}
