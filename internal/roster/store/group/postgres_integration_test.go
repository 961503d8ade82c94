//go:build integration

package group_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"proctor/internal/roster/models"
	"proctor/internal/roster/store/group"
	id "proctor/pkg/domain"
	"proctor/pkg/platform/sentinel"
	"proctor/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *group.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = group.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "groups", "group_members"))
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
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresStoreSuite) TestCreateAndFindPreservesMemberOrder() {
	ctx := context.Background()
	g := newTestGroup("TeamA", 5)
	s.Require().NoError(s.store.Create(ctx, g))

	found, err := s.store.FindByID(ctx, g.ID)
	s.Require().NoError(err)
	s.Equal(g.Name, found.Name)
	s.Equal(g.Members, found.Members)
}

func (s *PostgresStoreSuite) TestFindUnknownGroup() {
	_, err := s.store.FindByID(context.Background(), id.NewGroupID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestList() {
	ctx := context.Background()
	first := newTestGroup("First", 1)
	first.CreatedAt = time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)
	second := newTestGroup("Second", 2)
	s.Require().NoError(s.store.Create(ctx, first))
	s.Require().NoError(s.store.Create(ctx, second))

	groups, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(groups, 2)
	s.Equal("First", groups[0].Name)
	s.Len(groups[1].Members, 2)
}

func (s *PostgresStoreSuite) TestDeleteCascadesMembers() {
	ctx := context.Background()
	g := newTestGroup("Doomed", 3)
	s.Require().NoError(s.store.Create(ctx, g))

	existed, err := s.store.Delete(ctx, g.ID)
	s.Require().NoError(err)
	s.True(existed)

	var count int
	err = s.postgres.DB.QueryRowContext(ctx,
		"SELECT count(*) FROM group_members WHERE group_id = $1", g.ID.String()).Scan(&count)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *PostgresStoreSuite) TestDeleteUnknownGroup() {
	existed, err := s.store.Delete(context.Background(), id.NewGroupID())
	s.Require().NoError(err)
	s.False(existed)
}
