package group

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"proctor/internal/roster/models"
	id "proctor/pkg/domain"
	"proctor/pkg/platform/sentinel"
)

// Postgres persists groups in PostgreSQL. The group row and its member rows
// are written in one transaction so creation stays all-or-nothing.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, group *models.Group) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create group: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO groups (id, name, created_at) VALUES ($1, $2, $3)`,
		uuid.UUID(group.ID), group.Name, group.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert group: %w", err)
	}

	for i, memberID := range group.Members {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO group_members (group_id, member_position, user_id) VALUES ($1, $2, $3)`,
			uuid.UUID(group.ID), i, uuid.UUID(memberID))
		if err != nil {
			return fmt.Errorf("insert group member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create group: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, groupID id.GroupID) (*models.Group, error) {
	var (
		group models.Group
		gid   uuid.UUID
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM groups WHERE id = $1`,
		uuid.UUID(groupID)).Scan(&gid, &group.Name, &group.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find group: %w", err)
	}
	group.ID = id.GroupID(gid)

	members, err := s.loadMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	group.Members = members
	return &group, nil
}

func (s *Postgres) List(ctx context.Context) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM groups ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var out []*models.Group
	for rows.Next() {
		var (
			group models.Group
			gid   uuid.UUID
		)
		if err := rows.Scan(&gid, &group.Name, &group.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		group.ID = id.GroupID(gid)
		out = append(out, &group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	for _, group := range out {
		members, err := s.loadMembers(ctx, group.ID)
		if err != nil {
			return nil, err
		}
		group.Members = members
	}
	return out, nil
}

// Delete removes the group; member rows go with it via cascade.
func (s *Postgres) Delete(ctx context.Context, groupID id.GroupID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, uuid.UUID(groupID))
	if err != nil {
		return false, fmt.Errorf("delete group: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete group: %w", err)
	}
	return affected > 0, nil
}

func (s *Postgres) loadMembers(ctx context.Context, groupID id.GroupID) ([]id.UserID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM group_members WHERE group_id = $1 ORDER BY member_position`,
		uuid.UUID(groupID))
	if err != nil {
		return nil, fmt.Errorf("load group members: %w", err)
	}
	defer rows.Close()

	var members []id.UserID
	for rows.Next() {
		var uid uuid.UUID
		if err := rows.Scan(&uid); err != nil {
			return nil, fmt.Errorf("scan group member: %w", err)
		}
		members = append(members, id.UserID(uid))
	}
	return members, rows.Err()
}
