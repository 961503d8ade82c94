package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"proctor/internal/identity/models"
	id "proctor/pkg/domain"
	"proctor/pkg/platform/sentinel"
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaks.
const uniqueViolation = "23505"

// fieldColumns maps updatable fields to their columns. Only whitelisted
// fields appear here, so SQL is never built from caller input.
var fieldColumns = map[models.UpdatableField]string{
	models.FieldPasswordHash: "password_hash",
	models.FieldPasswordSalt: "password_salt",
	models.FieldFullName:     "full_name",
}

// Postgres persists users in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, password_hash, password_salt, full_name, account_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(user.ID), user.Username, user.PasswordHash, user.PasswordSalt,
		user.FullName, string(user.AccountType), user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, password_salt, full_name, account_type, created_at
		FROM users
		WHERE id = $1
	`
	row := s.db.QueryRowContext(ctx, query, uuid.UUID(userID))
	user, err := scanUser(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return user, nil
}

// FindByUsername requires exactly one match. The unique index makes more
// than one impossible in practice, but the lookup checks cardinality itself
// rather than trusting the schema.
func (s *Postgres) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, password_salt, full_name, account_type, created_at
		FROM users
		WHERE username = $1
	`
	rows, err := s.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	defer rows.Close()

	var matches []*models.User
	for rows.Next() {
		user, err := scanUser(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		matches = append(matches, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	if len(matches) != 1 {
		return nil, sentinel.ErrNotFound
	}
	return matches[0], nil
}

func (s *Postgres) UpdateField(ctx context.Context, userID id.UserID, field models.UpdatableField, value string) error {
	column, ok := fieldColumns[field]
	if !ok {
		return fmt.Errorf("unknown field %q", field)
	}
	query := fmt.Sprintf("UPDATE users SET %s = $1 WHERE id = $2", column)
	res, err := s.db.ExecContext(ctx, query, value, uuid.UUID(userID))
	if err != nil {
		return fmt.Errorf("update user field: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user field: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) ListByAccountType(ctx context.Context, accountType models.AccountType) ([]*models.User, error) {
	query := `
		SELECT id, username, password_hash, password_salt, full_name, account_type, created_at
		FROM users
		WHERE account_type = $1
		ORDER BY username
	`
	rows, err := s.db.QueryContext(ctx, query, string(accountType))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		user, err := scanUser(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

func scanUser(scan func(dest ...any) error) (*models.User, error) {
	var (
		user        models.User
		uid         uuid.UUID
		accountType string
	)
	if err := scan(&uid, &user.Username, &user.PasswordHash, &user.PasswordSalt,
		&user.FullName, &accountType, &user.CreatedAt); err != nil {
		return nil, err
	}
	user.ID = id.UserID(uid)
	user.AccountType = models.AccountType(accountType)
	return &user, nil
}
