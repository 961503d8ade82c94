package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "proctor/pkg/domain"
)

// PostgresStore persists audit events in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	query := `
		INSERT INTO audit_events (occurred_at, user_id, action, subject, client_ip, request_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	var userID any
	if !event.UserID.IsZero() {
		userID = uuid.UUID(event.UserID)
	}
	_, err := s.db.ExecContext(ctx, query,
		event.Timestamp, userID, string(event.Action), event.Subject, event.ClientIP, event.RequestID)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID) ([]Event, error) {
	query := `
		SELECT occurred_at, user_id, action, subject, client_ip, request_id
		FROM audit_events
		WHERE user_id = $1
		ORDER BY occurred_at
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var uid uuid.UUID
		var action string
		if err := rows.Scan(&e.Timestamp, &uid, &action, &e.Subject, &e.ClientIP, &e.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.UserID = id.UserID(uid)
		e.Action = Action(action)
		out = append(out, e)
	}
	return out, rows.Err()
}
