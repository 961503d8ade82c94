// Package domain defines the typed identifiers shared across the module.
//
// Every stored entity is keyed by a UUID wrapped in its own named type so the
// compiler rejects cross-entity assignment (a GroupID can never be passed
// where a UserID is expected). Parsing happens once, at trust boundaries;
// everything past the boundary works with typed values.
package domain

import (
	"github.com/google/uuid"

	dErrors "proctor/pkg/domain-errors"
)

type (
	// UserID identifies a user record.
	UserID uuid.UUID
	// SessionID identifies a server-side session record.
	SessionID uuid.UUID
	// GroupID identifies a distribution group.
	GroupID uuid.UUID
)

// NewUserID returns a fresh random UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewSessionID returns a fresh random SessionID.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

// NewGroupID returns a fresh random GroupID.
func NewGroupID() GroupID { return GroupID(uuid.New()) }

// parseUUID enforces the shared parsing invariant: IDs must be valid,
// non-empty, non-nil UUIDs. Malformed input is an invalid_input domain error,
// never a panic, so resolution code can treat it as "not found".
func parseUUID(raw, label string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is required", label)
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is not a valid identifier", label)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s must not be the nil identifier", label)
	}
	return parsed, nil
}

// ParseUserID parses a string into a UserID.
func ParseUserID(raw string) (UserID, error) {
	parsed, err := parseUUID(raw, "user id")
	if err != nil {
		return UserID{}, err
	}
	return UserID(parsed), nil
}

// ParseSessionID parses a string into a SessionID.
func ParseSessionID(raw string) (SessionID, error) {
	parsed, err := parseUUID(raw, "session id")
	if err != nil {
		return SessionID{}, err
	}
	return SessionID(parsed), nil
}

// ParseGroupID parses a string into a GroupID.
func ParseGroupID(raw string) (GroupID, error) {
	parsed, err := parseUUID(raw, "group id")
	if err != nil {
		return GroupID{}, err
	}
	return GroupID(parsed), nil
}

func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id SessionID) String() string { return uuid.UUID(id).String() }
func (id GroupID) String() string   { return uuid.UUID(id).String() }

func (id UserID) IsZero() bool    { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id GroupID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }

// Text marshalling keeps the canonical UUID string on the wire and in JSON
// object keys; named UUID types do not inherit it from uuid.UUID.

func (id UserID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(text []byte) error {
	parsed, err := ParseUserID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id SessionID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *SessionID) UnmarshalText(text []byte) error {
	parsed, err := ParseSessionID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id GroupID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *GroupID) UnmarshalText(text []byte) error {
	parsed, err := ParseGroupID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
