package models

import (
	"strings"
	"time"

	"github.com/asaskevich/govalidator"

	id "proctor/pkg/domain"
	dErrors "proctor/pkg/domain-errors"
)

// AccountType distinguishes test-takers from test authors.
type AccountType string

const (
	AccountTypeStudent  AccountType = "student"
	AccountTypeAssessor AccountType = "assessor"
)

// ParseAccountType validates an account type string. Empty input defaults to
// student, matching the registration contract.
func ParseAccountType(raw string) (AccountType, error) {
	switch AccountType(raw) {
	case "":
		return AccountTypeStudent, nil
	case AccountTypeStudent:
		return AccountTypeStudent, nil
	case AccountTypeAssessor:
		return AccountTypeAssessor, nil
	default:
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown account type %q", raw)
	}
}

// User is the aggregate root for a registered account.
//
// Invariants:
//   - Username is unique, case-sensitive, and immutable after registration
//   - PasswordHash is a 64-hex SHA-256 digest over password+salt
//   - PasswordSalt is a 32-hex random value, one per user
//   - AccountType is student or assessor, nothing else
//
// Users are never deleted through this subsystem.
type User struct {
	ID           id.UserID   `json:"id"`
	Username     string      `json:"username"`
	PasswordHash string      `json:"-"`
	PasswordSalt string      `json:"-"`
	FullName     string      `json:"full_name"`
	AccountType  AccountType `json:"account_type"`
	CreatedAt    time.Time   `json:"created_at"`
}

// CurrentUserView is the denormalized identity snapshot cached by a resolver
// for the lifetime of one request. It never carries credential material.
type CurrentUserView struct {
	ID          id.UserID   `json:"id"`
	Username    string      `json:"username"`
	FullName    string      `json:"full_name"`
	AccountType AccountType `json:"account_type"`
}

// View projects the user into its request-scoped snapshot.
func (u *User) View() *CurrentUserView {
	return &CurrentUserView{
		ID:          u.ID,
		Username:    u.Username,
		FullName:    u.FullName,
		AccountType: u.AccountType,
	}
}

// StudentEntry is the reduced listing used by group membership pickers.
type StudentEntry struct {
	ID       id.UserID `json:"id"`
	Username string    `json:"username"`
	FullName string    `json:"full_name"`
}

// UpdatableField names a user field that the whitelisted update operation may
// touch. Everything else, account type included, is rejected before storage.
type UpdatableField string

const (
	FieldPasswordHash UpdatableField = "password_hash"
	FieldPasswordSalt UpdatableField = "password_salt"
	FieldFullName     UpdatableField = "full_name"
)

// ParseUpdatableField enforces the field whitelist.
func ParseUpdatableField(raw string) (UpdatableField, error) {
	switch UpdatableField(raw) {
	case FieldPasswordHash, FieldPasswordSalt, FieldFullName:
		return UpdatableField(raw), nil
	default:
		return "", dErrors.Newf(dErrors.CodeForbidden, "field %q cannot be updated", raw)
	}
}

// RegisterRequest carries the registration input.
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	AccountType string `json:"account_type,omitempty"`
}

// Normalize trims whitespace from the non-secret fields. The password is left
// untouched so hashing sees exactly what the user typed.
func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.FullName = strings.TrimSpace(r.FullName)
	r.AccountType = strings.TrimSpace(r.AccountType)
}

// Validate checks the registration input shape.
func (r *RegisterRequest) Validate() error {
	if r.Username == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "username is required")
	}
	if !govalidator.IsPrintableASCII(r.Username) || govalidator.HasWhitespace(r.Username) {
		return dErrors.New(dErrors.CodeInvalidInput, "username must be printable ASCII without whitespace")
	}
	if len(r.Username) > 64 {
		return dErrors.New(dErrors.CodeInvalidInput, "username must be at most 64 characters")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "password is required")
	}
	if r.FullName == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "full_name is required")
	}
	if len(r.FullName) > 128 {
		return dErrors.New(dErrors.CodeInvalidInput, "full_name must be at most 128 characters")
	}
	if _, err := ParseAccountType(r.AccountType); err != nil {
		return err
	}
	return nil
}
