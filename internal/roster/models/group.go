package models

import (
	"strings"
	"time"

	id "proctor/pkg/domain"
	dErrors "proctor/pkg/domain-errors"
	pstrings "proctor/pkg/platform/strings"
)

// Group is a named, ordered list of student identifiers used for bulk test
// issuance.
//
// Invariants at creation time only:
//   - Members is non-empty
//   - every member resolves to an existing user of type student
//
// Nothing is re-checked after creation: a member reference can go stale if
// the user record later disappears, and membership reads surface that as a
// lookup failure rather than silently pruning the list.
type Group struct {
	ID        id.GroupID  `json:"id"`
	Name      string      `json:"name"`
	Members   []id.UserID `json:"members"`
	CreatedAt time.Time   `json:"created_at"`
}

// CreateGroupRequest carries the group creation input. Member IDs arrive as
// raw strings and are parsed one by one; a single malformed ID rejects the
// whole request before any write.
type CreateGroupRequest struct {
	Name       string   `json:"name"`
	StudentIDs []string `json:"student_ids"`
}

// Normalize trims the group name and collapses the member list: surrounding
// whitespace is stripped and duplicate or empty entries are dropped, keeping
// first-occurrence order.
func (r *CreateGroupRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.StudentIDs = pstrings.DedupeAndTrim(r.StudentIDs)
}

// Validate checks the request shape. Member existence and account type are
// checked by the service against the user directory.
func (r *CreateGroupRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	if len(r.Name) > 128 {
		return dErrors.New(dErrors.CodeInvalidInput, "name must be at most 128 characters")
	}
	if len(r.StudentIDs) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "student_ids must be non-empty")
	}
	return nil
}
