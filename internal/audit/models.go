package audit

import (
	"time"

	id "proctor/pkg/domain"
)

// Action identifies what happened. Keep the vocabulary closed so downstream
// consumers can switch on it.
type Action string

const (
	ActionUserRegistered Action = "user.registered"
	ActionUserLogin      Action = "user.login"
	ActionUserLoginFail  Action = "user.login_failed"
	ActionUserLogout     Action = "user.logout"
	ActionGroupCreated   Action = "group.created"
	ActionGroupDeleted   Action = "group.deleted"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	UserID    id.UserID
	Action    Action
	Subject   string
	ClientIP  string
	RequestID string
}
