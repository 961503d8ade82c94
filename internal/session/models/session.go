package models

import (
	"time"

	id "proctor/pkg/domain"
)

// Session is the server-side record behind a session cookie. The cookie
// carries only the session ID; everything else lives here so logout can
// invalidate the session for every holder of the cookie at once.
type Session struct {
	ID        id.SessionID `json:"id"`
	UserID    id.UserID    `json:"user_id"`
	Device    string       `json:"device"`
	IPAddress string       `json:"ip_address"`
	CreatedAt time.Time    `json:"created_at"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// ExpiredAt reports whether the session has passed its expiry as of now.
func (s *Session) ExpiredAt(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
