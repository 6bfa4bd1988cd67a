package models

import "time"

// Session is a server-side session row. TokenHash is the SHA-256 of the
// opaque cookie value; the clear token itself is never stored.
type Session struct {
	TokenHash string
	UserID    string
	CSRFToken string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its inactivity expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
