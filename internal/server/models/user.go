package models

import "time"

// Role is the authorization level attached to an account.
type Role string

const (
	RoleUser      Role = "user"
	RoleSuperUser Role = "superuser"
)

// User is the sole persisted account entity. GoogleID is set for accounts
// created through the external login callback; Username/PasswordHash are set
// for locally registered accounts. Email and Bio hold ciphertext envelopes
// at rest, never plaintext.
type User struct {
	ID           string
	GoogleID     string
	Username     string
	PasswordHash string
	Role         Role
	ScreenName   string
	Email        string
	Bio          string
	LoginCount   int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsSuperUser reports whether the account carries the elevated role.
func (u *User) IsSuperUser() bool {
	return u.Role == RoleSuperUser
}
