// Package common defines shared constants and sentinel errors used across
// the ZenFlow backend. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Auth token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Session errors.
	ErrSessionExpired = errors.New("session expired")

	// Field cipher errors (malformed or tampered envelope).
	ErrDecryption = errors.New("decryption error")

	// External-login callback errors (account could not be found or created).
	ErrIdentityResolution = errors.New("identity resolution error")
)
