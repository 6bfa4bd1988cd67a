package sessions

import (
	"context"
	"time"

	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/models"
)

// Repository is the persistence surface for server-side session rows.
type Repository interface {
	Create(ctx context.Context, sess *models.Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error)
	// UpdateExpiry slides the inactivity window forward.
	UpdateExpiry(ctx context.Context, tokenHash string, expiresAt time.Time) error
	Delete(ctx context.Context, tokenHash string) error
	// DeleteExpired sweeps rows whose expiry has passed.
	DeleteExpired(ctx context.Context, now time.Time) error
}
