package users

import (
	"context"

	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/models"
)

// Repository is the persistence surface for account records.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// RecordLogin stores the outcome of an external-login resolution:
	// the incremented counter and the (possibly promoted) role.
	RecordLogin(ctx context.Context, id string, loginCount int64, role models.Role) error
	// UpdateProfile persists screen name and the encrypted email/bio envelopes.
	UpdateProfile(ctx context.Context, id, screenName, email, bio string) error
}
