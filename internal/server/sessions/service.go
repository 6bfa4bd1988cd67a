// Package sessions implements the server-side session mode: an opaque token
// handed to the client in an HTTP-only cookie, backed by a persistent row
// with a fixed inactivity expiry. Only the SHA-256 of the token is stored.
package sessions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/common"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/logging"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/models"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/repositories/sessions"
	"github.com/google/uuid"
)

// Established is a freshly created session: the clear token goes to the
// client cookie, the CSRF token goes into rendered forms.
type Established struct {
	Token     string
	CSRFToken string
	ExpiresAt time.Time
}

type Service struct {
	repo       sessions.Repository
	idleExpiry time.Duration
	logger     logging.Logger

	// now is a seam for tests.
	now func() time.Time
}

func NewService(repo sessions.Repository, idleExpiry time.Duration, logger logging.Logger) *Service {
	return &Service{
		repo:       repo,
		idleExpiry: idleExpiry,
		logger:     logger.With("module", "sessions"),
		now:        time.Now,
	}
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Create establishes a session for the given account and returns the clear
// token. The token itself never touches storage.
func (s *Service) Create(ctx context.Context, userID string) (*Established, error) {
	token := uuid.NewString()

	csrfToken, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, fmt.Errorf("csrf token: %w", err)
	}

	now := s.now()
	sess := &models.Session{
		TokenHash: hashToken(token),
		UserID:    userID,
		CSRFToken: csrfToken,
		CreatedAt: now,
		ExpiresAt: now.Add(s.idleExpiry),
	}

	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}

	return &Established{Token: token, CSRFToken: csrfToken, ExpiresAt: sess.ExpiresAt}, nil
}

// Resolve maps a cookie token back to its session row and slides the
// inactivity window forward. Expired rows are swept on the way in, so a
// stale cookie resolves to common.ErrSessionExpired.
func (s *Service) Resolve(ctx context.Context, token string) (*models.Session, error) {
	now := s.now()

	if err := s.repo.DeleteExpired(ctx, now); err != nil {
		// The sweep is housekeeping; a failure must not block the lookup.
		s.logger.Warn(ctx, "expired session sweep failed", "error", err.Error())
	}

	sess, err := s.repo.GetByTokenHash(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrSessionExpired
		}
		return nil, err
	}

	if sess.Expired(now) {
		_ = s.repo.Delete(ctx, sess.TokenHash)
		return nil, common.ErrSessionExpired
	}

	sess.ExpiresAt = now.Add(s.idleExpiry)
	if err := s.repo.UpdateExpiry(ctx, sess.TokenHash, sess.ExpiresAt); err != nil {
		return nil, err
	}

	return sess, nil
}

// Destroy removes the session for an explicit logout. Destroying an unknown
// token is not an error.
func (s *Service) Destroy(ctx context.Context, token string) error {
	return s.repo.Delete(ctx, hashToken(token))
}
