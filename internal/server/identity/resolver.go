// Package identity resolves an external-provider identity (Google subject id
// plus display name) to a local account, creating the account on first login
// and applying the login-count role promotion policy on every subsequent one.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/common"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/logging"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/models"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/repositories/users"
	"github.com/google/uuid"
)

// promotionThreshold is the login count a returning account must exceed to
// gain the superuser role.
const promotionThreshold = 3

// PromoteRole is the pure promotion policy: once the counter passes the
// threshold the account becomes a superuser. Roles never move down.
func PromoteRole(loginCount int64, current models.Role) models.Role {
	if current == models.RoleSuperUser {
		return models.RoleSuperUser
	}
	if loginCount > promotionThreshold {
		return models.RoleSuperUser
	}
	return current
}

type Service struct {
	repo   users.Repository
	logger logging.Logger
}

func NewService(repo users.Repository, logger logging.Logger) *Service {
	return &Service{repo: repo, logger: logger.With("module", "identity")}
}

// Resolve finds or creates the account for the given external subject id and
// records the login. Any persistence failure is reported as
// common.ErrIdentityResolution and no login is considered to have happened.
func (s *Service) Resolve(ctx context.Context, googleID, displayName string) (*models.User, error) {
	if googleID == "" {
		return nil, fmt.Errorf("%w: empty subject id", common.ErrIdentityResolution)
	}

	user, err := s.repo.GetByGoogleID(ctx, googleID)
	if errors.Is(err, common.ErrNotFound) {
		created, createErr := s.create(ctx, googleID, displayName)
		if createErr == nil {
			s.logger.Info(ctx, "created account for new subject", "user_id", created.ID)
			return created, nil
		}
		if !errors.Is(createErr, common.ErrConflict) {
			return nil, fmt.Errorf("%w: %v", common.ErrIdentityResolution, createErr)
		}
		// Lost the race against a concurrent first login; the row exists now.
		user, err = s.repo.GetByGoogleID(ctx, googleID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrIdentityResolution, err)
	}

	user.LoginCount++
	user.Role = PromoteRole(user.LoginCount, user.Role)

	if err := s.repo.RecordLogin(ctx, user.ID, user.LoginCount, user.Role); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrIdentityResolution, err)
	}

	return user, nil
}

func (s *Service) create(ctx context.Context, googleID, displayName string) (*models.User, error) {
	return s.repo.Create(ctx, &models.User{
		ID:         uuid.NewString(),
		GoogleID:   googleID,
		Username:   displayName,
		Role:       models.RoleUser,
		LoginCount: 1,
	})
}
