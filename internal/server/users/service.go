// Package users implements local-account operations: registration and
// credential login for the bearer-token path, and profile reads/updates with
// field-level encryption of email and bio.
package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"time"

	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/common"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/cryptox"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/logging"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/auth"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/config"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/models"
	usersrepo "github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/repositories/users"
	"github.com/google/uuid"
)

const maxBioLength = 500

var screenNameRe = regexp.MustCompile(`^[A-Za-z0-9]{3,50}$`)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the structured list of field errors returned for a
// rejected profile update. Nothing is persisted when it is non-empty.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(v))
}

// ProfileUpdate is the mutable profile subset submitted by the account owner.
type ProfileUpdate struct {
	ScreenName string
	Email      string
	Bio        string
}

// Profile is the decrypted view rendered on the dashboards. Absent values
// are empty strings, never an error.
type Profile struct {
	Username   string
	Role       models.Role
	ScreenName string
	Email      string
	Bio        string
}

type Service struct {
	repo          usersrepo.Repository
	cipher        *cryptox.FieldCipher
	jwtSecret     []byte
	tokenValidity time.Duration
	logger        logging.Logger
}

func NewService(repo usersrepo.Repository, cipher *cryptox.FieldCipher, cfg *config.Config, logger logging.Logger) *Service {
	return &Service{
		repo:          repo,
		cipher:        cipher,
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidityDuration,
		logger:        logger.With("module", "users"),
	}
}

// Register creates a local account with a freshly salted password hash.
// The optional role defaults to the regular user role.
func (s *Service) Register(ctx context.Context, username, password string, role models.Role) (*models.User, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleSuperUser {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Create(ctx, &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Login verifies local credentials and issues a signed bearer token valid
// for the configured window. Unknown usernames surface as
// common.ErrNotFound, bad passwords as common.ErrUnauthorized.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrNotFound
		}
		return "", common.ErrInternal
	}

	if !cryptox.VerifyPassword(user.PasswordHash, password) {
		return "", common.ErrUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, user.Role, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return "", common.ErrInternal
	}

	return token, nil
}

// ValidateProfile checks a profile update without touching storage.
func ValidateProfile(in ProfileUpdate) ValidationErrors {
	var errs ValidationErrors

	if !screenNameRe.MatchString(in.ScreenName) {
		errs = append(errs, FieldError{
			Field:   "screenName",
			Message: "Screen name must be 3-50 characters and can only contain letters and numbers",
		})
	}

	if _, err := mail.ParseAddress(in.Email); err != nil {
		errs = append(errs, FieldError{Field: "email", Message: "Invalid email format"})
	}

	if len([]rune(in.Bio)) > maxBioLength {
		errs = append(errs, FieldError{Field: "bio", Message: "Bio must not exceed 500 characters"})
	}

	return errs
}

// UpdateProfile validates and persists the account's own profile fields.
// Email and bio are encrypted before they are written; on any validation
// failure nothing is mutated.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) error {
	if errs := ValidateProfile(in); len(errs) > 0 {
		return errs
	}

	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return err
	}

	email, err := s.cipher.Encrypt(in.Email)
	if err != nil {
		return common.ErrInternal
	}

	bio := ""
	if in.Bio != "" {
		bio, err = s.cipher.Encrypt(in.Bio)
		if err != nil {
			return common.ErrInternal
		}
	}

	return s.repo.UpdateProfile(ctx, userID, in.ScreenName, email, bio)
}

// ProfileView decrypts the sensitive fields of an account for display.
func (s *Service) ProfileView(user *models.User) (*Profile, error) {
	email, err := s.cipher.Decrypt(user.Email)
	if err != nil {
		return nil, err
	}
	bio, err := s.cipher.Decrypt(user.Bio)
	if err != nil {
		return nil, err
	}

	return &Profile{
		Username:   user.Username,
		Role:       user.Role,
		ScreenName: user.ScreenName,
		Email:      email,
		Bio:        bio,
	}, nil
}

// GetByID loads an account record.
func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}
