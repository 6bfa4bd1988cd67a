package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/common"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/dbx"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// nullable maps "" to NULL so the partial unique indexes on google_id and
// username only apply to values that are actually present.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (id, google_id, username, password_hash, role, screen_name, email, bio, login_count)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.ID, nullable(user.GoogleID), nullable(user.Username), user.PasswordHash,
		user.Role, user.ScreenName, user.Email, user.Bio, user.LoginCount,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getBy(ctx, "id = $1", id)
}

func (r *PostgresRepository) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return r.getBy(ctx, "google_id = $1", googleID)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getBy(ctx, "username = $1", username)
}

func (r *PostgresRepository) getBy(ctx context.Context, where string, arg any) (*models.User, error) {
	query :=
		`SELECT id, google_id, username, password_hash, role, screen_name, email, bio, login_count, created_at, updated_at
		 FROM users
		 WHERE ` + where

	user := &models.User{}
	var googleID, username sql.NullString

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &googleID, &username, &user.PasswordHash, &user.Role,
		&user.ScreenName, &user.Email, &user.Bio, &user.LoginCount,
		&user.CreatedAt, &user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.GoogleID = googleID.String
	user.Username = username.String

	return user, nil
}

func (r *PostgresRepository) RecordLogin(ctx context.Context, id string, loginCount int64, role models.Role) error {
	query :=
		`UPDATE users SET login_count = $2, role = $3, updated_at = now()
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, loginCount, role)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return requireRowAffected(res)
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id, screenName, email, bio string) error {
	query :=
		`UPDATE users SET screen_name = $2, email = $3, bio = $4, updated_at = now()
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, screenName, email, bio)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return requireRowAffected(res)
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
