package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/common"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/dbx"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, sess *models.Session) error {

	query :=
		`INSERT INTO sessions (token_hash, user_id, csrf_token, created_at, expires_at)
         VALUES ($1, $2, $3, $4, $5)
		 `

	_, err := r.db.ExecContext(ctx, query,
		sess.TokenHash, sess.UserID, sess.CSRFToken, sess.CreatedAt, sess.ExpiresAt)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	query :=
		`SELECT token_hash, user_id, csrf_token, created_at, expires_at FROM sessions
		 WHERE token_hash = $1
		 `

	sess := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(
		&sess.TokenHash, &sess.UserID, &sess.CSRFToken, &sess.CreatedAt, &sess.ExpiresAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return sess, nil
}

func (r *PostgresRepository) UpdateExpiry(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	query :=
		`UPDATE sessions SET expires_at = $2
		 WHERE token_hash = $1
		 `

	_, err := r.db.ExecContext(ctx, query, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, tokenHash string) error {
	query := `DELETE FROM sessions WHERE token_hash = $1`

	_, err := r.db.ExecContext(ctx, query, tokenHash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) error {
	query := `DELETE FROM sessions WHERE expires_at < $1`

	_, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
