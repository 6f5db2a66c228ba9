package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/meridian/rolegate/internal/data/pgxutil"
	apperrors "github.com/meridian/rolegate/internal/errors"
)

// CredentialRepo stores password hashes for the local identity provider.
// One row per user; the hash encodes its own algorithm parameters.
type CredentialRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewCredentialRepo creates a new CredentialRepo.
func NewCredentialRepo(db *sql.DB) *CredentialRepo {
	return &CredentialRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// HashForUser returns the stored password hash for the user.
func (r *CredentialRepo) HashForUser(ctx context.Context, userID string) (string, error) {
	var hash string
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx,
			`SELECT password_hash FROM user_credentials WHERE user_id = $1`,
			userID).Scan(&hash)
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrCredentialsNotFound
		}
		return "", fmt.Errorf("get credential hash: %w", apperrors.MapDBError(err))
	}
	return hash, nil
}

// SetHash upserts the password hash for the user.
func (r *CredentialRepo) SetHash(ctx context.Context, userID, hash string) error {
	now := r.timeProvider.Now().UTC()
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, `
			INSERT INTO user_credentials (user_id, password_hash, created_at, updated_at)
			VALUES ($1, $2, $3, $3)
			ON CONFLICT (user_id) DO UPDATE
			SET password_hash = EXCLUDED.password_hash, updated_at = EXCLUDED.updated_at`,
			userID, hash, now)
		return err
	}); err != nil {
		return fmt.Errorf("set credential hash: %w", apperrors.MapDBError(err))
	}
	return nil
}
