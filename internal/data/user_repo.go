package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/meridian/rolegate/internal/data/pgxutil"
	domainauth "github.com/meridian/rolegate/internal/domain/auth"
	apperrors "github.com/meridian/rolegate/internal/errors"
)

// UserRepo provides database operations for the users table. The resolver
// only reads from it; Create exists for registration.
type UserRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewUserRepo creates a new UserRepo with the real time provider.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewUserRepoWithTimeProvider creates a new UserRepo with a custom time provider (useful for tests).
func NewUserRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *UserRepo {
	return &UserRepo{DB: db, timeProvider: tp}
}

const userSelectColumns = `id, email, phone_number, status, created_at, updated_at`

// ProfileByID fetches exactly one profile row by primary key.
// Zero rows map to ErrUserNotFound.
func (r *UserRepo) ProfileByID(ctx context.Context, id string) (domainauth.Profile, error) {
	var out domainauth.Profile
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+userSelectColumns+` FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.Profile])
		return err
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainauth.Profile{}, ErrUserNotFound
		}
		return domainauth.Profile{}, fmt.Errorf("get profile by id: %w", apperrors.MapDBError(err))
	}
	return out, nil
}

// ProfileByEmail fetches a profile row by email. Emails compare
// case-insensitively because they are stored lower-cased.
func (r *UserRepo) ProfileByEmail(ctx context.Context, email string) (domainauth.Profile, error) {
	var out domainauth.Profile
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+userSelectColumns+` FROM users WHERE email = $1`,
			normalizeEmail(email))
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.Profile])
		return err
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainauth.Profile{}, ErrUserNotFound
		}
		return domainauth.Profile{}, fmt.Errorf("get profile by email: %w", apperrors.MapDBError(err))
	}
	return out, nil
}

// Create inserts a new user row and returns the stored profile.
func (r *UserRepo) Create(ctx context.Context, email string) (domainauth.Profile, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domainauth.Profile{}, apperrors.Validation("email is required")
	}

	now := r.timeProvider.Now().UTC()
	var out domainauth.Profile
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO users (email, status, created_at, updated_at)
			VALUES ($1, 'active', $2, $2)
			RETURNING `+userSelectColumns,
			email, now)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.Profile])
		return err
	}); err != nil {
		return domainauth.Profile{}, fmt.Errorf("create user: %w", apperrors.MapDBError(err))
	}
	return out, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
