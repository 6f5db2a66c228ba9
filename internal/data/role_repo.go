package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/meridian/rolegate/internal/data/pgxutil"
	apperrors "github.com/meridian/rolegate/internal/errors"
)

// RoleRepo provides database operations for role memberships.
type RoleRepo struct {
	DB *sql.DB
}

// NewRoleRepo creates a new RoleRepo.
func NewRoleRepo(db *sql.DB) *RoleRepo {
	return &RoleRepo{DB: db}
}

// RoleNamesForUser joins user_roles to roles and returns the raw role names
// for the user. An empty result is valid; zero roles is not an error.
// The LEFT JOIN tolerates membership rows whose role row has gone missing —
// those yield NULLs and are skipped rather than failing the lookup.
func (r *RoleRepo) RoleNamesForUser(ctx context.Context, userID string) ([]string, error) {
	var names []string
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT r.name
			FROM user_roles ur
			LEFT JOIN roles r ON r.id = ur.role_id
			WHERE ur.user_id = $1`, userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		nullable, err := pgx.CollectRows(rows, pgx.RowTo[*string])
		if err != nil {
			return err
		}
		names = make([]string, 0, len(nullable))
		for _, n := range nullable {
			if n == nil {
				continue
			}
			names = append(names, *n)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("get role names for user: %w", apperrors.MapDBError(err))
	}
	return names, nil
}

// Grant assigns a named role to a user, creating the role row on first use.
// Duplicate grants are a no-op.
func (r *RoleRepo) Grant(ctx context.Context, userID, roleName string) error {
	if err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		var roleID string
		err := tx.QueryRow(ctx, `
			INSERT INTO roles (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`, roleName).Scan(&roleID)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, userID, roleID)
		return err
	}); err != nil {
		return fmt.Errorf("grant role: %w", apperrors.MapDBError(err))
	}
	return nil
}
