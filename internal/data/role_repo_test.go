package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian/rolegate/internal/testutil"
)

func TestRoleRepo_RoleNamesForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewRoleRepo(db)
	ctx := context.Background()

	id := testutil.SeedUser(t, db, "roles@example.com")
	testutil.SeedRole(t, db, id, "Admin")
	testutil.SeedRole(t, db, id, "editor")

	names, err := repo.RoleNamesForUser(ctx, id)
	require.NoError(t, err)
	// Raw names come back as stored; normalization is the resolver's job.
	assert.ElementsMatch(t, []string{"Admin", "editor"}, names)
}

func TestRoleRepo_RoleNamesForUser_ZeroRoles(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewRoleRepo(db)

	id := testutil.SeedUser(t, db, "noroles@example.com")

	names, err := repo.RoleNamesForUser(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestRoleRepo_Grant_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewRoleRepo(db)
	ctx := context.Background()

	id := testutil.SeedUser(t, db, "grant@example.com")

	require.NoError(t, repo.Grant(ctx, id, "viewer"))
	require.NoError(t, repo.Grant(ctx, id, "viewer"))

	names, err := repo.RoleNamesForUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"viewer"}, names)
}
