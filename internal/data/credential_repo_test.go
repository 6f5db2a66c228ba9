package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian/rolegate/internal/testutil"
)

func TestCredentialRepo_SetAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewCredentialRepo(db)
	ctx := context.Background()

	id := testutil.SeedUser(t, db, "cred@example.com")

	require.NoError(t, repo.SetHash(ctx, id, "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA"))

	hash, err := repo.HashForUser(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	// Upsert replaces the hash
	require.NoError(t, repo.SetHash(ctx, id, "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$bmV3"))
	hash, err = repo.HashForUser(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, hash, "bmV3")
}

func TestCredentialRepo_HashForUser_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewCredentialRepo(db)

	id := testutil.SeedUser(t, db, "nocred@example.com")

	_, err := repo.HashForUser(context.Background(), id)
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}
