package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/bunx"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBunUserRepository_CreateWithProfile(t *testing.T) {
	db := setupTestDB(t)
	users := NewBunUserRepository(db)
	profiles := NewBunProfileRepository(db)
	ctx := context.Background()

	user := seedUser(t, users, "  Ada@Example.org ", "applicant")
	assert.Equal(t, "ada@example.org", user.Email)

	got, err := users.GetByEmail(ctx, "ADA@example.org")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.False(t, got.Disabled())

	role, err := profiles.GetRole(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "applicant", role)

	t.Run("duplicate email conflicts and rolls back", func(t *testing.T) {
		dup := &models.User{ID: bunx.NewUUIDv7(), Email: "ada@example.org"}
		err := users.CreateWithProfile(ctx, dup, &models.Profile{Role: "mentor"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrConflict), "got %v", err)

		_, err = profiles.GetRole(ctx, dup.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := users.GetByID(ctx, bunx.NewUUIDv7())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestBunUserRepository_SubjectAndDisable(t *testing.T) {
	db := setupTestDB(t)
	users := NewBunUserRepository(db)
	ctx := context.Background()

	user := seedUser(t, users, "grace@example.org", "mentor")

	require.NoError(t, users.LinkSubject(ctx, user.ID, "idp|42"))
	got, err := users.GetBySubject(ctx, "idp|42")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	require.NoError(t, users.UpdateLastLogin(ctx, user.ID, time.Now()))
	require.NoError(t, users.SetDisabled(ctx, user.ID, true))
	got, err = users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.Disabled())
	assert.NotNil(t, got.LastLoginAt)

	require.NoError(t, users.SetDisabled(ctx, user.ID, false))
	got, err = users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.Disabled())

	assert.ErrorIs(t, users.SetDisabled(ctx, bunx.NewUUIDv7(), true), ErrNotFound)
}
