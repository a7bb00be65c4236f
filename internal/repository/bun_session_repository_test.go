package repository

import (
	"context"
	"testing"
	"time"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/bunx"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBunSessionRepository_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	users := NewBunUserRepository(db)
	sessions := NewBunSessionRepository(db)
	ctx := context.Background()

	user := seedUser(t, users, "s@example.org", "applicant")
	now := time.Now().UTC()

	live := &models.Session{ID: bunx.NewUUIDv7(), UserID: user.ID, TokenHash: "hash-live", ExpiresAt: now.Add(time.Hour)}
	stale := &models.Session{ID: bunx.NewUUIDv7(), UserID: user.ID, TokenHash: "hash-stale", ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, sessions.Create(ctx, live))
	require.NoError(t, sessions.Create(ctx, stale))

	got, err := sessions.GetByTokenHash(ctx, "hash-live")
	require.NoError(t, err)
	assert.Equal(t, live.ID, got.ID)
	assert.False(t, got.Revoked)

	_, err = sessions.GetByTokenHash(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	newExpiry := now.Add(2 * time.Hour)
	require.NoError(t, sessions.Touch(ctx, live.ID, now, newExpiry))
	got, err = sessions.GetByTokenHash(ctx, "hash-live")
	require.NoError(t, err)
	assert.WithinDuration(t, newExpiry, got.ExpiresAt, time.Second)

	list, err := sessions.ListByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	n, err := sessions.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	revoked, err := sessions.RevokeByTokenHash(ctx, "hash-live")
	require.NoError(t, err)
	assert.True(t, revoked.Revoked)
	assert.Equal(t, user.ID, revoked.UserID)

	_, err = sessions.RevokeByTokenHash(ctx, "hash-live")
	assert.ErrorIs(t, err, ErrNotFound, "second revoke finds nothing live")

	n, err = sessions.RevokeByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, n, "already revoked sessions are not counted")
}
