package repository

import (
	"context"
	"testing"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/bunx"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/models"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/migrations"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// setupTestDB opens an in-memory SQLite database with the real schema applied.
func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()
	ctx := context.Background()

	db, err := bunx.NewDB(ctx, "file::memory:", bunx.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = bunx.Close(db) })

	migrator := migrate.NewMigrator(db, migrations.Migrations)
	require.NoError(t, migrator.Init(ctx))
	_, err = migrator.Migrate(ctx)
	require.NoError(t, err)
	return db
}

func seedUser(t *testing.T, repo *BunUserRepository, email, role string) *models.User {
	t.Helper()
	user := &models.User{ID: bunx.NewUUIDv7(), Email: email}
	profile := &models.Profile{Role: role, FullName: email}
	require.NoError(t, repo.CreateWithProfile(context.Background(), user, profile))
	return user
}
