// Package dbtest opens migrated in-memory SQLite databases for service tests.
package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/bunx"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/models"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/migrations"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Open returns an in-memory database with every migration applied.
func Open(t testing.TB) *bun.DB {
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

// SeedUser inserts a user with a profile carrying role.
func SeedUser(t testing.TB, db *bun.DB, email, role string) *models.User {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	user := &models.User{ID: bunx.NewUUIDv7(), Email: email, CreatedAt: now, UpdatedAt: now}
	profile := &models.Profile{
		UserID:     user.ID,
		Role:       role,
		FullName:   email,
		Attributes: models.JSONMap{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(user).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(profile).Exec(ctx)
		return err
	})
	require.NoError(t, err)
	return user
}
