// Package users holds operator commands for managing portal accounts
// directly against the database.
package users

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/config"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/bunx"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/gate"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/repository"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/services/iam"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/services/profiles"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/sessionstore"
)

// UsersCmd is the parent command for user management operations
var UsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage portal users",
	Long:  `Commands for creating users and assigning roles directly from the server host.`,
}

var (
	cfg    *config.Config
	logger *slog.Logger
)

// Configure hands the loaded configuration to the subcommands.
func Configure(c *config.Config, l *slog.Logger) {
	cfg = c
	logger = l
}

type services struct {
	accounts *iam.Service
	profiles *profiles.Service
}

// withServices opens the database and runs fn with the account services.
// Role changes made here reach running servers once their role cache
// entries expire.
func withServices(ctx context.Context, fn func(ctx context.Context, s services) error) error {
	db, err := bunx.NewDB(ctx, cfg.DatabaseURL, bunx.Options{MaxOpenConns: 2})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() { _ = bunx.Close(db) }()

	users := repository.NewBunUserRepository(db)
	profileService := profiles.NewService(repository.NewBunProfileRepository(db), gate.NopPublisher{}, profiles.CacheOptions{}, logger)
	store := sessionstore.NewDatabaseStore(repository.NewBunSessionRepository(db), users, cfg.Session.Duration)
	return fn(ctx, services{
		accounts: iam.NewService(users, profileService, store, gate.NopPublisher{}, logger),
		profiles: profileService,
	})
}

func init() {
	UsersCmd.AddCommand(createCmd)
	UsersCmd.AddCommand(setRoleCmd)
}
