// Package migrations holds the bun schema migrations. Each file registers
// itself with Migrations from init.
package migrations

import "github.com/uptrace/bun/migrate"

// Migrations is the registry consumed by migrate.NewMigrator.
var Migrations = migrate.NewMigrations()
