package migrations

import (
	"context"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// profileRoles is the role set as of the init schema. Later migrations that
// add a role replace the constraint rather than edit this list.
var profileRoles = []string{"applicant", "mentor", "partner", "admin"}

// isPostgreSQL reports whether db talks to PostgreSQL. Migrations branch on
// it for constraints SQLite cannot add to an existing table.
func isPostgreSQL(db *bun.DB) bool {
	return db.Dialect().Name() == dialect.PG
}

// roleCheckSQL builds the profiles role constraint for roles.
func roleCheckSQL(roles []string) string {
	quoted := make([]string, len(roles))
	for i, r := range roles {
		quoted[i] = "'" + strings.ReplaceAll(r, "'", "''") + "'"
	}
	return fmt.Sprintf("ALTER TABLE profiles ADD CONSTRAINT profiles_role_check CHECK (role IN (%s))", strings.Join(quoted, ", "))
}

// addRoleCheck constrains profiles.role on PostgreSQL. On SQLite the
// services are the only guard.
func addRoleCheck(ctx context.Context, db *bun.DB, roles []string) error {
	if !isPostgreSQL(db) {
		return nil
	}
	if _, err := db.ExecContext(ctx, roleCheckSQL(roles)); err != nil {
		return fmt.Errorf("failed to add role check constraint: %w", err)
	}
	return nil
}
