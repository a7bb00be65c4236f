package migrations

import (
	"context"
	"fmt"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20260901000000, down_20260901000000)
}

type tableSpec struct {
	name        string
	model       any
	foreignKeys []string
}

var initTables = []tableSpec{
	{name: "users", model: (*models.User)(nil)},
	{name: "profiles", model: (*models.Profile)(nil), foreignKeys: []string{
		`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`,
	}},
	{name: "sessions", model: (*models.Session)(nil), foreignKeys: []string{
		`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`,
	}},
	{name: "opportunities", model: (*models.Opportunity)(nil), foreignKeys: []string{
		`("partner_id") REFERENCES "users" ("id") ON DELETE CASCADE`,
	}},
	{name: "applications", model: (*models.Application)(nil), foreignKeys: []string{
		`("opportunity_id") REFERENCES "opportunities" ("id") ON DELETE CASCADE`,
		`("applicant_id") REFERENCES "users" ("id") ON DELETE CASCADE`,
	}},
	{name: "mentorship_assignments", model: (*models.MentorshipAssignment)(nil), foreignKeys: []string{
		`("mentor_id") REFERENCES "users" ("id") ON DELETE CASCADE`,
		`("mentee_id") REFERENCES "users" ("id") ON DELETE CASCADE`,
	}},
}

type indexSpec struct {
	name    string
	model   any
	columns []string
	unique  bool
}

var initIndexes = []indexSpec{
	{name: "idx_profiles_role", model: (*models.Profile)(nil), columns: []string{"role"}},
	{name: "idx_sessions_user_id", model: (*models.Session)(nil), columns: []string{"user_id"}},
	{name: "idx_sessions_expires_at", model: (*models.Session)(nil), columns: []string{"expires_at"}},
	{name: "idx_opportunities_partner_id", model: (*models.Opportunity)(nil), columns: []string{"partner_id"}},
	{name: "idx_applications_applicant_id", model: (*models.Application)(nil), columns: []string{"applicant_id"}},
	{name: "idx_applications_opportunity_applicant", model: (*models.Application)(nil), columns: []string{"opportunity_id", "applicant_id"}, unique: true},
	{name: "idx_mentorship_mentor_id", model: (*models.MentorshipAssignment)(nil), columns: []string{"mentor_id"}},
	{name: "idx_mentorship_pair", model: (*models.MentorshipAssignment)(nil), columns: []string{"mentor_id", "mentee_id"}, unique: true},
}

// up_20260901000000 creates the full schema
func up_20260901000000(ctx context.Context, db *bun.DB) error {
	for _, tbl := range initTables {
		fmt.Printf(" [up] creating %s table...", tbl.name)
		q := db.NewCreateTable().Model(tbl.model).IfNotExists()
		for _, fk := range tbl.foreignKeys {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create %s table: %w", tbl.name, err)
		}
		fmt.Println(" OK")
	}

	for _, idx := range initIndexes {
		q := db.NewCreateIndex().Model(idx.model).Index(idx.name).Column(idx.columns...).IfNotExists()
		if idx.unique {
			q = q.Unique()
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return addRoleCheck(ctx, db, profileRoles)
}

// down_20260901000000 drops the schema in reverse dependency order
func down_20260901000000(ctx context.Context, db *bun.DB) error {
	for i := len(initTables) - 1; i >= 0; i-- {
		tbl := initTables[i]
		fmt.Printf(" [down] dropping %s table...", tbl.name)
		if _, err := db.NewDropTable().Model(tbl.model).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop %s table: %w", tbl.name, err)
		}
		fmt.Println(" OK")
	}
	return nil
}
