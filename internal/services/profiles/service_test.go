package profiles

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/dbtest"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/gate"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []gate.Event
}

func (p *recordingPublisher) Publish(ev gate.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) all() []gate.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]gate.Event(nil), p.events...)
}

func setup(t *testing.T, cache CacheOptions) (*Service, *bun.DB, *recordingPublisher) {
	t.Helper()
	db := dbtest.Open(t)
	pub := &recordingPublisher{}
	svc := NewService(repository.NewBunProfileRepository(db), pub, cache, nil)
	return svc, db, pub
}

func TestGetProfileRole(t *testing.T) {
	svc, db, _ := setup(t, CacheOptions{})
	ctx := context.Background()

	mentor := dbtest.SeedUser(t, db, "mentor@example.org", "mentor")
	role, err := svc.GetProfileRole(ctx, mentor.ID)
	require.NoError(t, err)
	assert.Equal(t, gate.RoleMentor, role)

	_, err = svc.GetProfileRole(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetProfileRole_UnknownStoredRole(t *testing.T) {
	svc, db, _ := setup(t, CacheOptions{})
	u := dbtest.SeedUser(t, db, "odd@example.org", "superuser")

	_, err := svc.GetProfileRole(context.Background(), u.ID)
	assert.ErrorIs(t, err, gate.ErrProfileMissing)
}

func TestGetProfileRole_Cached(t *testing.T) {
	svc, db, _ := setup(t, CacheOptions{Size: 16, TTL: time.Minute})
	ctx := context.Background()
	u := dbtest.SeedUser(t, db, "a@example.org", "applicant")

	role, err := svc.GetProfileRole(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, gate.RoleApplicant, role)

	// change behind the cache's back
	_, err = db.NewUpdate().Table("profiles").Set("role = ?", "partner").Where("user_id = ?", u.ID).Exec(ctx)
	require.NoError(t, err)

	role, err = svc.GetProfileRole(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, gate.RoleApplicant, role, "served from cache")

	svc.Invalidate(u.ID)
	role, err = svc.GetProfileRole(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, gate.RolePartner, role)
}

func TestUpdateRole(t *testing.T) {
	ctx := context.Background()

	t.Run("admin promotes applicant", func(t *testing.T) {
		svc, db, pub := setup(t, CacheOptions{Size: 16, TTL: time.Minute})
		admin := dbtest.SeedUser(t, db, "admin@example.org", "admin")
		target := dbtest.SeedUser(t, db, "app@example.org", "applicant")

		// warm the cache so invalidation is observable
		_, err := svc.GetProfileRole(ctx, target.ID)
		require.NoError(t, err)

		p, err := svc.UpdateRole(ctx, admin.ID, target.ID, "mentor")
		require.NoError(t, err)
		assert.Equal(t, "mentor", p.Role)

		role, err := svc.GetProfileRole(ctx, target.ID)
		require.NoError(t, err)
		assert.Equal(t, gate.RoleMentor, role)

		events := pub.all()
		require.Len(t, events, 1)
		assert.Equal(t, gate.EventRoleChanged, events[0].Kind)
		assert.Equal(t, target.ID, events[0].UserID)
		assert.Equal(t, gate.RoleMentor, events[0].Role)
	})

	t.Run("same role publishes nothing", func(t *testing.T) {
		svc, db, pub := setup(t, CacheOptions{})
		admin := dbtest.SeedUser(t, db, "admin@example.org", "admin")
		target := dbtest.SeedUser(t, db, "m@example.org", "mentor")

		_, err := svc.UpdateRole(ctx, admin.ID, target.ID, "mentor")
		require.NoError(t, err)
		assert.Empty(t, pub.all())
	})

	t.Run("non admin forbidden", func(t *testing.T) {
		svc, db, _ := setup(t, CacheOptions{})
		partner := dbtest.SeedUser(t, db, "p@example.org", "partner")
		target := dbtest.SeedUser(t, db, "a@example.org", "applicant")

		_, err := svc.UpdateRole(ctx, partner.ID, target.ID, "admin")
		assert.ErrorIs(t, err, gate.ErrForbidden)
	})

	t.Run("admin cannot demote self", func(t *testing.T) {
		svc, db, pub := setup(t, CacheOptions{})
		admin := dbtest.SeedUser(t, db, "admin@example.org", "admin")

		_, err := svc.UpdateRole(ctx, admin.ID, admin.ID, "applicant")
		assert.ErrorIs(t, err, gate.ErrInvalidOperation)

		role, err := svc.GetProfileRole(ctx, admin.ID)
		require.NoError(t, err)
		assert.Equal(t, gate.RoleAdmin, role)
		assert.Empty(t, pub.all())
	})

	t.Run("admin to admin on self is a noop", func(t *testing.T) {
		svc, db, pub := setup(t, CacheOptions{})
		admin := dbtest.SeedUser(t, db, "admin@example.org", "admin")

		p, err := svc.UpdateRole(ctx, admin.ID, admin.ID, "admin")
		require.NoError(t, err)
		assert.Equal(t, "admin", p.Role)
		assert.Empty(t, pub.all())
	})

	t.Run("invalid role", func(t *testing.T) {
		svc, db, _ := setup(t, CacheOptions{})
		admin := dbtest.SeedUser(t, db, "admin@example.org", "admin")
		target := dbtest.SeedUser(t, db, "a@example.org", "applicant")

		_, err := svc.UpdateRole(ctx, admin.ID, target.ID, "Owner")
		assert.ErrorIs(t, err, gate.ErrInvalidRole)
	})

	t.Run("unknown target", func(t *testing.T) {
		svc, db, _ := setup(t, CacheOptions{})
		admin := dbtest.SeedUser(t, db, "admin@example.org", "admin")

		_, err := svc.UpdateRole(ctx, admin.ID, "00000000-0000-0000-0000-000000000001", "mentor")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestUpdateDetailsAndOrganization(t *testing.T) {
	svc, db, _ := setup(t, CacheOptions{})
	ctx := context.Background()
	partner := dbtest.SeedUser(t, db, "p@example.org", "partner")

	p, err := svc.UpdateDetails(ctx, partner.ID, "  Acme Partner ", map[string]any{"phone": "123"})
	require.NoError(t, err)
	assert.Equal(t, "Acme Partner", p.FullName)
	assert.Equal(t, "123", p.Attributes["phone"])

	_, err = svc.SetOrganization(ctx, partner.ID, Organization{Name: " "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	org, err := svc.SetOrganization(ctx, partner.ID, Organization{Name: "Acme", Website: "https://acme.test"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", org.Name)

	got, err := svc.Organization(ctx, partner.ID)
	require.NoError(t, err)
	assert.Equal(t, Organization{Name: "Acme", Website: "https://acme.test"}, got)

	p, err = svc.GetProfile(ctx, partner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Partner", p.FullName, "name kept when blank")
	assert.Equal(t, "123", p.Attributes["phone"], "other attributes preserved")

	p, err = svc.UpdateDetails(ctx, partner.ID, "", map[string]any{"phone": nil})
	require.NoError(t, err)
	assert.NotContains(t, p.Attributes, "phone")
}

func TestListProfiles(t *testing.T) {
	svc, db, _ := setup(t, CacheOptions{})
	ctx := context.Background()
	dbtest.SeedUser(t, db, "a@example.org", "applicant")
	dbtest.SeedUser(t, db, "b@example.org", "applicant")
	dbtest.SeedUser(t, db, "m@example.org", "mentor")

	all, err := svc.ListProfiles(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	applicants, err := svc.ListProfiles(ctx, "applicant")
	require.NoError(t, err)
	assert.Len(t, applicants, 2)

	_, err = svc.ListProfiles(ctx, "nobody")
	assert.ErrorIs(t, err, gate.ErrInvalidRole)
}

func TestAssignRole(t *testing.T) {
	svc, db, pub := setup(t, CacheOptions{})
	ctx := context.Background()
	u := dbtest.SeedUser(t, db, "first@example.org", "applicant")

	require.NoError(t, svc.AssignRole(ctx, u.ID, gate.RoleAdmin))
	role, err := svc.GetProfileRole(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, gate.RoleAdmin, role)
	assert.Len(t, pub.all(), 1)

	assert.ErrorIs(t, svc.AssignRole(ctx, u.ID, "root"), gate.ErrInvalidRole)
}
