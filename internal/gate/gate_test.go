package gate

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresStores(t *testing.T) {
	_, err := New(nil, &mockProfiles{})
	assert.Error(t, err)
	_, err = New(&mockSessions{}, nil)
	assert.Error(t, err)
}

func TestEvaluate_PublicPathsSkipLookups(t *testing.T) {
	g, sessions, _ := fixture()
	ctx := context.Background()

	for _, p := range []string{"/", "/auth/callback", "/api/auth/login", "/api/auth/decision", "/api/health"} {
		for _, tok := range []string{"", "garbage", "tok-admin"} {
			d := g.Evaluate(ctx, p, tok)
			assert.Equal(t, KindAllow, d.Kind, "%s with %q", p, tok)
		}
	}
	assert.Zero(t, sessions.lookups(), "public paths must not touch the session store")
}

func TestEvaluate_UnauthenticatedRedirectsToLogin(t *testing.T) {
	g, _, _ := fixture()
	ctx := context.Background()

	for _, p := range []string{"/dashboard", "/admin/dashboard", "/mentor", "/partner/x", "/api/applications", "/api/uploads"} {
		for _, tok := range []string{"", "garbage"} {
			d := g.Evaluate(ctx, p, tok)
			assert.Equal(t, KindRedirectLogin, d.Kind, "%s with %q", p, tok)
			assert.Equal(t, LoginURL(p), d.Location)
			assert.ErrorIs(t, d.Reason, ErrUnauthenticated)
		}
	}
}

func TestEvaluate_RoleMatrix(t *testing.T) {
	g, _, _ := fixture()
	ctx := context.Background()

	paths := map[string][]Role{
		"/admin/dashboard":          {RoleAdmin},
		"/api/admin/users":          {RoleAdmin},
		"/mentor/dashboard":         {RoleMentor, RoleAdmin},
		"/api/mentorship":           {RoleMentor, RoleAdmin},
		"/partner/dashboard":        {RolePartner, RoleAdmin},
		"/api/partners/profile":     {RolePartner, RoleAdmin},
		"/api/opportunities":        {RolePartner, RoleAdmin},
		"/dashboard":                {RoleApplicant, RoleMentor, RolePartner, RoleAdmin},
		"/api/applications/mine":    {RoleApplicant, RoleMentor, RolePartner, RoleAdmin},
		"/settings/notifications/x": {RoleApplicant, RoleMentor, RolePartner, RoleAdmin},
	}

	for p, permitted := range paths {
		allowed := make(map[Role]bool)
		for _, r := range permitted {
			allowed[r] = true
		}
		for _, role := range Roles {
			d := g.Evaluate(ctx, p, tokenFor(role))
			if allowed[role] {
				assert.Equal(t, KindAllow, d.Kind, "%s as %s", p, role)
				assert.Equal(t, role, d.Role)
				assert.Equal(t, "u-"+string(role), d.UserID)
				continue
			}
			assert.Equal(t, KindRedirectRoleHome, d.Kind, "%s as %s", p, role)
			assert.Equal(t, role.Home(), d.Location)
			assert.ErrorIs(t, d.Reason, ErrForbidden)
		}
	}
}

func TestEvaluate_ProfileMissingIsUnauthenticated(t *testing.T) {
	g, _, _ := fixture()

	d := g.Evaluate(context.Background(), "/dashboard", "tok-orphan")
	assert.Equal(t, KindRedirectLogin, d.Kind)
	assert.Equal(t, "/login?redirectTo=%2Fdashboard", d.Location)
	assert.ErrorIs(t, d.Reason, ErrProfileMissing)

	d = g.Evaluate(context.Background(), "/dashboard", "tok-bogus")
	assert.Equal(t, KindRedirectLogin, d.Kind, "unknown stored role fails closed")
}

func TestEvaluate_AuthOnlyPages(t *testing.T) {
	g, sessions, _ := fixture()
	ctx := context.Background()

	d := g.Evaluate(ctx, "/login", "")
	assert.Equal(t, KindAllow, d.Kind)
	assert.Zero(t, sessions.lookups())

	d = g.Evaluate(ctx, "/login", "tok-mentor")
	assert.Equal(t, KindRedirectRoleHome, d.Kind)
	assert.Equal(t, "/mentor/dashboard", d.Location)
	assert.NoError(t, d.Reason)

	d = g.Evaluate(ctx, "/register", "tok-admin")
	assert.Equal(t, "/admin/dashboard", d.Location)

	// a stale cookie must not lock anyone out of the login form
	d = g.Evaluate(ctx, "/login", "expired")
	assert.Equal(t, KindAllow, d.Kind)
	d = g.Evaluate(ctx, "/register", "tok-orphan")
	assert.Equal(t, KindAllow, d.Kind)
}

func TestEvaluate_FailClosed(t *testing.T) {
	t.Run("session store down", func(t *testing.T) {
		g, sessions, _ := fixture()
		sessions.err = errStoreDown

		d := g.Evaluate(context.Background(), "/dashboard", "tok-admin")
		assert.Equal(t, KindRedirectLogin, d.Kind)
	})

	t.Run("profile store down", func(t *testing.T) {
		g, _, profiles := fixture()
		profiles.err = errStoreDown

		d := g.Evaluate(context.Background(), "/admin", "tok-admin")
		assert.Equal(t, KindRedirectLogin, d.Kind)
		assert.ErrorIs(t, d.Reason, ErrProfileMissing)
	})

	t.Run("deadline exceeded", func(t *testing.T) {
		g, _, _ := fixture()
		ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()
		<-ctx.Done()

		d := g.Evaluate(ctx, "/dashboard", "tok-applicant")
		assert.Equal(t, KindRedirectLogin, d.Kind)
	})
}

func TestEvaluate_NormalizesPath(t *testing.T) {
	g, _, _ := fixture()

	d := g.Evaluate(context.Background(), "/dashboard/../admin/users", "tok-applicant")
	assert.Equal(t, KindRedirectRoleHome, d.Kind)
	assert.Equal(t, "/admin/users", d.Path)
	assert.Equal(t, AreaAdmin, d.Area)
}

func TestEvaluate_RecordsDecisions(t *testing.T) {
	sessions := &mockSessions{tokens: map[string]string{"t": "u"}}
	profiles := &mockProfiles{roles: map[string]Role{"u": RoleApplicant}}
	rec := &mockRecorder{}
	g, err := New(sessions, profiles, WithRecorder(rec))
	require.NoError(t, err)

	g.Evaluate(context.Background(), "/dashboard", "t")
	g.Evaluate(context.Background(), "/admin", "t")

	require.Len(t, rec.seen, 2)
	assert.Equal(t, KindAllow, rec.seen[0].d.Kind)
	assert.Equal(t, KindRedirectRoleHome, rec.seen[1].d.Kind)
}

func TestIdentify(t *testing.T) {
	g, _, _ := fixture()
	ctx := context.Background()

	p, err := g.Identify(ctx, "tok-partner")
	require.NoError(t, err)
	assert.Equal(t, Principal{UserID: "u-partner", Role: RolePartner}, p)

	_, err = g.Identify(ctx, "")
	assert.True(t, errors.Is(err, ErrUnauthenticated))

	_, err = g.Identify(ctx, "nope")
	assert.True(t, IsUnauthenticated(err))

	_, err = g.Identify(ctx, "tok-orphan")
	assert.ErrorIs(t, err, ErrProfileMissing)
	assert.True(t, IsUnauthenticated(err))
}

func TestAuthorize(t *testing.T) {
	g, _, _ := fixture()

	assert.True(t, g.Authorize("/api/opportunities", Principal{UserID: "a", Role: RoleAdmin}).Allowed())
	assert.False(t, g.Authorize("/api/opportunities", Principal{UserID: "m", Role: RoleMentor}).Allowed())
	assert.Equal(t, KindRedirectRoleHome, g.Authorize("/login", Principal{UserID: "m", Role: RoleMentor}).Kind)
	assert.Equal(t, KindRedirectLogin, g.Authorize("/dashboard", Principal{UserID: "x", Role: Role("")}).Kind)
}

func TestDecision_JSON(t *testing.T) {
	g, _, _ := fixture()
	d := g.Evaluate(context.Background(), "/admin", "tok-mentor")

	raw, err := json.Marshal(d)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "redirect_role_home", out["decision"])
	assert.Equal(t, "/mentor/dashboard", out["redirect"])
	assert.Equal(t, "mentor", out["role"])
	assert.Equal(t, "forbidden", out["reason"])
	assert.Equal(t, "admin", out["area"])
}

func TestLoginURL(t *testing.T) {
	assert.Equal(t, "/login", LoginURL("/"))
	assert.Equal(t, "/login", LoginURL(""))
	assert.Equal(t, "/login?redirectTo=%2Fmentor%2Fsessions", LoginURL("/mentor/sessions"))
}
