package gate

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// Area groups paths that share one access rule.
type Area string

const (
	// AreaPublic is reachable without a session.
	AreaPublic Area = "public"
	// AreaAuthOnly holds the login/register pages: public without a session,
	// redirected to the role home with one.
	AreaAuthOnly Area = "auth_only"
	AreaAdmin    Area = "admin"
	AreaMentor   Area = "mentor"
	AreaPartner  Area = "partner"
	// AreaAuthenticated is the fallback: any valid role.
	AreaAuthenticated Area = "authenticated"
)

// LoginPath is where unauthenticated callers are sent.
const LoginPath = "/login"

// Route maps a path prefix to an area. An Exact route matches only the
// prefix itself, never its children.
type Route struct {
	Prefix string
	Area   Area
	Exact  bool
}

// DefaultRoutes is the portal's route classification.
func DefaultRoutes() []Route {
	return []Route{
		{Prefix: "/", Area: AreaPublic, Exact: true},
		{Prefix: "/login", Area: AreaAuthOnly},
		{Prefix: "/register", Area: AreaAuthOnly},
		{Prefix: "/auth/callback", Area: AreaPublic},
		{Prefix: "/api/auth", Area: AreaPublic},
		{Prefix: "/api/health", Area: AreaPublic},

		{Prefix: "/admin", Area: AreaAdmin},
		{Prefix: "/api/admin", Area: AreaAdmin},

		{Prefix: "/mentor", Area: AreaMentor},
		{Prefix: "/api/mentorship", Area: AreaMentor},

		{Prefix: "/partner", Area: AreaPartner},
		{Prefix: "/api/partners", Area: AreaPartner},
		{Prefix: "/api/opportunities", Area: AreaPartner},
	}
}

// RouteTable classifies paths by longest matching prefix.
// It is immutable after construction.
type RouteTable struct {
	routes []Route
}

// NewRouteTable validates routes and orders them for longest-prefix matching.
func NewRouteTable(routes []Route) (*RouteTable, error) {
	seen := make(map[string]bool, len(routes))
	out := make([]Route, 0, len(routes))
	for _, r := range routes {
		if !strings.HasPrefix(r.Prefix, "/") {
			return nil, fmt.Errorf("route prefix %q must start with /", r.Prefix)
		}
		clean := NormalizePath(r.Prefix)
		if clean != r.Prefix {
			return nil, fmt.Errorf("route prefix %q is not normalized (want %q)", r.Prefix, clean)
		}
		switch r.Area {
		case AreaPublic, AreaAuthOnly, AreaAdmin, AreaMentor, AreaPartner, AreaAuthenticated:
		default:
			return nil, fmt.Errorf("route %q: unknown area %q", r.Prefix, r.Area)
		}
		key := fmt.Sprintf("%s|%t", r.Prefix, r.Exact)
		if seen[key] {
			return nil, fmt.Errorf("duplicate route prefix %q", r.Prefix)
		}
		seen[key] = true
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i].Prefix) != len(out[j].Prefix) {
			return len(out[i].Prefix) > len(out[j].Prefix)
		}
		// exact before prefix at equal length
		return out[i].Exact && !out[j].Exact
	})
	return &RouteTable{routes: out}, nil
}

// MustRouteTable is NewRouteTable that panics on error. For static tables.
func MustRouteTable(routes []Route) *RouteTable {
	t, err := NewRouteTable(routes)
	if err != nil {
		panic(err)
	}
	return t
}

// Classify returns the area of p. Unmatched paths are AreaAuthenticated.
func (t *RouteTable) Classify(p string) Area {
	p = NormalizePath(p)
	for _, r := range t.routes {
		if matches(r, p) {
			return r.Area
		}
	}
	return AreaAuthenticated
}

// Routes returns a copy of the table in match order.
func (t *RouteTable) Routes() []Route {
	return append([]Route(nil), t.routes...)
}

func matches(r Route, p string) bool {
	if p == r.Prefix {
		return true
	}
	if r.Exact {
		return false
	}
	// segment boundary: /admin matches /admin/x but not /administrator
	if r.Prefix == "/" {
		return true
	}
	return strings.HasPrefix(p, r.Prefix+"/")
}

// NormalizePath cleans p so that "/admin/../admin//x/" and "/admin/x"
// classify identically. An empty path is "/".
func NormalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
