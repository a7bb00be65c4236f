package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/logging"
)

// SessionResolver turns an opaque token into a user identifier.
// Any error, including "no such session", means unauthenticated.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (userID string, err error)
}

// ProfileReader looks up the role of a user.
// Any error, including "no such profile", means unauthenticated.
type ProfileReader interface {
	GetProfileRole(ctx context.Context, userID string) (Role, error)
}

// Recorder observes decisions. Implemented by the telemetry package.
type Recorder interface {
	RecordDecision(ctx context.Context, d Decision, elapsed time.Duration)
}

// Principal is a resolved caller.
type Principal struct {
	UserID string
	Role   Role
}

// Gate evaluates requests against the route table and role policy.
// It holds no per-request state and is safe for concurrent use.
type Gate struct {
	sessions SessionResolver
	profiles ProfileReader
	routes   *RouteTable
	policy   *Policy
	recorder Recorder
	logger   *slog.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithRoutes replaces the default route table.
func WithRoutes(t *RouteTable) Option {
	return func(g *Gate) { g.routes = t }
}

// WithPolicy replaces the default role policy.
func WithPolicy(p *Policy) Option {
	return func(g *Gate) { g.policy = p }
}

// WithRecorder attaches a decision recorder.
func WithRecorder(r Recorder) Option {
	return func(g *Gate) { g.recorder = r }
}

// WithLogger sets the logger used for denial diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) { g.logger = l }
}

// New builds a Gate over the two stores.
func New(sessions SessionResolver, profiles ProfileReader, opts ...Option) (*Gate, error) {
	if sessions == nil || profiles == nil {
		return nil, errors.New("gate: session resolver and profile reader are required")
	}
	g := &Gate{sessions: sessions, profiles: profiles}
	for _, opt := range opts {
		opt(g)
	}
	if g.routes == nil {
		g.routes = MustRouteTable(DefaultRoutes())
	}
	if g.policy == nil {
		p, err := NewPolicy()
		if err != nil {
			return nil, err
		}
		g.policy = p
	}
	g.logger = logging.Resolve(g.logger)
	return g, nil
}

// Routes exposes the route table.
func (g *Gate) Routes() *RouteTable { return g.routes }

// Policy exposes the role policy.
func (g *Gate) Policy() *Policy { return g.policy }

// Identify resolves token to a principal. The error wraps ErrUnauthenticated
// or ErrProfileMissing together with the underlying cause.
func (g *Gate) Identify(ctx context.Context, token string) (Principal, error) {
	if token == "" {
		return Principal{}, ErrUnauthenticated
	}
	userID, err := g.sessions.ResolveSession(ctx, token)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	if userID == "" {
		return Principal{}, ErrUnauthenticated
	}
	role, err := g.profiles.GetProfileRole(ctx, userID)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %w", ErrProfileMissing, err)
	}
	if !role.Valid() {
		return Principal{}, fmt.Errorf("%w: stored role %q", ErrProfileMissing, role)
	}
	return Principal{UserID: userID, Role: role}, nil
}

// Evaluate decides whether a request for path carrying token may proceed.
//
// Public paths are allowed without any store lookup. Login and register are
// allowed without a session and redirect to the role home with one. Every
// other path requires a resolvable session and profile; the profile's role
// must be permitted on the path's area.
func (g *Gate) Evaluate(ctx context.Context, path, token string) Decision {
	start := time.Now()
	d := g.evaluate(ctx, path, token)
	if g.recorder != nil {
		g.recorder.RecordDecision(ctx, d, time.Since(start))
	}
	if !d.Allowed() {
		g.logger.DebugContext(ctx, "gate denied request",
			"path", d.Path,
			"area", d.Area,
			"decision", d.Kind,
			"location", d.Location,
			"user_id", d.UserID,
			"role", d.Role,
			"reason", d.Reason,
		)
	}
	return d
}

func (g *Gate) evaluate(ctx context.Context, rawPath, token string) Decision {
	p := NormalizePath(rawPath)
	area := g.routes.Classify(p)

	switch area {
	case AreaPublic:
		return allow(p, area, "", "")
	case AreaAuthOnly:
		if token == "" {
			return allow(p, area, "", "")
		}
		principal, err := g.Identify(ctx, token)
		if err != nil {
			// stale cookie on the login page: let the form render
			return allow(p, area, "", "")
		}
		return redirectToRoleHome(p, area, principal.UserID, principal.Role, nil)
	}

	principal, err := g.Identify(ctx, token)
	if err != nil {
		reason := ErrUnauthenticated
		if errors.Is(err, ErrProfileMissing) {
			reason = ErrProfileMissing
		}
		return redirectToLogin(p, area, reason)
	}
	return g.authorize(p, area, principal)
}

// Authorize applies the role policy for an already identified principal.
func (g *Gate) Authorize(path string, principal Principal) Decision {
	p := NormalizePath(path)
	area := g.routes.Classify(p)
	switch area {
	case AreaPublic:
		return allow(p, area, principal.UserID, principal.Role)
	case AreaAuthOnly:
		return redirectToRoleHome(p, area, principal.UserID, principal.Role, nil)
	}
	return g.authorize(p, area, principal)
}

func (g *Gate) authorize(p string, area Area, principal Principal) Decision {
	if !principal.Role.Valid() {
		return redirectToLogin(p, area, ErrProfileMissing)
	}
	if !g.policy.Permits(principal.Role, area) {
		return redirectToRoleHome(p, area, principal.UserID, principal.Role, ErrForbidden)
	}
	return allow(p, area, principal.UserID, principal.Role)
}
