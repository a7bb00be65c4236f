// Package middleware holds the HTTP middleware that puts the authorization
// gate in front of every route.
package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/auth"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/gate"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/logging"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/telemetry"
)

// APIPrefix marks requests answered with JSON rather than redirects.
const APIPrefix = "/api/"

// GateDependencies provides the collaborators of the gate middleware.
type GateDependencies struct {
	Gate    *gate.Gate
	Cookies auth.Cookies
	Logger  *slog.Logger
}

// DeniedResponse is the body of a 401 or 403 from an API route.
type DeniedResponse struct {
	Error    string        `json:"error"`
	Decision gate.Decision `json:"decision"`
}

// NewGateMiddleware evaluates every request against the gate before it
// reaches a handler. Allowed requests carry the principal and token in their
// context. Denied page requests are redirected with 302; denied API requests
// get 401 (sign in) or 403 (wrong role) with the decision as JSON.
func NewGateMiddleware(deps GateDependencies) (func(http.Handler) http.Handler, error) {
	if deps.Gate == nil {
		return nil, errors.New("gate middleware requires a gate")
	}
	logger := logging.Resolve(deps.Logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := deps.Cookies.Token(r)

			ctx, span := telemetry.StartSpan(r.Context(), telemetry.TracerGate, "gate.Evaluate",
				attribute.String(telemetry.AttrPath, r.URL.Path),
			)
			d := deps.Gate.Evaluate(ctx, r.URL.Path, token)
			span.SetAttributes(
				attribute.String(telemetry.AttrArea, string(d.Area)),
				attribute.String(telemetry.AttrDecision, string(d.Kind)),
				attribute.String(telemetry.AttrReason, telemetry.ReasonLabel(d.Reason)),
				attribute.String(telemetry.AttrRole, string(d.Role)),
			)
			span.End()

			if d.Allowed() {
				ctx := r.Context()
				if d.UserID != "" {
					ctx = auth.SetPrincipal(ctx, gate.Principal{UserID: d.UserID, Role: d.Role})
					ctx = auth.SetToken(ctx, token)
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			// a token that no longer resolves is dead weight in the browser
			if d.Kind == gate.KindRedirectLogin && token != "" {
				deps.Cookies.Clear(w)
			}

			if IsAPI(r.URL.Path) {
				status := http.StatusForbidden
				msg := "forbidden"
				if d.Kind == gate.KindRedirectLogin {
					status = http.StatusUnauthorized
					msg = "unauthenticated"
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				if err := json.NewEncoder(w).Encode(DeniedResponse{Error: msg, Decision: d}); err != nil {
					logger.WarnContext(r.Context(), "failed to encode denial", "error", err)
				}
				return
			}
			http.Redirect(w, r, d.Location, http.StatusFound)
		})
	}, nil
}

// IsAPI reports whether path is served as JSON.
func IsAPI(path string) bool {
	return path == strings.TrimSuffix(APIPrefix, "/") || strings.HasPrefix(path, APIPrefix)
}
