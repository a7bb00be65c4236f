// Package server assembles the HTTP API: the chi router, the gate in front
// of it, and the JSON handlers for accounts, programs and administration.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/auth"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/gate"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/logging"
	gatemw "github.com/ayopaul/ejidike-foundation-sub002/internal/middleware"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/telemetry"
)

// RouterOptions controls the construction of the HTTP router. Gate, Cookies
// and Accounts are required; route groups whose service is nil are not
// mounted.
type RouterOptions struct {
	Gate    *gate.Gate
	Monitor *gate.Monitor
	Cookies auth.Cookies

	Accounts accountService
	Profiles profileService
	Programs programService
	Uploads  uploadService

	// RelyingParty enables SSO sign-in when set.
	RelyingParty *auth.RelyingParty
	DB           pinger

	// WebRoot serves the built UI for non-API paths when set.
	WebRoot string

	CORSOptions *cors.Options
	Metrics     *telemetry.ServerMetrics
	Logger      *slog.Logger
	Middleware  []func(http.Handler) http.Handler

	// WatchKeepAlive is the comment interval on decision streams.
	WatchKeepAlive time.Duration
}

// DefaultCORSOptions returns the development CORS policy for the UI dev server.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

type handlers struct {
	RouterOptions
	logger *slog.Logger
}

// NewRouter assembles the router. Every request passes the gate before route
// matching, so unknown paths are gated too.
func NewRouter(opts RouterOptions) (chi.Router, error) {
	if opts.Gate == nil || opts.Accounts == nil {
		return nil, errors.New("server: gate and account service are required")
	}
	logger := logging.Resolve(opts.Logger)
	if opts.WatchKeepAlive <= 0 {
		opts.WatchKeepAlive = 25 * time.Second
	}
	h := &handlers{RouterOptions: opts, logger: logger}

	gateMW, err := gatemw.NewGateMiddleware(gatemw.GateDependencies{
		Gate:    opts.Gate,
		Cookies: opts.Cookies,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(gatemw.Metrics(opts.Metrics))
	}

	corsCfg := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	for _, mw := range opts.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}
	r.Use(gateMW)

	r.Get("/api/health", h.handleHealth)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.handleRegister)
		r.Post("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)
		r.Get("/me", h.handleMe)
		r.Get("/decision", h.handleDecision)
		if opts.Monitor != nil {
			r.Get("/watch", h.handleWatch)
		}
		if opts.RelyingParty != nil {
			r.Get("/sso/login", h.handleSSOLogin)
		}
	})
	if opts.RelyingParty != nil {
		r.Get("/auth/callback", h.handleSSOCallback)
	}

	if opts.Profiles != nil {
		r.Get("/api/profile", h.handleGetOwnProfile)
		r.Put("/api/profile", h.handleUpdateOwnProfile)
		r.Get("/api/partners/profile", h.handleGetOrganization)
		r.Put("/api/partners/profile", h.handleSetOrganization)
		mountAdmin(r, h)
	}
	if opts.Programs != nil {
		mountPrograms(r, h)
	}
	if opts.Uploads != nil {
		r.Post("/api/uploads", h.handlePresignUpload)
	}

	r.NotFound(h.notFound())
	return r, nil
}

func (h *handlers) notFound() http.HandlerFunc {
	var static http.Handler
	if h.WebRoot != "" {
		static = spaHandler(h.WebRoot)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if static != nil && !gatemw.IsAPI(r.URL.Path) && (r.Method == http.MethodGet || r.Method == http.MethodHead) {
			static.ServeHTTP(w, r)
			return
		}
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not found"})
	}
}
