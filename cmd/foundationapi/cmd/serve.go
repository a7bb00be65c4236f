package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/auth"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/config"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/bunx"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/gate"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/repository"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/server"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/services/iam"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/services/profiles"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/services/programs"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/sessionstore"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/storage"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/telemetry"
)

// sessionCleanupInterval is how often expired database sessions are purged.
const sessionCleanupInterval = time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the portal API server",
	Long:  `Starts the HTTP server: the authorization gate, the portal JSON API and, when configured, the built web UI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		shutdownTelemetry, err := telemetry.Init(ctx, cfg.Observability, version, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTelemetry(ctx); err != nil {
				logger.Warn("telemetry shutdown failed", "error", err)
			}
		}()

		db, err := bunx.NewDB(ctx, cfg.DatabaseURL, bunx.Options{MaxOpenConns: cfg.MaxDBConnections})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)
		logger.Info("connected to database", "type", bunx.DetectDatabaseType(cfg.DatabaseURL))

		userRepo := repository.NewBunUserRepository(db)
		profileRepo := repository.NewBunProfileRepository(db)

		store, cleanup, err := newSessionStore(cfg, db, userRepo)
		if err != nil {
			return err
		}

		broker := gate.NewBroker(0, logger)
		profileService := profiles.NewService(profileRepo, broker, profiles.CacheOptions{
			Size: cfg.ProfileCache.Size,
			TTL:  cfg.ProfileCache.TTL,
		}, logger)
		accounts := iam.NewService(userRepo, profileService, store, broker, logger)

		validator, err := programs.NewFormValidator(256)
		if err != nil {
			return fmt.Errorf("failed to create form validator: %w", err)
		}
		programService, err := programs.NewService(programs.Deps{
			Opportunities: repository.NewBunOpportunityRepository(db),
			Applications:  repository.NewBunApplicationRepository(db),
			Mentorships:   repository.NewBunMentorshipRepository(db),
			Roles:         profileService,
			Validator:     validator,
			Logger:        logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create program service: %w", err)
		}

		gateMetrics, err := telemetry.NewGateMetrics()
		if err != nil {
			return fmt.Errorf("failed to create gate metrics: %w", err)
		}
		routes, err := routeTable(cfg.Gate.PublicPaths)
		if err != nil {
			return fmt.Errorf("invalid route table: %w", err)
		}
		g, err := gate.New(store, profileService,
			gate.WithRoutes(routes),
			gate.WithRecorder(gateMetrics),
			gate.WithLogger(logger),
		)
		if err != nil {
			return fmt.Errorf("failed to create gate: %w", err)
		}

		serverMetrics, err := telemetry.NewServerMetrics()
		if err != nil {
			return fmt.Errorf("failed to create server metrics: %w", err)
		}

		presigner, err := storage.NewPresigner(ctx, cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to configure upload storage: %w", err)
		}

		var relyingParty *auth.RelyingParty
		if cfg.OIDC.Enabled() {
			relyingParty, err = auth.NewRelyingParty(ctx, cfg.OIDC, cfg.Session.CookieSecure)
			if err != nil {
				return fmt.Errorf("failed to create relying party: %w", err)
			}
			logger.Info("sso enabled", "issuer", cfg.OIDC.Issuer)
		}

		corsOpts := server.DefaultCORSOptions()
		corsOpts.AllowedOrigins = cfg.AllowedOrigins

		opts := server.RouterOptions{
			Gate:           g,
			Monitor:        gate.NewMonitor(g, broker, cfg.Gate.WatchInterval),
			Cookies:        auth.Cookies{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure},
			Accounts:       accounts,
			Profiles:       profileService,
			Programs:       programService,
			DB:             db,
			WebRoot:        cfg.WebRoot,
			CORSOptions:    &corsOpts,
			Metrics:        serverMetrics,
			Logger:         logger,
			RelyingParty:   relyingParty,
			WatchKeepAlive: cfg.Gate.WatchKeepAlive,
		}
		if presigner.Enabled() {
			opts.Uploads = presigner
		}
		r, err := server.NewRouter(opts)
		if err != nil {
			return fmt.Errorf("failed to build router: %w", err)
		}

		srv := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		bgCtx, cancelBackground := context.WithCancel(ctx)
		defer cancelBackground()
		if cleanup != nil {
			go runSessionCleanup(bgCtx, cleanup)
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting server", "addr", cfg.ServerAddr, "url", cfg.ServerURL, "version", version)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutting down gracefully", "signal", sig.String())
			cancelBackground()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				srv.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}
			logger.Info("server stopped")
			return nil
		}
	},
}

// routeTable is the built-in classification plus extra public prefixes.
// Extras may only open page paths that any signed-in role could already
// reach. API paths and prefixes enclosing a built-in route are refused.
func routeTable(publicPaths []string) (*gate.RouteTable, error) {
	routes := gate.DefaultRoutes()
	builtin := gate.MustRouteTable(routes)
	for _, p := range publicPaths {
		if p == "/api" || strings.HasPrefix(p, "/api/") {
			return nil, fmt.Errorf("public path %q is under /api", p)
		}
		if area := builtin.Classify(p); area != gate.AreaAuthenticated {
			return nil, fmt.Errorf("public path %q falls in the %s area", p, area)
		}
		for _, r := range gate.DefaultRoutes() {
			if strings.HasPrefix(r.Prefix, p+"/") {
				return nil, fmt.Errorf("public path %q encloses the %s route %q", p, r.Area, r.Prefix)
			}
		}
		routes = append(routes, gate.Route{Prefix: p, Area: gate.AreaPublic})
	}
	return gate.NewRouteTable(routes)
}

// newSessionStore builds the configured session backend. cleanup is non-nil
// for backends that need expired sessions purged.
func newSessionStore(cfg *config.Config, db *bun.DB, users repository.UserRepository) (sessionstore.Store, func(context.Context) (int, error), error) {
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		client, err := sessionstore.NewRedisClient(cfg.Redis.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to configure redis: %w", err)
		}
		logger.Info("using redis session store")
		return sessionstore.NewRedisStore(client, cfg.Session.Duration), nil, nil
	case config.SessionBackendJWT:
		store, err := sessionstore.NewJWTStore(users, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.Session.Duration)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to configure jwt sessions: %w", err)
		}
		logger.Info("using jwt session store; logout cannot revoke issued tokens, disabled accounts are rejected on resolve")
		return store, nil, nil
	default:
		store := sessionstore.NewDatabaseStore(repository.NewBunSessionRepository(db), users, cfg.Session.Duration)
		return store, store.Cleanup, nil
	}
}

func runSessionCleanup(ctx context.Context, cleanup func(context.Context) (int, error)) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := cleanup(ctx)
			if err != nil {
				logger.Error("session cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("purged expired sessions", "count", n)
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
