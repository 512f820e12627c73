// Package app wires waypoint's composition root: it reads configuration,
// selects durable (Postgres+Redis) or in-memory fixture startup mode, builds
// every driving service, and runs the HTTP server until ctx is cancelled
// (spec §4.8, §9).
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/wisbric/waypoint/internal/adapters/memory"
	"github.com/wisbric/waypoint/internal/adapters/postgres"
	"github.com/wisbric/waypoint/internal/auth"
	"github.com/wisbric/waypoint/internal/config"
	"github.com/wisbric/waypoint/internal/docs"
	"github.com/wisbric/waypoint/internal/httpserver"
	"github.com/wisbric/waypoint/internal/idempotency"
	"github.com/wisbric/waypoint/internal/platform"
	"github.com/wisbric/waypoint/internal/ports"
	"github.com/wisbric/waypoint/internal/telemetry"

	"github.com/wisbric/waypoint/pkg/annotation"
	"github.com/wisbric/waypoint/pkg/catalogue"
	"github.com/wisbric/waypoint/pkg/enrichment"
	"github.com/wisbric/waypoint/pkg/offlinebundle"
	"github.com/wisbric/waypoint/pkg/preferences"
	"github.com/wisbric/waypoint/pkg/routeplan"
	"github.com/wisbric/waypoint/pkg/user"
	"github.com/wisbric/waypoint/pkg/walksession"
)

// seedPassword is the fixed password for every fixture-mode demo account
// (spec §9 "fixture mode has no self-registration flow").
const seedPassword = "waypoint"

// Run is waypoint's entry point: validate config, connect infrastructure for
// the selected startup mode, and serve until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := telemetry.NewLogger(cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Info("starting waypoint", "listen", cfg.ListenAddr(), "durable", cfg.DatabaseURL != "")

	metricsReg := telemetry.NewMetricsRegistry(append(telemetry.All(), httpserver.RequestDuration)...)

	sameSite, err := cfg.SameSite()
	if err != nil {
		return err
	}
	cookieSecure, err := cfg.CookieSecure()
	if err != nil {
		return err
	}
	sessionKey, err := cfg.ReadSessionKey(auth.GenerateDevSecret)
	if err != nil {
		return fmt.Errorf("resolving session key: %w", err)
	}
	sessionMgr, err := auth.NewSessionManager(auth.Config{
		SigningKey:    sessionKey,
		MaxAge:        cfg.SessionMaxAge,
		RefreshWindow: cfg.SessionRefresh,
		CookieSecure:  cookieSecure,
		SameSite:      sameSite,
	})
	if err != nil {
		return fmt.Errorf("creating session manager: %w", err)
	}
	if err := sessionMgr.ValidatePolicy(cfg.IsRelease()); err != nil {
		return err
	}

	var (
		db  *pgxpool.Pool
		rdb *redis.Client
	)

	if cfg.DatabaseURL != "" {
		db, err = platform.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer db.Close()

		if err := platform.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		logger.Info("schema migrations applied")

		if cfg.RedisURL != "" {
			rdb, err = platform.NewRedisClient(ctx, cfg.RedisURL)
			if err != nil {
				return fmt.Errorf("connecting to redis: %w", err)
			}
			defer func() {
				if err := rdb.Close(); err != nil {
					logger.Error("closing redis", "error", err)
				}
			}()
		}
	} else {
		logger.Info("DATABASE_URL not set: running in in-memory fixture mode (spec §9)")
	}

	deps, err := buildDependencies(db, cfg)
	if err != nil {
		return err
	}

	idemEngine := idempotency.NewEngine(deps.idempotency, logger)
	if rdb != nil {
		cacheTTL := time.Duration(cfg.IdempotencyTTLHours) * time.Hour
		idemEngine = idemEngine.WithCache(idempotency.NewRedisCache(rdb, cacheTTL, logger))
	}

	cleanupCtx, cancelCleanup := context.WithCancel(ctx)
	defer cancelCleanup()
	go idemEngine.RunCleanupLoop(cleanupCtx, time.Duration(cfg.IdempotencyTTLHours)*time.Hour, cfg.IdempotencyCleanupEvery)

	loginHandler := auth.NewLoginHandler(sessionMgr, deps.users, logger)

	srv := httpserver.NewServer(httpserver.ServerConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}, logger, db, rdb, metricsReg, sessionMgr, loginHandler)

	srv.Router.Get("/api/v1/docs", docs.SwaggerUIHandler())
	srv.Router.Get("/api/v1/docs/openapi.yaml", docs.OpenAPISpecHandler())

	mountHandlers(srv, deps, idemEngine, logger, cfg)

	httpSrv := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      srv,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server listening", "addr", cfg.ListenAddr())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// dependencies holds every driven port, selected for the active startup
// mode (spec §4.8's dual-mode composition root).
type dependencies struct {
	users         ports.UserRepository
	preferences   ports.PreferencesRepository
	annotations   ports.AnnotationRepository
	idempotency   ports.IdempotencyRepository
	offlineBundle ports.OfflineBundleRepository
	walkSession   ports.WalkSessionRepository
	route         ports.RouteRepository
	catalogue     ports.CatalogueRepository
	descriptor    ports.DescriptorRepository
	pois          ports.POIRepository
	provenance    ports.EnrichmentProvenanceRepository
	schema        ports.SchemaRepository
}

func buildDependencies(db *pgxpool.Pool, cfg *config.Config) (*dependencies, error) {
	if db != nil {
		return buildPostgresDependencies(db), nil
	}
	return buildMemoryDependencies()
}

// buildPostgresDependencies wires every port to its Postgres adapter. A
// single *pgxpool.Pool satisfies db.DBTX, so every store shares the pool
// directly rather than a per-request transaction (spec §4.2 step 4's
// single-row atomic writes don't need one).
func buildPostgresDependencies(db *pgxpool.Pool) *dependencies {
	return &dependencies{
		users:         postgres.NewUserStore(db),
		preferences:   postgres.NewPreferencesStore(db),
		annotations:   postgres.NewAnnotationStore(db),
		idempotency:   postgres.NewIdempotencyStore(db),
		offlineBundle: postgres.NewOfflineBundleStore(db),
		walkSession:   postgres.NewWalkSessionStore(db),
		route:         postgres.NewRouteStore(db),
		catalogue:     postgres.NewCatalogueStore(db),
		descriptor:    postgres.NewDescriptorStore(db),
		pois:          postgres.NewPOIStore(db),
		provenance:    postgres.NewEnrichmentProvenanceStore(db),
		schema:        postgres.NewSchemaStore(db),
	}
}

// buildMemoryDependencies wires every port to its deterministic in-memory
// fixture adapter (spec §9 fixture startup mode): seeded demo users with a
// bcrypt-hashed shared password, a curated explore catalogue/descriptor
// snapshot, and a route store whose onCreate hook registers new routes with
// the annotation store so RouteExists sees them.
func buildMemoryDependencies() (*dependencies, error) {
	seedUsers := memory.DefaultUsers()
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing fixture password: %w", err)
	}
	for i := range seedUsers {
		seedUsers[i].PasswordHash = string(passwordHash)
	}

	annotations := memory.NewAnnotationStore(nil)
	routeStore := memory.NewRouteStore(annotations.RegisterRoute)

	return &dependencies{
		users:         memory.NewUserStore(seedUsers),
		preferences:   memory.NewPreferencesStore(),
		annotations:   annotations,
		idempotency:   memory.NewIdempotencyStore(),
		offlineBundle: memory.NewOfflineBundleStore(),
		walkSession:   memory.NewWalkSessionStore(),
		route:         routeStore,
		catalogue:     memory.NewCatalogueStore(memory.DefaultExploreCatalogue()),
		descriptor:    memory.NewDescriptorStore(memory.DefaultDescriptors()),
		pois:          memory.NewPOIStore(),
		provenance:    memory.NewEnrichmentProvenanceStore(),
		schema:        memory.NewSchemaStore("fixture"),
	}, nil
}

// mountHandlers builds every driving service and handler and mounts it onto
// the session-authenticated /api/v1 sub-router (spec §6's endpoint table).
func mountHandlers(srv *httpserver.Server, deps *dependencies, idemEngine *idempotency.Engine, logger *slog.Logger, cfg *config.Config) {
	prefsSvc := preferences.NewService(deps.preferences, idemEngine, logger)
	userSvc := user.NewService(deps.users, logger)
	srv.APIRouter.Route("/users", func(r chi.Router) {
		r.Mount("/", user.NewHandler(userSvc, logger).Routes())
		r.Route("/me", func(r chi.Router) {
			r.Mount("/preferences", preferences.NewHandler(prefsSvc, logger).Routes())
		})
	})

	annotationSvc := annotation.NewService(deps.annotations, idemEngine, logger)
	routeSvc := routeplan.NewService(deps.route, idemEngine, logger)
	srv.APIRouter.Route("/routes", func(r chi.Router) {
		r.Mount("/", routeplan.NewHandler(routeSvc, logger).Routes())
		r.Mount("/{routeId}", annotation.NewHandler(annotationSvc, logger).Routes())
	})

	bundleSvc := offlinebundle.NewService(deps.offlineBundle, idemEngine, logger)
	srv.APIRouter.Mount("/offline/bundles", offlinebundle.NewHandler(bundleSvc, logger).Routes())

	walkSvc := walksession.NewService(deps.walkSession, logger)
	srv.APIRouter.Mount("/walk-sessions", walksession.NewHandler(walkSvc, logger).Routes())

	catalogueSvc := catalogue.NewService(deps.catalogue, deps.descriptor, logger)
	srv.APIRouter.Mount("/catalogue", catalogue.NewHandler(catalogueSvc, logger).Routes())

	enrichmentSvc := enrichment.NewService(deps.pois, deps.provenance, enrichment.HTTPFetch(nil), enrichmentConfig(cfg), logger)
	srv.APIRouter.Mount("/admin/enrichment", enrichment.NewHandler(enrichmentSvc, logger).Routes())
}

// enrichmentConfig maps the environment-configured enrichment tunables onto
// pkg/enrichment.Config (spec §4.5 "Concurrency", "Circuit breaker",
// "Quota").
func enrichmentConfig(cfg *config.Config) enrichment.Config {
	c := enrichment.DefaultConfig()
	c.MaxConcurrentFetches = int64(cfg.EnrichmentAdmissionWidth)
	c.QuotaPerWindow = rate.Limit(float64(cfg.EnrichmentQuotaPerMinute) / 60.0)
	c.QuotaBurst = cfg.EnrichmentAdmissionWidth
	c.BreakerMinRequests = int(cfg.EnrichmentBreakerThreshold)
	c.BreakerTimeout = cfg.EnrichmentBreakerCooldown
	return c
}
