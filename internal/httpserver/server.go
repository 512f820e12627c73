package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wisbric/waypoint/internal/auth"
)

// Pinger is satisfied by whatever backs readiness checks for a driven
// dependency (DB pool, cache client). Nil Pingers are treated as healthy —
// the dual-startup-mode composition root only wires the ones actually in
// use (spec §4.8, §9).
type Pinger interface {
	Ping(ctx context.Context) error
}

// ServerConfig holds the parameters NewServer needs to assemble the router.
type ServerConfig struct {
	CORSAllowedOrigins []string
}

// Server holds the HTTP server dependencies.
type Server struct {
	Router    *chi.Mux
	APIRouter chi.Router // session-authenticated /api/v1 sub-router
	Logger    *slog.Logger
	startedAt time.Time

	dbPing    func(ctx context.Context) error
	cachePing func(ctx context.Context) error
}

// NewServer creates the HTTP server: global middleware, health/metrics
// endpoints, an unauthenticated /api/v1/login, and a session-authenticated
// /api/v1 sub-router that driving-service handlers mount onto (spec §4.7).
// db and rdb may be nil depending on the active startup mode; their
// readiness checks are skipped when absent.
func NewServer(cfg ServerConfig, logger *slog.Logger, db *pgxpool.Pool, rdb *redis.Client, metricsReg *prometheus.Registry, sessionMgr *auth.SessionManager, loginHandler *auth.LoginHandler) *Server {
	s := &Server{
		Router:    chi.NewRouter(),
		Logger:    logger,
		startedAt: time.Now(),
	}
	if db != nil {
		s.dbPing = db.Ping
	}
	if rdb != nil {
		s.cachePing = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	s.Router.Use(RequestID)
	s.Router.Use(Logger(logger))
	s.Router.Use(Metrics)
	s.Router.Use(middleware.Recoverer)
	s.Router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", "Idempotency-Key"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.Router.Get("/healthz", s.handleHealthz)
	s.Router.Get("/readyz", s.handleReadyz)
	s.Router.Handle("/metrics", promhttp.HandlerFor(metricsReg, promhttp.HandlerOpts{}))

	s.Router.Route("/api/v1", func(r chi.Router) {
		if loginHandler != nil {
			r.Post("/login", loginHandler.HandleLogin)
			r.Post("/logout", loginHandler.HandleLogout)
		}

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(sessionMgr, logger))
			s.APIRouter = r
		})
	})

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	Respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	type checkResult struct {
		Name   string `json:"name"`
		Status string `json:"status"`
		Error  string `json:"error,omitempty"`
	}

	var checks []checkResult
	allOK := true

	if s.dbPing != nil {
		if err := s.dbPing(ctx); err != nil {
			s.Logger.Error("readiness check: database ping failed", "error", err)
			checks = append(checks, checkResult{Name: "database", Status: "fail", Error: err.Error()})
			allOK = false
		} else {
			checks = append(checks, checkResult{Name: "database", Status: "ok"})
		}
	}

	if s.cachePing != nil {
		if err := s.cachePing(ctx); err != nil {
			s.Logger.Error("readiness check: cache ping failed", "error", err)
			checks = append(checks, checkResult{Name: "cache", Status: "fail", Error: err.Error()})
			allOK = false
		} else {
			checks = append(checks, checkResult{Name: "cache", Status: "ok"})
		}
	}

	status := "ready"
	httpStatus := http.StatusOK
	if !allOK {
		status = "unavailable"
		httpStatus = http.StatusServiceUnavailable
	}

	Respond(w, httpStatus, map[string]any{"status": status, "checks": checks})
}
