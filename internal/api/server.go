package api

import (
	"context"
	_ "embed"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/perola/clusterd/internal/api/handler"
	mw "github.com/perola/clusterd/internal/api/middleware"
	"github.com/perola/clusterd/internal/config"
	"github.com/perola/clusterd/internal/core"
	"github.com/perola/clusterd/internal/events"
	"github.com/perola/clusterd/internal/reconcile"
)

//go:embed docs/swagger.json
var swaggerJSON []byte

// Version is stamped at build time.
var Version = "dev"

type Server struct {
	router   chi.Router
	logger   zerolog.Logger
	services *core.Services
	pool     *pgxpool.Pool
	broker   *events.Broker
	sweeper  *reconcile.Sweeper
	cfg      *config.Config
}

func NewServer(logger zerolog.Logger, pool *pgxpool.Pool, services *core.Services,
	broker *events.Broker, sweeper *reconcile.Sweeper, cfg *config.Config) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger,
		services: services,
		pool:     pool,
		broker:   broker,
		sweeper:  sweeper,
		cfg:      cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)
	s.router.Get("/info", s.handleInfo)

	// API documentation (no auth required)
	s.router.Get("/docs/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(swaggerJSON)
	})
	s.router.Get("/docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(scalarHTML))
	})

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Identify(s.cfg.IsSystemUser))

		// Clusters
		cluster := handler.NewCluster(s.services.Cluster)
		r.Post("/clusters", cluster.Create)
		r.Get("/clusters", cluster.List)
		r.Get("/clusters/{id}", cluster.Get)
		r.Put("/clusters/{id}", cluster.Update)
		r.Delete("/clusters/{id}", cluster.Delete)

		// Status reports. Only controllers may push.
		status := handler.NewStatus(s.services.Cluster)
		r.Get("/clusters/{id}/status", status.Get)
		r.With(mw.RequireController).Put("/clusters/{id}/status", status.Push)

		// Reconciliation
		recon := handler.NewReconcile(s.sweeper)
		r.Post("/clusters/{id}/reconcile", recon.Trigger)
		r.Get("/reconcile/stats", recon.Stats)

		// Event stream
		evts := handler.NewEvents(s.broker)
		r.Get("/events/watch", evts.Watch)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.pool.Ping(ctx); err != nil {
		checks["db"] = err.Error()
		healthy = false
	} else {
		checks["db"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"service": s.cfg.ServiceName,
		"version": Version,
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

const scalarHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Cluster Lifecycle API</title>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
</head>
<body>
  <script id="api-reference" data-url="/docs/openapi.json"></script>
  <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
</body>
</html>`
