package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/dgallion1/minutesdoc/internal/capability"
	"github.com/dgallion1/minutesdoc/internal/config"
	"github.com/dgallion1/minutesdoc/internal/pipeline"
	"github.com/dgallion1/minutesdoc/internal/remote"
)

// Server is the HTTP API server for minutesdoc.
type Server struct {
	router    chi.Router
	converter pipeline.Converter
	queue     *pipeline.Queue
	catalog   *capability.Catalog
	stats     *remote.Stats
	limiter   *rate.Limiter
	log       *slog.Logger
	cfg       config.Config
}

// NewServer creates and configures the HTTP server. queue may be nil, in which
// case asynchronous conversions are refused.
func NewServer(conv pipeline.Converter, queue *pipeline.Queue, catalog *capability.Catalog, stats *remote.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		converter: conv,
		queue:     queue,
		catalog:   catalog,
		stats:     stats,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
		log:       log,
		cfg:       cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.MinutesdocAPIKey, s.log))
		r.Use(RateLimit(s.limiter))

		r.Post("/api/convert", s.handleConvert)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)
		r.Get("/api/artifacts/{name}", s.handleArtifact)
		r.Get("/api/capabilities", s.handleCapabilities)
		r.Get("/api/stats/remote", s.handleRemoteStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
