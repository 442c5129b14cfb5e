package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dgallion1/docsift/internal/config"
	"github.com/dgallion1/docsift/internal/pipeline"
	"github.com/dgallion1/docsift/internal/rank"
	"github.com/dgallion1/docsift/internal/stats"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Ranker runs a ranking request against the documents in pdfDir.
type Ranker interface {
	Run(ctx context.Context, req *rank.Request, pdfDir string) (*rank.Result, error)
}

// ModelStat names a model backend and its latency window.
type ModelStat struct {
	Name    string
	Model   string
	Latency *stats.Latency
}

// Server is the HTTP API server for docsift.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	ranker       Ranker
	models       []ModelStat
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. A nil ranker disables /api/rank.
func NewServer(orch *pipeline.Orchestrator, ranker Ranker, models []ModelStat, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		ranker:       ranker,
		models:       models,
		log:          log,
		cfg:          cfg,
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
		r.Use(AuthMiddleware(s.cfg.APIKey))

		r.Route("/api/outline", func(r chi.Router) {
			r.Post("/", s.handleOutline)
			r.Post("/batch", s.handleOutlineBatch)
			r.Get("/{jobID}", s.handleOutlineStatus)
			r.Get("/{jobID}/export", s.handleOutlineExport)
		})
		r.Post("/api/rank", s.handleRank)
		r.Get("/api/stats/models", s.handleModelStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
