package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dgallion1/docsum/internal/config"
	"github.com/dgallion1/docsum/internal/llm"
	"github.com/dgallion1/docsum/internal/metrics"
	"github.com/dgallion1/docsum/internal/pipeline"
)

// Deps are the components the HTTP layer serves.
type Deps struct {
	Orchestrator *pipeline.Orchestrator
	Generator    llm.TextGenerator // answers /chat
	LLMStats     *llm.LLMStats     // may be nil
	Metrics      *metrics.Metrics
	Log          *slog.Logger
}

// Server is the HTTP API server for docsum.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	gen          llm.TextGenerator
	llmStats     *llm.LLMStats
	metrics      *metrics.Metrics
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(deps Deps, cfg config.Config) *Server {
	s := &Server{
		orchestrator: deps.Orchestrator,
		gen:          deps.Generator,
		llmStats:     deps.LLMStats,
		metrics:      deps.Metrics,
		log:          deps.Log,
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
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	// Authenticated when DOCSUM_API_KEY is set.
	r.Group(func(r chi.Router) {
		if s.cfg.DocsumAPIKey != "" {
			r.Use(AuthMiddleware(s.cfg.DocsumAPIKey, s.log))
		}

		r.Post("/upload", s.handleUpload)
		r.Post("/chat", s.handleChat)
		r.Post("/compress", s.handleCompress)
		r.Get("/api/runs/{runID}", s.handleRunStatus)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
