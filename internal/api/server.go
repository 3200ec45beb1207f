// Package api is the HTTP surface of the assistant: a query endpoint
// plus health and observability handlers.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/clearpath/assistant/internal/answer"
	"github.com/clearpath/assistant/internal/config"
	"github.com/clearpath/assistant/internal/llm"
	"github.com/clearpath/assistant/internal/vectorstore"
)

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	svc    *answer.Service
	stats  *llm.Stats
	store  vectorstore.Store
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server. stats and store may
// be nil; their endpoints report unavailable.
func NewServer(svc *answer.Service, stats *llm.Stats, store vectorstore.Store, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		svc:   svc,
		stats: stats,
		store: store,
		log:   log,
		cfg:   cfg,
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

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/query", s.handleQuery)
		r.Get("/api/stats/llm", s.handleLLMStats)
		r.Get("/api/documents/count", s.handleDocumentCount)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
