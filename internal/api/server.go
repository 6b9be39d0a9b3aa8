// Package api exposes the schema inference, profiling, and export
// pipeline over HTTP for callers that hold their documents client-side.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/okessler/jsontab/internal/config"
	"github.com/rs/zerolog"
)

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	cfg    config.Config
	log    zerolog.Logger
}

// NewServer creates and configures the HTTP server.
func NewServer(cfg config.Config, logger zerolog.Logger) *Server {
	s := &Server{
		cfg: cfg,
		log: logger,
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

	r.Get("/health", s.handleHealth)

	r.Post("/api/schema", s.handleSchema)
	r.Post("/api/profile", s.handleProfile)
	r.Post("/api/export", s.handleExport)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
