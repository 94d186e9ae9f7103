package ui

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"nirlamp/app"
	"nirlamp/internal"
	"nirlamp/internal/config"
)

// Server exposes analysis sessions over HTTP. Each uploaded export file
// becomes one in-memory session; nothing is persisted.
type Server struct {
	router *chi.Mux
	log    *internal.Logger
	cfg    *config.Config

	mu       sync.RWMutex
	sessions map[string]*app.AnalyzerService
}

// NewServer creates the HTTP server with its routes configured.
func NewServer(cfg *config.Config, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:   chi.NewRouter(),
		log:      logger,
		cfg:      cfg,
		sessions: make(map[string]*app.AnalyzerService),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.Post("/api/sessions", s.handleCreateSession)
	s.router.Get("/api/sessions/{id}", s.handleSessionInfo)
	s.router.Get("/api/sessions/{id}/selection-keys", s.handleSelectionKeys)
	s.router.Post("/api/sessions/{id}/analyze", s.handleAnalyze)
	s.router.Get("/api/sessions/{id}/report", s.handleTextReport)
	s.router.Get("/api/sessions/{id}/export", s.handleExport)
}

// Start begins serving on the given address and blocks.
func (s *Server) Start(addr string) error {
	s.log.Info("analyzer API listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) session(id string) (*app.AnalyzerService, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	svc, ok := s.sessions[id]
	return svc, ok
}

func (s *Server) storeSession(id string, svc *app.AnalyzerService) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = svc
}
