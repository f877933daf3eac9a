package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/dgallion1/pagetoc/internal/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for pagetoc previews.
type Server struct {
	router   chi.Router
	pages    *PageStore
	log      *slog.Logger
	cfg      *config.Config
	sessions atomic.Int64
}

// NewServer creates and configures the HTTP server.
func NewServer(pages *PageStore, log *slog.Logger, cfg *config.Config) *Server {
	s := &Server{
		pages: pages,
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

	r.Get("/health", s.handleHealth)
	r.Get("/pages/*", s.handlePage)
	r.Get("/ws/*", s.handleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Get("/outline/*", s.handleOutline)
		r.Get("/locate/*", s.handleLocate)
		r.Get("/stats", s.handleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
