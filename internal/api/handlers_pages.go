package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dgallion1/pagetoc/internal/page"
	"github.com/dgallion1/pagetoc/internal/toc"
	"github.com/go-chi/chi/v5"
)

// loadPage resolves the page named by the wildcard route parameter. On
// failure it writes the error response and returns false.
func (s *Server) loadPage(w http.ResponseWriter, r *http.Request) (*cachedPage, bool) {
	rel := chi.URLParam(r, "*")
	p, err := s.pages.Get(r.Context(), rel)
	if err == nil {
		return p, true
	}
	switch {
	case errors.Is(err, ErrNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, page.ErrUnsupported):
		jsonError(w, err.Error(), http.StatusUnsupportedMediaType)
	default:
		s.log.Error("page processing failed", "page", rel, "error", err)
		jsonError(w, "failed to process page: "+err.Error(), http.StatusInternalServerError)
	}
	return nil, false
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPage(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(p.html))
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPage(w, r)
	if !ok {
		return
	}
	ctrl := p.result.Controller
	outline := ctrl.Outline().Root.Children
	if outline == nil {
		outline = []*toc.Node{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"page":    p.result.Name,
		"title":   p.result.Title,
		"entries": ctrl.Index().Entries(),
		"outline": outline,
	})
}

func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("y")
	if raw == "" {
		jsonError(w, "y query parameter is required", http.StatusBadRequest)
		return
	}
	y, err := strconv.Atoi(raw)
	if err != nil {
		jsonError(w, "y must be an integer", http.StatusBadRequest)
		return
	}

	p, ok := s.loadPage(w, r)
	if !ok {
		return
	}
	path := p.result.Controller.Locate(y)
	if path == nil {
		path = []toc.Entry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"position":   y,
		"breadcrumb": path,
		"html":       toc.RenderBar(path),
	})
}
