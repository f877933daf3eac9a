package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"cached_pages": s.pages.Len(),
		"sessions":     s.sessions.Load(),
		"layout":       s.cfg.Layout,
	})
}
