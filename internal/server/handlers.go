package server

import (
	"context"
	"net/http"
	"time"

	"github.com/jonathan/flower-resume/internal/types"
	"go.uber.org/zap"
)

// healthTimeout bounds the database ping in the health check.
const healthTimeout = 2 * time.Second

// TemplatesResponse lists the supported layouts.
type TemplatesResponse struct {
	Templates []types.Template `json:"templates"`
	Default   types.Template   `json:"default"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  "database unreachable",
			})
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListTemplates returns the five resume layouts.
func (s *Server) handleListTemplates(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, TemplatesResponse{
		Templates: types.Templates(),
		Default:   types.DefaultTemplate,
	})
}
