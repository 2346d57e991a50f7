package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/flower-resume/internal/ai"
	"github.com/jonathan/flower-resume/internal/types"
)

func (s *Server) aiAvailable(w http.ResponseWriter) bool {
	if s.ai == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, ai.ErrUnavailable.Error())
		return false
	}
	return true
}

// handleEnhanceSummary rewrites the summary of a resume or the profile.
func (s *Server) handleEnhanceSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok || !s.aiAvailable(w) {
		return
	}
	var req types.EnhanceSummaryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	resp, err := s.ai.EnhanceSummary(r.Context(), userID, &req)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleEnhanceExperience rewrites one experience entry's description.
func (s *Server) handleEnhanceExperience(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok || !s.aiAvailable(w) {
		return
	}
	var req types.EnhanceExperienceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	resp, err := s.ai.EnhanceExperience(r.Context(), userID, &req)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleEnhanceAllExperience rewrites every experience entry of a resume.
// An empty body is accepted.
func (s *Server) handleEnhanceAllExperience(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok || !s.aiAvailable(w) {
		return
	}
	id, ok := s.pathResumeID(w, r)
	if !ok {
		return
	}
	var req types.EnhanceAllRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			var ve *ErrValidation
			if !errors.As(err, &ve) || ve.Message != "is required" {
				s.handleError(w, r, err)
				return
			}
		}
	}

	resume, err := s.ai.EnhanceAllExperience(r.Context(), userID, id, &req)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resume)
}

// handleTailor creates a new resume tailored to a job description.
func (s *Server) handleTailor(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok || !s.aiAvailable(w) {
		return
	}
	var req types.TailorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	resume, err := s.ai.Tailor(r.Context(), userID, &req)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, resume)
}

func (s *Server) handleFetchJobDescription(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok || !s.aiAvailable(w) {
		return
	}
	var req types.FetchJobDescriptionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	resp, err := s.ai.FetchJobDescription(r.Context(), &req)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}
