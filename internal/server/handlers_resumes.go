package server

import (
	"net/http"
	"strconv"

	"github.com/jonathan/flower-resume/internal/types"
)

// defaultListLimit is used when the limit query parameter is absent.
const defaultListLimit = 20

// parsePagination reads limit and offset query parameters.
func parsePagination(r *http.Request) (int, int, error) {
	limit := defaultListLimit
	offset := 0

	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return 0, 0, &ErrValidation{Field: "limit", Message: "must be a positive integer"}
		}
		limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, 0, &ErrValidation{Field: "offset", Message: "must be a non-negative integer"}
		}
		offset = n
	}
	return limit, offset, nil
}

// handleListResumes lists the caller's resumes, most recently updated first.
func (s *Server) handleListResumes(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	limit, offset, err := parsePagination(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	result, err := s.resumes.List(r.Context(), userID, limit, offset)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleCreateResume creates a resume seeded from the default profile.
func (s *Server) handleCreateResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req types.CreateResumeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	resume, err := s.resumes.Create(r.Context(), userID, &req)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, resume)
}

func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := s.pathResumeID(w, r)
	if !ok {
		return
	}

	resume, err := s.resumes.Get(r.Context(), userID, id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resume)
}

// handleUpdateResume merges the supplied sections into a resume.
func (s *Server) handleUpdateResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := s.pathResumeID(w, r)
	if !ok {
		return
	}
	var req types.UpdateResumeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	resume, err := s.resumes.Update(r.Context(), userID, id, &req)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resume)
}

func (s *Server) handleDeleteResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := s.pathResumeID(w, r)
	if !ok {
		return
	}

	if err := s.resumes.Delete(r.Context(), userID, id); err != nil {
		s.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDuplicateResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := s.pathResumeID(w, r)
	if !ok {
		return
	}

	resume, err := s.resumes.Duplicate(r.Context(), userID, id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, resume)
}

// handleGetPublicResume serves a resume marked public without authentication.
func (s *Server) handleGetPublicResume(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathResumeID(w, r)
	if !ok {
		return
	}

	resume, err := s.resumes.GetPublic(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resume)
}
