package server

import (
	"net/http"

	"github.com/jonathan/flower-resume/internal/types"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	profile, err := s.resumes.Profile(r.Context(), userID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, profile)
}

// handleReplaceProfile stores the request body as the default profile.
func (s *Server) handleReplaceProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var content types.ResumeContent
	if err := decodeJSON(w, r, &content); err != nil {
		s.handleError(w, r, err)
		return
	}

	profile, err := s.resumes.ReplaceProfile(r.Context(), userID, content)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, profile)
}

// handleSyncProfile copies one of the caller's resumes into the profile.
func (s *Server) handleSyncProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := s.pathResumeID(w, r)
	if !ok {
		return
	}

	profile, err := s.resumes.SyncProfileFromResume(r.Context(), userID, id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, profile)
}
