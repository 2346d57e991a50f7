package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/flower-resume/internal/assets"
	"github.com/jonathan/flower-resume/internal/resumes"
	"github.com/jonathan/flower-resume/internal/types"
	"go.uber.org/zap"
)

// multipartOverhead allows for form boundaries and small fields on top of
// the image itself.
const multipartOverhead = 64 << 10

// handleUploadImage stores a profile picture and optionally records its URL
// on a resume (resume_id) or on the default profile (target=profile).
func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	maxBytes := s.assets.MaxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(maxBytes + multipartOverhead); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.handleError(w, r, assets.ErrTooLarge)
			return
		}
		s.handleError(w, r, &ErrValidation{Field: "body", Message: "must be multipart/form-data"})
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			s.logger.Warn("failed to remove multipart temp files", zap.Error(err))
		}
	}()

	// Resolve where the URL goes before storing anything.
	target := types.Target(r.FormValue("target"))
	resumeID := uuid.Nil
	if raw := r.FormValue("resume_id"); raw != "" {
		id, err := resumes.ParseResumeID(raw)
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		if _, err := s.resumes.Get(r.Context(), userID, id); err != nil {
			s.handleError(w, r, err)
			return
		}
		resumeID = id
		target = types.TargetResume
	} else if target != "" && target != types.TargetProfile {
		s.handleError(w, r, &ErrValidation{Field: "target", Message: "must be profile or omitted when resume_id is set"})
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		s.handleError(w, r, &ErrValidation{Field: "image", Message: "is required"})
		return
	}
	defer func() { _ = file.Close() }()

	url, err := s.assets.UploadImage(r.Context(), userID, file)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	if target != "" {
		if _, err := s.resumes.SetImageURL(r.Context(), userID, target, resumeID, url); err != nil {
			s.handleError(w, r, err)
			return
		}
	}

	s.jsonResponse(w, http.StatusCreated, types.UploadResponse{URL: url})
}
