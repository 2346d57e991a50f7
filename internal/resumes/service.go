// Package resumes implements resume and default-profile management: copying
// the profile into new resumes, owner-scoped access and section merges.
package resumes

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/flower-resume/internal/logging"
	"github.com/jonathan/flower-resume/internal/types"
	"go.uber.org/zap"
)

// Default titles
const (
	DefaultTitle  = "Untitled Resume"
	TailoredTitle = "Tailored Resume"
	copySuffix    = " (Copy)"
	maxListLimit  = 100
)

// Store is the persistence the service needs. *db.DB implements it.
type Store interface {
	CreateResume(ctx context.Context, r *types.Resume) error
	GetResume(ctx context.Context, id uuid.UUID) (*types.Resume, error)
	ListResumesByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]types.ResumeSummary, error)
	CountResumesByUser(ctx context.Context, userID uuid.UUID) (int, error)
	UpdateResume(ctx context.Context, r *types.Resume) error
	DeleteResume(ctx context.Context, id, userID uuid.UUID) error
	GetDetailedResume(ctx context.Context, userID uuid.UUID) (*types.DetailedResume, error)
	UpsertDetailedResume(ctx context.Context, userID uuid.UUID, content types.ResumeContent) (*types.DetailedResume, error)
}

// Service provides business logic for resumes and profiles.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService creates a Service.
func NewService(store Store, logger *zap.Logger) *Service {
	logger = logging.OrNop(logger)
	return &Service{store: store, logger: logger}
}

// ListResult is one page of a user's resumes.
type ListResult struct {
	Resumes []types.ResumeSummary `json:"resumes"`
	Total   int                   `json:"total"`
	Limit   int                   `json:"limit"`
	Offset  int                   `json:"offset"`
}

func resolveTemplate(t types.Template) (types.Template, error) {
	if t == "" {
		return types.DefaultTemplate, nil
	}
	if !t.Valid() {
		return "", &ErrValidation{Field: "template", Message: fmt.Sprintf("unknown template %q", t)}
	}
	return t, nil
}

// Create builds a resume from the user's default profile and overrides it
// with whatever the request supplies.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req *types.CreateResumeRequest) (*types.Resume, error) {
	template, err := resolveTemplate(req.Template)
	if err != nil {
		return nil, err
	}

	content, err := s.profileContent(ctx, userID)
	if err != nil {
		return nil, err
	}
	req.ApplySections(&content)

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = DefaultTitle
	}

	r := &types.Resume{
		UserID:   userID,
		Title:    title,
		Template: template,
		IsPublic: req.IsPublic,
		Content:  content,
	}
	if err := s.insert(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// CreateFromContent stores content as a new resume. Used by tailoring.
func (s *Service) CreateFromContent(ctx context.Context, userID uuid.UUID, title string, template types.Template, content types.ResumeContent) (*types.Resume, error) {
	template, err := resolveTemplate(template)
	if err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = TailoredTitle
	}

	r := &types.Resume{
		UserID:   userID,
		Title:    title,
		Template: template,
		Content:  content.Clone(),
	}
	if err := s.insert(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) insert(ctx context.Context, r *types.Resume) error {
	r.Content.AssignIDs()
	r.Content = r.Content.Normalize()
	if err := s.store.CreateResume(ctx, r); err != nil {
		return fmt.Errorf("failed to create resume: %w", err)
	}
	s.logger.Info("resume created",
		zap.String("resume_id", r.ID.String()),
		zap.String("user_id", r.UserID.String()),
		zap.String("template", string(r.Template)),
	)
	return nil
}

// Get returns a resume owned by userID. Resumes of other users are reported
// as not found.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*types.Resume, error) {
	r, err := s.store.GetResume(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}
	if r == nil || r.UserID != userID {
		return nil, &ErrNotFound{Resource: "resume", ID: id.String()}
	}
	return r, nil
}

// GetPublic returns a resume that its owner marked public.
func (s *Service) GetPublic(ctx context.Context, id uuid.UUID) (*types.Resume, error) {
	r, err := s.store.GetResume(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}
	if r == nil || !r.IsPublic {
		return nil, &ErrNotFound{Resource: "resume", ID: id.String()}
	}
	return r, nil
}

// List returns one page of the user's resumes, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) (*ListResult, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	summaries, err := s.store.ListResumesByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	total, err := s.store.CountResumesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count resumes: %w", err)
	}
	return &ListResult{Resumes: summaries, Total: total, Limit: limit, Offset: offset}, nil
}

// Update merges the request into an owned resume. Sections absent from the
// request are left untouched.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, req *types.UpdateResumeRequest) (*types.Resume, error) {
	r, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, &ErrValidation{Field: "title", Message: "must not be empty"}
		}
		r.Title = title
	}
	if req.Template != nil {
		if !req.Template.Valid() {
			return nil, &ErrValidation{Field: "template", Message: fmt.Sprintf("unknown template %q", *req.Template)}
		}
		r.Template = *req.Template
	}
	if req.IsPublic != nil {
		r.IsPublic = *req.IsPublic
	}
	req.ApplySections(&r.Content)

	if err := s.Save(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Save writes r back to the store after assigning missing entry IDs.
func (s *Service) Save(ctx context.Context, r *types.Resume) error {
	r.Content.AssignIDs()
	r.Content = r.Content.Normalize()
	if err := s.store.UpdateResume(ctx, r); err != nil {
		return fmt.Errorf("failed to save resume: %w", s.notFound(err, r.ID))
	}
	return nil
}

// Delete removes an owned resume.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.store.DeleteResume(ctx, id, userID); err != nil {
		return s.notFound(err, id)
	}
	s.logger.Info("resume deleted", zap.String("resume_id", id.String()), zap.String("user_id", userID.String()))
	return nil
}

// Duplicate copies an owned resume into a new private one titled "<title> (Copy)".
func (s *Service) Duplicate(ctx context.Context, userID, id uuid.UUID) (*types.Resume, error) {
	src, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	r := &types.Resume{
		UserID:   userID,
		Title:    src.Title + copySuffix,
		Template: src.Template,
		Content:  src.Content.Clone(),
	}
	if err := s.insert(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Profile returns the user's default profile, or an empty one if none has
// been saved yet.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*types.DetailedResume, error) {
	p, err := s.store.GetDetailedResume(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if p == nil {
		return &types.DetailedResume{UserID: userID, Content: types.ResumeContent{}.Normalize()}, nil
	}
	return p, nil
}

// ReplaceProfile stores content as the user's default profile.
func (s *Service) ReplaceProfile(ctx context.Context, userID uuid.UUID, content types.ResumeContent) (*types.DetailedResume, error) {
	content.AssignIDs()
	p, err := s.store.UpsertDetailedResume(ctx, userID, content.Normalize())
	if err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return p, nil
}

// SyncProfileFromResume copies an owned resume's content into the profile.
func (s *Service) SyncProfileFromResume(ctx context.Context, userID, resumeID uuid.UUID) (*types.DetailedResume, error) {
	r, err := s.Get(ctx, userID, resumeID)
	if err != nil {
		return nil, err
	}
	return s.ReplaceProfile(ctx, userID, r.Content.Clone())
}

func (s *Service) profileContent(ctx context.Context, userID uuid.UUID) (types.ResumeContent, error) {
	p, err := s.store.GetDetailedResume(ctx, userID)
	if err != nil {
		return types.ResumeContent{}, fmt.Errorf("failed to load profile: %w", err)
	}
	if p == nil {
		return types.ResumeContent{}.Normalize(), nil
	}
	return p.Content.Clone(), nil
}
