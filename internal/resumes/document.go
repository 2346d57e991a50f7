package resumes

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jonathan/flower-resume/internal/db"
	"github.com/jonathan/flower-resume/internal/types"
)

// Document is either a resume or the default profile, loaded so that AI
// results and uploads can be written into whichever one a request targets.
type Document struct {
	Target  types.Target
	Resume  *types.Resume
	Profile *types.DetailedResume
}

// Content returns the editable content of the document.
func (d *Document) Content() *types.ResumeContent {
	if d.Target == types.TargetProfile {
		return &d.Profile.Content
	}
	return &d.Resume.Content
}

var _ Store = (*db.DB)(nil)

// ParseResumeID parses a resume ID from a request field.
func ParseResumeID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "resume_id", Message: "must be a valid UUID"}
	}
	return id, nil
}

// LoadDocument loads the target document for userID. resumeID is ignored
// for the profile target.
func (s *Service) LoadDocument(ctx context.Context, userID uuid.UUID, target types.Target, resumeID uuid.UUID) (*Document, error) {
	switch target {
	case types.TargetProfile:
		p, err := s.Profile(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &Document{Target: target, Profile: p}, nil
	case types.TargetResume:
		r, err := s.Get(ctx, userID, resumeID)
		if err != nil {
			return nil, err
		}
		return &Document{Target: target, Resume: r}, nil
	default:
		return nil, &ErrValidation{Field: "target", Message: "must be resume or profile"}
	}
}

// SaveDocument persists a document loaded with LoadDocument.
func (s *Service) SaveDocument(ctx context.Context, doc *Document) error {
	if doc.Target == types.TargetProfile {
		p, err := s.ReplaceProfile(ctx, doc.Profile.UserID, doc.Profile.Content)
		if err != nil {
			return err
		}
		doc.Profile = p
		return nil
	}
	return s.Save(ctx, doc.Resume)
}

// SetImageURL stores an uploaded image URL as the document's photo.
func (s *Service) SetImageURL(ctx context.Context, userID uuid.UUID, target types.Target, resumeID uuid.UUID, url string) (*Document, error) {
	doc, err := s.LoadDocument(ctx, userID, target, resumeID)
	if err != nil {
		return nil, err
	}
	doc.Content().PersonalInfo.ImageURL = url
	if err := s.SaveDocument(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// notFound converts the store's not-found sentinel into ErrNotFound.
func (s *Service) notFound(err error, id uuid.UUID) error {
	if errors.Is(err, db.ErrNotFound) {
		return &ErrNotFound{Resource: "resume", ID: id.String()}
	}
	return err
}
