// Package resumestest provides an in-memory resumes.Store for tests.
package resumestest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/flower-resume/internal/db"
	"github.com/jonathan/flower-resume/internal/types"
)

// Store keeps resumes and profiles in maps. It copies documents through
// JSON on the way in and out so callers never share memory with it, the
// same way a round trip through Postgres behaves.
type Store struct {
	mu       sync.Mutex
	resumes  map[uuid.UUID]types.Resume
	profiles map[uuid.UUID]types.DetailedResume
	clock    time.Time

	// Err, when set, is returned by every method.
	Err error
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		resumes:  make(map[uuid.UUID]types.Resume),
		profiles: make(map[uuid.UUID]types.DetailedResume),
		clock:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick returns a strictly increasing timestamp so ordering is deterministic.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func copyContent(c types.ResumeContent) types.ResumeContent {
	data, err := json.Marshal(c.Normalize())
	if err != nil {
		panic(fmt.Sprintf("resumestest: marshal content: %v", err))
	}
	var out types.ResumeContent
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("resumestest: unmarshal content: %v", err))
	}
	return out.Normalize()
}

// CreateResume stores r, assigning an ID and timestamps.
func (s *Store) CreateResume(_ context.Context, r *types.Resume) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	now := s.tick()
	r.CreatedAt, r.UpdatedAt = now, now
	stored := *r
	stored.Content = copyContent(r.Content)
	s.resumes[r.ID] = stored
	return nil
}

// GetResume returns nil, nil when the resume does not exist.
func (s *Store) GetResume(_ context.Context, id uuid.UUID) (*types.Resume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	r, ok := s.resumes[id]
	if !ok {
		return nil, nil
	}
	r.Content = copyContent(r.Content)
	return &r, nil
}

// ListResumesByUser lists newest-updated first.
func (s *Store) ListResumesByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]types.ResumeSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []types.ResumeSummary{}
	for _, r := range s.resumes {
		if r.UserID != userID {
			continue
		}
		out = append(out, types.ResumeSummary{
			ID:        r.ID,
			Title:     r.Title,
			Template:  r.Template,
			IsPublic:  r.IsPublic,
			JobTitle:  r.Content.PersonalInfo.JobTitle,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if offset >= len(out) {
		return []types.ResumeSummary{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// CountResumesByUser counts a user's resumes.
func (s *Store) CountResumesByUser(_ context.Context, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	n := 0
	for _, r := range s.resumes {
		if r.UserID == userID {
			n++
		}
	}
	return n, nil
}

// UpdateResume replaces a resume owned by r.UserID.
func (s *Store) UpdateResume(_ context.Context, r *types.Resume) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	existing, ok := s.resumes[r.ID]
	if !ok || existing.UserID != r.UserID {
		return fmt.Errorf("resume %s: %w", r.ID, db.ErrNotFound)
	}
	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = s.tick()
	stored := *r
	stored.Content = copyContent(r.Content)
	s.resumes[r.ID] = stored
	return nil
}

// DeleteResume deletes a resume owned by userID.
func (s *Store) DeleteResume(_ context.Context, id, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	existing, ok := s.resumes[id]
	if !ok || existing.UserID != userID {
		return fmt.Errorf("resume %s: %w", id, db.ErrNotFound)
	}
	delete(s.resumes, id)
	return nil
}

// GetDetailedResume returns nil, nil when the user has no profile.
func (s *Store) GetDetailedResume(_ context.Context, userID uuid.UUID) (*types.DetailedResume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	p.Content = copyContent(p.Content)
	return &p, nil
}

// UpsertDetailedResume creates or replaces the user's profile.
func (s *Store) UpsertDetailedResume(_ context.Context, userID uuid.UUID, content types.ResumeContent) (*types.DetailedResume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	now := s.tick()
	p, ok := s.profiles[userID]
	if !ok {
		p = types.DetailedResume{ID: uuid.New(), UserID: userID, CreatedAt: now}
	}
	p.UpdatedAt = now
	p.Content = copyContent(content)
	s.profiles[userID] = p

	out := p
	out.Content = copyContent(p.Content)
	return &out, nil
}
