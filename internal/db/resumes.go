package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/flower-resume/internal/types"
)

// DefaultListLimit caps resume listings when no limit is given.
const DefaultListLimit = 50

const resumeColumns = `id, user_id, title, template, is_public, content, created_at, updated_at`

func scanResume(row pgx.Row) (*types.Resume, error) {
	var (
		r       types.Resume
		content []byte
	)
	if err := row.Scan(&r.ID, &r.UserID, &r.Title, &r.Template, &r.IsPublic, &content, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	if err := decodeContent(content, &r.Content); err != nil {
		return nil, fmt.Errorf("resume %s: %w", r.ID, err)
	}
	return &r, nil
}

func encodeContent(c types.ResumeContent) ([]byte, error) {
	data, err := json.Marshal(c.Normalize())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resume content: %w", err)
	}
	return data, nil
}

func decodeContent(data []byte, c *types.ResumeContent) error {
	if len(data) > 0 {
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to unmarshal resume content: %w", err)
		}
	}
	*c = c.Normalize()
	return nil
}

// CreateResume inserts r and fills in its ID and timestamps.
func (db *DB) CreateResume(ctx context.Context, r *types.Resume) error {
	content, err := encodeContent(r.Content)
	if err != nil {
		return err
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO resumes (id, user_id, title, template, is_public, content)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`,
		r.ID, r.UserID, r.Title, string(r.Template), r.IsPublic, content,
	).Scan(&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create resume: %w", err)
	}
	return nil
}

// GetResume retrieves a resume by ID regardless of owner. Returns nil, nil when absent.
func (db *DB) GetResume(ctx context.Context, id uuid.UUID) (*types.Resume, error) {
	r, err := scanResume(db.pool.QueryRow(ctx,
		`SELECT `+resumeColumns+` FROM resumes WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}
	return r, nil
}

// ListResumesByUser lists a user's resumes, most recently updated first.
func (db *DB) ListResumesByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]types.ResumeSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, title, template, is_public,
		        COALESCE(content->'personal_info'->>'job_title', ''),
		        created_at, updated_at
		 FROM resumes
		 WHERE user_id = $1
		 ORDER BY updated_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	defer rows.Close()

	summaries := []types.ResumeSummary{}
	for rows.Next() {
		var s types.ResumeSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Template, &s.IsPublic, &s.JobTitle, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan resume: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate resumes: %w", err)
	}
	return summaries, nil
}

// CountResumesByUser returns how many resumes a user owns.
func (db *DB) CountResumesByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM resumes WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count resumes: %w", err)
	}
	return n, nil
}

// UpdateResume replaces the stored title, template, visibility and content of
// r. The row must belong to r.UserID.
func (db *DB) UpdateResume(ctx context.Context, r *types.Resume) error {
	content, err := encodeContent(r.Content)
	if err != nil {
		return err
	}

	err = db.pool.QueryRow(ctx,
		`UPDATE resumes
		 SET title = $1, template = $2, is_public = $3, content = $4, updated_at = NOW()
		 WHERE id = $5 AND user_id = $6
		 RETURNING updated_at`,
		r.Title, string(r.Template), r.IsPublic, content, r.ID, r.UserID,
	).Scan(&r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("resume %s: %w", r.ID, ErrNotFound)
		}
		return fmt.Errorf("failed to update resume: %w", err)
	}
	return nil
}

// DeleteResume deletes a resume owned by userID.
func (db *DB) DeleteResume(ctx context.Context, id, userID uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM resumes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete resume: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("resume %s: %w", id, ErrNotFound)
	}
	return nil
}
