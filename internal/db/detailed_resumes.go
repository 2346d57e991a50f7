package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/flower-resume/internal/types"
)

// GetDetailedResume retrieves a user's default profile. Returns nil, nil when
// the user has not saved one yet.
func (db *DB) GetDetailedResume(ctx context.Context, userID uuid.UUID) (*types.DetailedResume, error) {
	var (
		d       types.DetailedResume
		content []byte
	)
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, content, created_at, updated_at
		 FROM detailed_resumes WHERE user_id = $1`,
		userID,
	).Scan(&d.ID, &d.UserID, &content, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get detailed resume: %w", err)
	}
	if err := decodeContent(content, &d.Content); err != nil {
		return nil, err
	}
	return &d, nil
}

// UpsertDetailedResume creates or replaces a user's default profile.
func (db *DB) UpsertDetailedResume(ctx context.Context, userID uuid.UUID, content types.ResumeContent) (*types.DetailedResume, error) {
	data, err := encodeContent(content)
	if err != nil {
		return nil, err
	}

	d := types.DetailedResume{UserID: userID, Content: content.Normalize()}
	err = db.pool.QueryRow(ctx,
		`INSERT INTO detailed_resumes (user_id, content)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET content = EXCLUDED.content, updated_at = NOW()
		 RETURNING id, created_at, updated_at`,
		userID, data,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert detailed resume: %w", err)
	}
	return &d, nil
}
