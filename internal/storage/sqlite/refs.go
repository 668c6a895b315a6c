package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/gophdraw/internal/models"
	"github.com/iudanet/gophdraw/internal/storage"
)

const keyCurrentBranch = "current_branch"

// SaveBranch creates or moves a branch
func (s *Storage) SaveBranch(ctx context.Context, branch models.Branch) error {
	query := `
		INSERT INTO branches (name, head, protected)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET head = excluded.head, protected = excluded.protected
	`

	_, err := s.db.ExecContext(ctx, query, branch.Name, branch.Head.String(), boolToInt(branch.Protected))
	if err != nil {
		return fmt.Errorf("failed to save branch: %w", err)
	}
	return nil
}

// DeleteBranch removes a branch by name
func (s *Storage) DeleteBranch(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM branches WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete branch: %w", err)
	}
	return nil
}

// LoadBranches returns all stored branches
func (s *Storage) LoadBranches(ctx context.Context) (_ []models.Branch, err error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, head, protected FROM branches ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query branches: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	branches := make([]models.Branch, 0)
	for rows.Next() {
		var (
			branch    models.Branch
			head      string
			protected int
		)
		if err := rows.Scan(&branch.Name, &head, &protected); err != nil {
			return nil, fmt.Errorf("failed to scan branch: %w", err)
		}
		if branch.Head, err = uuid.Parse(head); err != nil {
			return nil, fmt.Errorf("invalid head of branch %s: %w", branch.Name, err)
		}
		branch.Protected = intToBool(protected)
		branches = append(branches, branch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return branches, nil
}

// SaveTag stores a tag
func (s *Storage) SaveTag(ctx context.Context, tag models.Tag) error {
	query := `
		INSERT INTO tags (name, version_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET version_id = excluded.version_id, created_at = excluded.created_at
	`

	_, err := s.db.ExecContext(ctx, query, tag.Name, tag.VersionID.String(), tag.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save tag: %w", err)
	}
	return nil
}

// LoadTags returns all stored tags
func (s *Storage) LoadTags(ctx context.Context) (_ []models.Tag, err error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, version_id, created_at FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	tags := make([]models.Tag, 0)
	for rows.Next() {
		var (
			tag       models.Tag
			versionID string
			createdAt int64
		)
		if err := rows.Scan(&tag.Name, &versionID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		if tag.VersionID, err = uuid.Parse(versionID); err != nil {
			return nil, fmt.Errorf("invalid version of tag %s: %w", tag.Name, err)
		}
		tag.CreatedAt = time.Unix(0, createdAt).UTC()
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return tags, nil
}

// SaveCurrentBranch saves the name of the checked out branch
func (s *Storage) SaveCurrentBranch(ctx context.Context, name string) error {
	query := `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	if _, err := s.db.ExecContext(ctx, query, keyCurrentBranch, name); err != nil {
		return fmt.Errorf("failed to save current branch: %w", err)
	}
	return nil
}

// GetCurrentBranch retrieves the checked out branch name.
// Returns storage.ErrMetadataNotFound if it was never saved.
func (s *Storage) GetCurrentBranch(ctx context.Context) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, keyCurrentBranch).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", storage.ErrMetadataNotFound
		}
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	return name, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func intToBool(i int) bool {
	return i != 0
}
