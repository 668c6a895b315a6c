package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/gophdraw/internal/models"
)

// SaveVersion inserts a version or replaces its mutable columns (tags)
func (s *Storage) SaveVersion(ctx context.Context, version *models.Version) error {
	parents, err := marshalList(version.Parents)
	if err != nil {
		return fmt.Errorf("failed to marshal parents: %w", err)
	}
	operations, err := json.Marshal(version.Operations)
	if err != nil {
		return fmt.Errorf("failed to marshal operations: %w", err)
	}
	discarded, err := marshalList(version.Discarded)
	if err != nil {
		return fmt.Errorf("failed to marshal discarded operations: %w", err)
	}
	tags, err := marshalList(version.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	query := `
		INSERT INTO versions (id, author, message, created_at, parents, operations, discarded, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET tags = excluded.tags
	`

	_, err = s.db.ExecContext(ctx, query,
		version.ID.String(),
		version.Author,
		version.Message,
		version.Timestamp.UnixNano(),
		parents,
		string(operations),
		discarded,
		tags,
	)
	if err != nil {
		return fmt.Errorf("failed to save version: %w", err)
	}

	return nil
}

// LoadVersions returns all stored versions ordered by creation time
func (s *Storage) LoadVersions(ctx context.Context) (_ []*models.Version, err error) {
	query := `
		SELECT id, author, message, created_at, parents, operations, discarded, tags
		FROM versions
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query versions: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return scanVersions(rows)
}

func scanVersions(rows *sql.Rows) ([]*models.Version, error) {
	versions := make([]*models.Version, 0)

	for rows.Next() {
		var (
			id                                 string
			createdAt                          int64
			parents, ops, discarded, tagsValue string
			version                            models.Version
		)

		err := rows.Scan(&id, &version.Author, &version.Message, &createdAt, &parents, &ops, &discarded, &tagsValue)
		if err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}

		if version.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid version id %q: %w", id, err)
		}
		version.Timestamp = time.Unix(0, createdAt).UTC()

		if err := json.Unmarshal([]byte(parents), &version.Parents); err != nil {
			return nil, fmt.Errorf("failed to unmarshal parents of %s: %w", id, err)
		}
		if err := json.Unmarshal([]byte(ops), &version.Operations); err != nil {
			return nil, fmt.Errorf("failed to unmarshal operations of %s: %w", id, err)
		}
		if err := json.Unmarshal([]byte(discarded), &version.Discarded); err != nil {
			return nil, fmt.Errorf("failed to unmarshal discarded operations of %s: %w", id, err)
		}
		if err := json.Unmarshal([]byte(tagsValue), &version.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags of %s: %w", id, err)
		}
		// пустые списки храним как "[]", а в модели они nil
		if len(version.Discarded) == 0 {
			version.Discarded = nil
		}
		if len(version.Tags) == 0 {
			version.Tags = nil
		}

		versions = append(versions, &version)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return versions, nil
}

// marshalList кодирует срез в JSON, nil превращается в "[]"
func marshalList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
