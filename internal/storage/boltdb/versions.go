package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/gophdraw/internal/models"
	"github.com/iudanet/gophdraw/internal/storage"
)

// SaveVersion stores or replaces a version keyed by its ID
func (s *Storage) SaveVersion(ctx context.Context, version *models.Version) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	data, err := json.Marshal(version)
	if err != nil {
		return fmt.Errorf("failed to marshal version: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketVersions)
		if err != nil {
			return err
		}
		if err := b.Put(version.ID[:], data); err != nil {
			return fmt.Errorf("failed to save version: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// LoadVersions returns all stored versions
func (s *Storage) LoadVersions(ctx context.Context) ([]*models.Version, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var versions []*models.Version

	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketVersions)
		if err != nil {
			return err
		}

		return b.ForEach(func(k, v []byte) error {
			version := &models.Version{}
			if err := json.Unmarshal(v, version); err != nil {
				return fmt.Errorf("failed to unmarshal version: %w", err)
			}
			versions = append(versions, version)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load versions: %w", err)
	}

	return versions, nil
}
