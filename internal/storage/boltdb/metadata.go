package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/gophdraw/internal/storage"
)

const (
	keyCurrentBranch = "current_branch"
)

// SaveCurrentBranch saves the name of the checked out branch
func (s *Storage) SaveCurrentBranch(ctx context.Context, name string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketMetadata)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(keyCurrentBranch), []byte(name)); err != nil {
			return fmt.Errorf("failed to save current branch: %w", err)
		}
		return nil
	})
}

// GetCurrentBranch retrieves the checked out branch name.
// Returns storage.ErrMetadataNotFound if it was never saved.
func (s *Storage) GetCurrentBranch(ctx context.Context) (string, error) {
	if s.db == nil {
		return "", storage.ErrStorageClosed
	}

	var name string
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketMetadata)
		if err != nil {
			return err
		}
		value := b.Get([]byte(keyCurrentBranch))
		if value == nil {
			return storage.ErrMetadataNotFound
		}
		// значение валидно только внутри транзакции
		name = string(value)
		return nil
	})
	if err != nil {
		return "", err
	}

	return name, nil
}
