package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/gophdraw/internal/models"
	"github.com/iudanet/gophdraw/internal/storage"
)

// SaveBranch creates or moves a branch
func (s *Storage) SaveBranch(ctx context.Context, branch models.Branch) error {
	return s.put(bucketBranches, branch.Name, branch)
}

// DeleteBranch removes a branch by name
func (s *Storage) DeleteBranch(ctx context.Context, name string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketBranches)
		if err != nil {
			return err
		}
		// Delete на отсутствующем ключе ошибку не возвращает
		if err := b.Delete([]byte(name)); err != nil {
			return fmt.Errorf("failed to delete branch: %w", err)
		}
		return nil
	})
}

// SaveTag stores a tag
func (s *Storage) SaveTag(ctx context.Context, tag models.Tag) error {
	return s.put(bucketTags, tag.Name, tag)
}

// LoadBranches returns all stored branches
func (s *Storage) LoadBranches(ctx context.Context) ([]models.Branch, error) {
	var branches []models.Branch
	err := s.forEach(bucketBranches, func(data []byte) error {
		var branch models.Branch
		if err := json.Unmarshal(data, &branch); err != nil {
			return fmt.Errorf("failed to unmarshal branch: %w", err)
		}
		branches = append(branches, branch)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load branches: %w", err)
	}
	return branches, nil
}

// LoadTags returns all stored tags
func (s *Storage) LoadTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := s.forEach(bucketTags, func(data []byte) error {
		var tag models.Tag
		if err := json.Unmarshal(data, &tag); err != nil {
			return fmt.Errorf("failed to unmarshal tag: %w", err)
		}
		tags = append(tags, tag)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	return tags, nil
}

func (s *Storage) put(name []byte, key string, value any) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, name)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(key), data); err != nil {
			return fmt.Errorf("failed to save %s: %w", name, err)
		}
		return nil
	})
}

func (s *Storage) forEach(name []byte, fn func(data []byte) error) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, name)
		if err != nil {
			return err
		}
		return b.ForEach(func(_, v []byte) error {
			return fn(v)
		})
	})
}
