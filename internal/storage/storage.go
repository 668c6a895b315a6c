// Package storage defines the persistence contract of the version store.
//
// The in-memory graph held by vcs.VersionControl is the source of truth for
// ordering. After every successful in-memory mutation the store pushes the
// changed objects to a Sink; a Loader reads them back on startup.
package storage

import (
	"context"

	"github.com/iudanet/gophdraw/internal/models"
)

//go:generate moq -out sink_mock.go . Sink

// Sink accepts snapshots of committed state.
// Implementations must treat every call as an idempotent upsert:
// a write can be repeated after a failure.
type Sink interface {
	// SaveVersion stores a version. Called again when a tag is added to it.
	SaveVersion(ctx context.Context, version *models.Version) error

	// SaveBranch creates or moves a branch
	SaveBranch(ctx context.Context, branch models.Branch) error

	// DeleteBranch removes a branch. Deleting a missing branch is not an error.
	DeleteBranch(ctx context.Context, name string) error

	// SaveTag stores a tag
	SaveTag(ctx context.Context, tag models.Tag) error

	// SaveCurrentBranch stores the name of the checked out branch
	SaveCurrentBranch(ctx context.Context, name string) error
}

// Loader reads persisted state back.
type Loader interface {
	// LoadVersions returns every stored version in no particular order
	LoadVersions(ctx context.Context) ([]*models.Version, error)

	// LoadBranches returns every stored branch
	LoadBranches(ctx context.Context) ([]models.Branch, error)

	// LoadTags returns every stored tag
	LoadTags(ctx context.Context) ([]models.Tag, error)

	// GetCurrentBranch returns the checked out branch name.
	// Returns ErrMetadataNotFound if it was never saved.
	GetCurrentBranch(ctx context.Context) (string, error)
}

// Repository is a durable store that can both persist and restore a graph.
type Repository interface {
	Sink
	Loader

	// Close releases the underlying database
	Close() error
}
