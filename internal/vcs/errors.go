package vcs

import (
	"errors"
	"fmt"

	"github.com/iudanet/gophdraw/internal/models"
)

// Ошибки хранилища версий. Каждая оборачивает одну из общих ошибок
// models, поэтому вызывающий код может проверять как конкретную
// ошибку, так и ее класс через errors.Is.
var (
	// ErrBranchNotFound indicates that a branch does not exist
	ErrBranchNotFound = fmt.Errorf("branch %w", models.ErrNotFound)

	// ErrVersionNotFound indicates that a version does not exist
	ErrVersionNotFound = fmt.Errorf("version %w", models.ErrNotFound)

	// ErrTagNotFound indicates that a tag does not exist
	ErrTagNotFound = fmt.Errorf("tag %w", models.ErrNotFound)

	// ErrEntityNotFound indicates that an entity never existed at a version
	ErrEntityNotFound = fmt.Errorf("entity %w", models.ErrNotFound)

	// ErrEntityDeleted indicates that an entity is deleted at a version
	ErrEntityDeleted = fmt.Errorf("entity is deleted: %w", models.ErrNotFound)

	// ErrBranchExists indicates that the branch name is taken
	ErrBranchExists = fmt.Errorf("branch %w", models.ErrAlreadyExists)

	// ErrTagExists indicates that the tag name is taken
	ErrTagExists = fmt.Errorf("tag %w", models.ErrAlreadyExists)

	// ErrProtectedBranch indicates an attempt to delete a protected branch
	ErrProtectedBranch = fmt.Errorf("branch is protected: %w", models.ErrInvalidState)

	// ErrCurrentBranch indicates an attempt to delete the checked out branch
	ErrCurrentBranch = fmt.Errorf("branch is checked out: %w", models.ErrInvalidState)

	// ErrSelfMerge indicates an attempt to merge a branch into itself
	ErrSelfMerge = fmt.Errorf("cannot merge into itself: %w", models.ErrInvalidState)

	// ErrNoCommonAncestor indicates a merge of disjoint histories
	ErrNoCommonAncestor = fmt.Errorf("no common ancestor: %w", models.ErrInvalidState)

	// ErrUnknownStrategy indicates a merge strategy this build does not know
	ErrUnknownStrategy = fmt.Errorf("unknown merge strategy: %w", models.ErrInvalidState)

	// ErrInvalidHistory indicates persisted state that cannot form a valid graph
	ErrInvalidHistory = fmt.Errorf("invalid history: %w", models.ErrInvalidState)

	// ErrTraversalLimit indicates that an ancestry walk visited more versions than allowed
	ErrTraversalLimit = errors.New("ancestry traversal limit exceeded")
)

func refError(err error, what string) error {
	return fmt.Errorf("%w: %s", err, what)
}
