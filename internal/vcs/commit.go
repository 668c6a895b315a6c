package vcs

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/iudanet/gophdraw/internal/metrics"
	"github.com/iudanet/gophdraw/internal/models"
	"github.com/iudanet/gophdraw/internal/validation"
)

// Commit создает версию на текущей ветке. Родитель новой версии -
// голова ветки на момент вызова; если голова успела сдвинуться,
// возвращается models.ErrVersionConflict и вызывающий должен повторить.
func (vc *VersionControl) Commit(author, message string, ops []models.Operation) (uuid.UUID, error) {
	vc.mu.RLock()
	branch := vc.current
	head := vc.branches[branch].Head
	vc.mu.RUnlock()

	return vc.CommitOnBranch(branch, head, author, message, ops)
}

// CommitOnBranch создает версию на ветке branch с родителем expectedHead.
// Голова ветки переводится на новую версию, только если она все еще
// равна expectedHead (compare-and-swap).
func (vc *VersionControl) CommitOnBranch(branch string, expectedHead uuid.UUID, author, message string, ops []models.Operation) (uuid.UUID, error) {
	if len(ops) == 0 {
		vc.metrics.Commit(metrics.CommitNoChanges)
		return uuid.Nil, models.ErrNoChanges
	}
	if err := validation.ValidateAuthor(author); err != nil {
		vc.metrics.Commit(metrics.CommitError)
		return uuid.Nil, err
	}

	version := &models.Version{
		ID:         uuid.New(),
		Parents:    []uuid.UUID{expectedHead},
		Author:     author,
		Message:    message,
		Timestamp:  vc.now(),
		Operations: slices.Clone(ops),
	}

	if err := vc.appendVersion(branch, expectedHead, version); err != nil {
		if errors.Is(err, models.ErrVersionConflict) {
			vc.metrics.Commit(metrics.CommitVersionConflict)
		} else {
			vc.metrics.Commit(metrics.CommitError)
		}
		return uuid.Nil, err
	}

	vc.persistVersion(version.ID)
	vc.persistBranch(branch)

	vc.metrics.Commit(metrics.CommitOK)
	vc.logger.Info("Version committed",
		"branch", branch,
		"version_id", version.ID,
		"parent", expectedHead,
		"author", author,
		"operations", len(ops))

	return version.ID, nil
}

// appendVersion добавляет версию в граф и переводит на нее голову ветки,
// если голова равна expectedHead.
func (vc *VersionControl) appendVersion(branch string, expectedHead uuid.UUID, version *models.Version) error {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	b, ok := vc.branches[branch]
	if !ok {
		return refError(ErrBranchNotFound, branch)
	}
	if b.Head != expectedHead {
		return fmt.Errorf("%w: branch %s is at %s, expected %s",
			models.ErrVersionConflict, branch, b.Head, expectedHead)
	}
	for _, parent := range version.Parents {
		if _, exists := vc.versions[parent]; !exists {
			return refError(ErrVersionNotFound, parent.String())
		}
	}

	vc.versions[version.ID] = version
	b.Head = version.ID
	return nil
}
