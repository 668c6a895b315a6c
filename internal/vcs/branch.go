package vcs

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/iudanet/gophdraw/internal/models"
	"github.com/iudanet/gophdraw/internal/validation"
)

// CreateBranch создает ветку, указывающую на start
// (по умолчанию - на голову текущей ветки).
func (vc *VersionControl) CreateBranch(name string, start *uuid.UUID) error {
	if err := validation.ValidateRefName(name); err != nil {
		return err
	}

	vc.mu.Lock()
	if _, exists := vc.branches[name]; exists {
		vc.mu.Unlock()
		return refError(ErrBranchExists, name)
	}

	head := vc.branches[vc.current].Head
	if start != nil {
		if _, ok := vc.versions[*start]; !ok {
			vc.mu.Unlock()
			return refError(ErrVersionNotFound, start.String())
		}
		head = *start
	}

	branch := &models.Branch{Name: name, Head: head}
	vc.branches[name] = branch
	vc.mu.Unlock()

	vc.persistBranch(name)
	vc.logger.Info("Branch created", "branch", name, "head", head)
	return nil
}

// Checkout делает ветку текущей и возвращает ее голову.
func (vc *VersionControl) Checkout(name string) (uuid.UUID, error) {
	vc.mu.Lock()
	branch, ok := vc.branches[name]
	if !ok {
		vc.mu.Unlock()
		return uuid.Nil, refError(ErrBranchNotFound, name)
	}
	vc.current = name
	head := branch.Head
	vc.mu.Unlock()

	vc.persistCurrent()
	vc.logger.Info("Branch checked out", "branch", name, "head", head)
	return head, nil
}

// DeleteBranch удаляет ветку. Защищенные ветки (main) и текущую
// ветку удалить нельзя. Версии ветки остаются в графе.
func (vc *VersionControl) DeleteBranch(name string) error {
	vc.mu.Lock()
	branch, ok := vc.branches[name]
	switch {
	case name == models.MainBranch || (ok && branch.Protected):
		vc.mu.Unlock()
		return refError(ErrProtectedBranch, name)
	case !ok:
		vc.mu.Unlock()
		return refError(ErrBranchNotFound, name)
	case name == vc.current:
		vc.mu.Unlock()
		return refError(ErrCurrentBranch, name)
	}
	delete(vc.branches, name)
	vc.mu.Unlock()

	vc.persistBranch(name)
	vc.logger.Info("Branch deleted", "branch", name)
	return nil
}

// Branch returns a copy of the named branch.
func (vc *VersionControl) Branch(name string) (models.Branch, error) {
	vc.mu.RLock()
	defer vc.mu.RUnlock()

	branch, ok := vc.branches[name]
	if !ok {
		return models.Branch{}, refError(ErrBranchNotFound, name)
	}
	return *branch, nil
}

// Branches returns copies of all branches sorted by name.
func (vc *VersionControl) Branches() []models.Branch {
	vc.mu.RLock()
	result := make([]models.Branch, 0, len(vc.branches))
	for _, b := range vc.branches {
		result = append(result, *b)
	}
	vc.mu.RUnlock()

	slices.SortFunc(result, func(a, b models.Branch) int {
		return strings.Compare(a.Name, b.Name)
	})
	return result
}

// CurrentBranch returns the name of the checked out branch.
func (vc *VersionControl) CurrentBranch() string {
	vc.mu.RLock()
	defer vc.mu.RUnlock()

	return vc.current
}
