package vcs

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/iudanet/gophdraw/internal/models"
	"github.com/iudanet/gophdraw/internal/storage"
)

// Restore восстанавливает граф из хранилища. Если хранилище пустое,
// создается новый граф (как New), и его корень сохраняется в sink,
// переданный через WithSink.
//
// Версии добавляются только после всех своих родителей, поэтому
// ссылки на отсутствующие версии и циклы отвергаются с ErrInvalidHistory.
func Restore(ctx context.Context, loader storage.Loader, opts ...Option) (*VersionControl, error) {
	versions, err := loader.LoadVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load versions: %w", err)
	}
	if len(versions) == 0 {
		return New(opts...), nil
	}

	vc := newEmpty(opts...)
	if err := vc.insertOrdered(versions); err != nil {
		return nil, err
	}

	branches, err := loader.LoadBranches(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load branches: %w", err)
	}
	for _, b := range branches {
		if _, ok := vc.versions[b.Head]; !ok {
			return nil, fmt.Errorf("%w: branch %s points to missing version %s", ErrInvalidHistory, b.Name, b.Head)
		}
		branch := b
		if branch.Name == models.MainBranch {
			branch.Protected = true
		}
		vc.branches[branch.Name] = &branch
	}
	if _, ok := vc.branches[models.MainBranch]; !ok {
		return nil, fmt.Errorf("%w: branch %s is missing", ErrInvalidHistory, models.MainBranch)
	}

	tags, err := loader.LoadTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	for _, t := range tags {
		if _, ok := vc.versions[t.VersionID]; !ok {
			return nil, fmt.Errorf("%w: tag %s points to missing version %s", ErrInvalidHistory, t.Name, t.VersionID)
		}
		vc.tags[t.Name] = t
	}

	current, err := loader.GetCurrentBranch(ctx)
	switch {
	case errors.Is(err, storage.ErrMetadataNotFound):
		current = models.MainBranch
	case err != nil:
		return nil, fmt.Errorf("failed to load current branch: %w", err)
	}
	if _, ok := vc.branches[current]; !ok {
		vc.logger.Warn("Stored current branch does not exist, using main", "branch", current)
		current = models.MainBranch
	}
	vc.current = current

	vc.logger.Info("Version graph restored",
		"versions", len(vc.versions),
		"branches", len(vc.branches),
		"tags", len(vc.tags),
		"current", vc.current)
	return vc, nil
}

// insertOrdered добавляет версии так, что родители идут раньше детей
// (алгоритм Кана). Оставшиеся версии ссылаются на отсутствующих
// родителей или образуют цикл.
func (vc *VersionControl) insertOrdered(versions []*models.Version) error {
	byID := make(map[uuid.UUID]*models.Version, len(versions))
	for _, v := range versions {
		if _, dup := byID[v.ID]; dup {
			return fmt.Errorf("%w: duplicate version %s", ErrInvalidHistory, v.ID)
		}
		byID[v.ID] = v
	}

	pending := make(map[uuid.UUID]int, len(versions))
	children := make(map[uuid.UUID][]uuid.UUID)
	var ready []uuid.UUID
	for _, v := range versions {
		missing := 0
		for _, p := range v.Parents {
			if _, ok := byID[p]; !ok {
				return fmt.Errorf("%w: version %s references missing parent %s", ErrInvalidHistory, v.ID, p)
			}
			missing++
			children[p] = append(children[p], v.ID)
		}
		pending[v.ID] = missing
		if missing == 0 {
			ready = append(ready, v.ID)
		}
	}
	if len(ready) == 0 {
		return fmt.Errorf("%w: no root version", ErrInvalidHistory)
	}
	slices.SortFunc(ready, func(a, b uuid.UUID) int { return compareVersions(byID[a], byID[b]) })

	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		v := byID[id]
		if v.Parents == nil {
			v.Parents = []uuid.UUID{}
		}
		vc.versions[id] = v

		for _, child := range children[id] {
			pending[child]--
			if pending[child] == 0 {
				ready = append(ready, child)
			}
		}
	}

	if len(vc.versions) != len(versions) {
		return fmt.Errorf("%w: %d versions form a cycle", ErrInvalidHistory, len(versions)-len(vc.versions))
	}
	return nil
}
