package vcs

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"

	"github.com/iudanet/gophdraw/internal/models"
)

// Неэкспортируемые методы этого файла вызываются под vc.mu.

// IsAncestor reports whether ancestor is reachable from descendant by
// following parent edges. A version is its own ancestor.
func (vc *VersionControl) IsAncestor(ancestor, descendant uuid.UUID) (bool, error) {
	vc.mu.RLock()
	defer vc.mu.RUnlock()

	for _, id := range []uuid.UUID{ancestor, descendant} {
		if _, ok := vc.versions[id]; !ok {
			return false, refError(ErrVersionNotFound, id.String())
		}
	}
	return vc.isAncestor(ancestor, descendant)
}

// MergeBase returns the most recent common ancestor of a and b.
func (vc *VersionControl) MergeBase(a, b uuid.UUID) (uuid.UUID, error) {
	vc.mu.RLock()
	defer vc.mu.RUnlock()

	for _, id := range []uuid.UUID{a, b} {
		if _, ok := vc.versions[id]; !ok {
			return uuid.Nil, refError(ErrVersionNotFound, id.String())
		}
	}
	return vc.mergeBase(a, b)
}

// isAncestor - обход в ширину от descendant с остановкой на ancestor.
func (vc *VersionControl) isAncestor(ancestor, descendant uuid.UUID) (bool, error) {
	if ancestor == descendant {
		return true, nil
	}

	found := false
	err := vc.walk([]uuid.UUID{descendant}, func(id uuid.UUID) bool {
		found = id == ancestor
		return !found
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// ancestors возвращает множество предков start, включая саму start.
func (vc *VersionControl) ancestors(start uuid.UUID) (map[uuid.UUID]struct{}, error) {
	set := make(map[uuid.UUID]struct{})
	err := vc.walk([]uuid.UUID{start}, func(id uuid.UUID) bool {
		set[id] = struct{}{}
		return true
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// walk обходит граф в ширину от starts по ребрам к родителям, вызывая
// visit для каждой версии ровно один раз. Обход прекращается, когда visit
// возвращает false. Число посещенных версий ограничено maxTraversal.
func (vc *VersionControl) walk(starts []uuid.UUID, visit func(uuid.UUID) bool) error {
	seen := make(map[uuid.UUID]struct{}, len(starts))
	queue := make([]uuid.UUID, 0, len(starts))
	for _, id := range starts {
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			queue = append(queue, id)
		}
	}
	defer func() { vc.metrics.Traversal(len(seen)) }()

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		v, ok := vc.versions[id]
		if !ok {
			return refError(ErrVersionNotFound, id.String())
		}
		if !visit(id) {
			return nil
		}

		for _, parent := range v.Parents {
			if _, dup := seen[parent]; dup {
				continue
			}
			if len(seen) >= vc.maxTraversal {
				vc.logger.Warn("Ancestry traversal limit exceeded",
					"start", starts[0],
					"limit", vc.maxTraversal)
				return fmt.Errorf("%w: visited %d versions", ErrTraversalLimit, len(seen))
			}
			seen[parent] = struct{}{}
			queue = append(queue, parent)
		}
	}
	return nil
}

// mergeBase находит наиболее позднего общего предка a и b.
//
// Берется пересечение полных множеств предков. Из него исключаются версии,
// являющиеся предками других общих версий; среди оставшихся (их несколько
// при criss-cross слияниях) выбирается самая поздняя по времени, затем по id.
func (vc *VersionControl) mergeBase(a, b uuid.UUID) (uuid.UUID, error) {
	ofA, err := vc.ancestors(a)
	if err != nil {
		return uuid.Nil, err
	}
	ofB, err := vc.ancestors(b)
	if err != nil {
		return uuid.Nil, err
	}

	common := make(map[uuid.UUID]struct{})
	for id := range ofA {
		if _, ok := ofB[id]; ok {
			common[id] = struct{}{}
		}
	}
	if len(common) == 0 {
		return uuid.Nil, fmt.Errorf("%w: %s and %s", ErrNoCommonAncestor, a, b)
	}

	// Предки общего предка тоже общие, поэтому обход от родителей
	// всех общих версий помечает ровно доминируемые версии.
	var parents []uuid.UUID
	for id := range common {
		parents = append(parents, vc.versions[id].Parents...)
	}
	dominated := make(map[uuid.UUID]struct{})
	err = vc.walk(parents, func(id uuid.UUID) bool {
		dominated[id] = struct{}{}
		return true
	})
	if err != nil {
		return uuid.Nil, err
	}

	var best *models.Version
	for id := range common {
		if _, ok := dominated[id]; ok {
			continue
		}
		candidate := vc.versions[id]
		if best == nil || newerVersion(candidate, best) {
			best = candidate
		}
	}

	vc.logger.Debug("Merge base found",
		"a", a,
		"b", b,
		"base", best.ID,
		"common", len(common))
	return best.ID, nil
}

func newerVersion(a, b *models.Version) bool {
	if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
		return c > 0
	}
	return bytes.Compare(a.ID[:], b.ID[:]) > 0
}

// topological возвращает версии множества within, достижимые из head,
// так что каждая версия идет после своих родителей.
func (vc *VersionControl) topological(head uuid.UUID, within map[uuid.UUID]struct{}) []*models.Version {
	if _, ok := within[head]; !ok {
		return nil
	}

	type frame struct {
		id   uuid.UUID
		next int
	}

	order := make([]*models.Version, 0, len(within))
	done := make(map[uuid.UUID]struct{}, len(within))
	stack := []frame{{id: head}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		v := vc.versions[top.id]

		if top.next < len(v.Parents) {
			parent := v.Parents[top.next]
			top.next++
			if _, in := within[parent]; !in {
				continue
			}
			if _, finished := done[parent]; finished {
				continue
			}
			stack = append(stack, frame{id: parent})
			continue
		}

		done[top.id] = struct{}{}
		order = append(order, v)
		stack = stack[:len(stack)-1]
	}
	return order
}

// rangeVersions возвращает версии, достижимые из to, но не из from,
// в топологическом порядке. При from == uuid.Nil берется вся история to.
func (vc *VersionControl) rangeVersions(from, to uuid.UUID) ([]*models.Version, error) {
	reachable, err := vc.ancestors(to)
	if err != nil {
		return nil, err
	}
	if from != uuid.Nil {
		excluded, err := vc.ancestors(from)
		if err != nil {
			return nil, err
		}
		for id := range excluded {
			delete(reachable, id)
		}
	}
	return vc.topological(to, reachable), nil
}
