package vcs

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/iudanet/gophdraw/internal/models"
)

// entityChange накапливает изменения одной сущности для Diff.
type entityChange struct {
	properties []string
	added      bool
	deleted    bool
}

func (c *entityChange) touch(property string) {
	if !slices.Contains(c.properties, property) {
		c.properties = append(c.properties, property)
	}
}

// Diff классифицирует операции, достижимые из to, но не из from.
//
// Сущность считается добавленной, если в диапазоне есть AddEntity,
// удаленной - если есть DeleteEntity (добавленная и удаленная в том же
// диапазоне не попадает никуда), иначе измененной. Операции версий слияния
// и операции, отброшенные слияниями внутри диапазона, не учитываются.
// Diff(v, v) всегда пуст.
func (vc *VersionControl) Diff(from, to uuid.UUID) (*models.VersionDiff, error) {
	vc.mu.RLock()
	for _, id := range []uuid.UUID{from, to} {
		if _, ok := vc.versions[id]; !ok {
			vc.mu.RUnlock()
			return nil, refError(ErrVersionNotFound, id.String())
		}
	}
	versions, err := vc.rangeVersions(from, to)
	vc.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	diff := &models.VersionDiff{
		From:              from,
		To:                to,
		Added:             []uuid.UUID{},
		Modified:          []uuid.UUID{},
		Deleted:           []uuid.UUID{},
		ChangedProperties: make(map[uuid.UUID][]string),
	}

	changes := make(map[uuid.UUID]*entityChange)
	var order []uuid.UUID
	dropped := discardedIn(versions)
	seen := make(map[models.OperationID]struct{})

	for _, v := range changeVersions(versions) {
		for _, op := range v.Operations {
			id := models.IDOf(op)
			if _, skip := dropped[id]; skip {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			ch, ok := changes[op.Entity()]
			if !ok {
				ch = &entityChange{}
				changes[op.Entity()] = ch
				order = append(order, op.Entity())
			}

			switch o := op.(type) {
			case models.AddEntity:
				ch.added = true
				names := make([]string, 0, len(o.InitialState))
				for name := range o.InitialState {
					names = append(names, name)
				}
				slices.Sort(names)
				for _, name := range names {
					ch.touch(name)
				}
			case models.UpdateProperty:
				ch.touch(o.Property)
			case models.DeleteEntity:
				ch.deleted = true
			case models.TransformEntity:
				ch.touch(models.TransformProperty)
			default:
				return nil, fmt.Errorf("%w: %T in version %s", models.ErrUnknownOperation, op, v.ID)
			}
		}
	}

	for _, entityID := range order {
		ch := changes[entityID]
		switch {
		case ch.deleted && ch.added:
			continue
		case ch.deleted:
			diff.Deleted = append(diff.Deleted, entityID)
			continue
		case ch.added:
			diff.Added = append(diff.Added, entityID)
		default:
			diff.Modified = append(diff.Modified, entityID)
		}
		if len(ch.properties) > 0 {
			diff.ChangedProperties[entityID] = ch.properties
		}
	}
	return diff, nil
}
