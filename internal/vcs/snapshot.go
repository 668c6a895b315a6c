package vcs

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/iudanet/gophdraw/internal/crdt"
	"github.com/iudanet/gophdraw/internal/models"
)

// Snapshot восстанавливает состояние чертежа в версии id.
func (vc *VersionControl) Snapshot(id uuid.UUID) (map[uuid.UUID]crdt.EntityState, error) {
	store, err := vc.materialize(id)
	if err != nil {
		return nil, err
	}
	return store.Snapshot(), nil
}

// Entity возвращает состояние одной сущности в версии versionID.
func (vc *VersionControl) Entity(versionID, entityID uuid.UUID) (crdt.EntityState, error) {
	store, err := vc.materialize(versionID)
	if err != nil {
		return crdt.EntityState{}, err
	}

	if state, ok := store.Get(entityID); ok {
		return state, nil
	}
	if store.IsDeleted(entityID) {
		return crdt.EntityState{}, refError(ErrEntityDeleted, entityID.String())
	}
	return crdt.EntityState{}, refError(ErrEntityNotFound, entityID.String())
}

// materialize строит LWW-хранилище версии id. Операции каждой версии-предка,
// кроме отброшенных при слияниях, применяются к отдельному хранилищу,
// которое затем объединяется с результатом. Объединение коммутативно,
// поэтому порядок обхода не влияет на состояние. Версии слияния вносят
// только список отброшенных операций.
func (vc *VersionControl) materialize(id uuid.UUID) (*crdt.EntityStore, error) {
	vc.mu.RLock()
	if _, ok := vc.versions[id]; !ok {
		vc.mu.RUnlock()
		return nil, refError(ErrVersionNotFound, id.String())
	}
	versions, err := vc.rangeVersions(uuid.Nil, id)
	vc.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	store := crdt.NewEntityStore()
	dropped := discardedIn(versions)
	for _, v := range changeVersions(versions) {
		delta := crdt.NewEntityStore()
		for _, op := range v.Operations {
			if _, skip := dropped[models.IDOf(op)]; skip {
				continue
			}
			if err := models.Apply(delta, op); err != nil {
				return nil, fmt.Errorf("failed to apply operation of version %s: %w", v.ID, err)
			}
		}
		store.Merge(delta)
	}

	vc.logger.Debug("Snapshot materialized",
		"version_id", id,
		"versions", len(versions),
		"entities", store.Size())
	return store, nil
}
