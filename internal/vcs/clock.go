package vcs

import (
	"github.com/google/uuid"

	"github.com/iudanet/gophdraw/internal/crdt"
)

// Clock возвращает часы Лэмпорта автора actor, продолжающие наибольший
// счетчик операций в графе. Для uuid.Nil автор выбирается случайно.
func (vc *VersionControl) Clock(actor uuid.UUID) *crdt.LamportClock {
	clock := crdt.NewLamportClock()
	if actor != uuid.Nil {
		clock = crdt.NewLamportClockWithActor(actor)
	}

	vc.mu.RLock()
	var latest uint64
	for _, v := range vc.versions {
		for _, op := range v.Operations {
			latest = max(latest, op.Stamp().Counter)
		}
	}
	vc.mu.RUnlock()

	clock.SetCounter(latest)
	return clock
}
