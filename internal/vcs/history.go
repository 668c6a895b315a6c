package vcs

import "github.com/iudanet/gophdraw/internal/models"

// History возвращает цепочку первых родителей от головы текущей ветки,
// начиная с самой новой версии. limit <= 0 означает всю историю.
func (vc *VersionControl) History(limit int) []*models.Version {
	vc.mu.RLock()
	defer vc.mu.RUnlock()

	var history []*models.Version
	id := vc.branches[vc.current].Head
	for {
		v, ok := vc.versions[id]
		if !ok {
			break
		}
		history = append(history, v.Clone())
		if (limit > 0 && len(history) >= limit) || v.IsRoot() {
			break
		}
		id = v.FirstParent()
	}
	return history
}
