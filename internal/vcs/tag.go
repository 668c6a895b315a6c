package vcs

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/iudanet/gophdraw/internal/models"
	"github.com/iudanet/gophdraw/internal/validation"
)

// CreateTag создает неизменяемый тег на версии и добавляет его имя
// в список тегов версии.
func (vc *VersionControl) CreateTag(name string, versionID uuid.UUID) error {
	if err := validation.ValidateRefName(name); err != nil {
		return err
	}

	vc.mu.Lock()
	if _, exists := vc.tags[name]; exists {
		vc.mu.Unlock()
		return refError(ErrTagExists, name)
	}
	version, ok := vc.versions[versionID]
	if !ok {
		vc.mu.Unlock()
		return refError(ErrVersionNotFound, versionID.String())
	}

	tag := models.Tag{Name: name, VersionID: versionID, CreatedAt: vc.now()}
	vc.tags[name] = tag
	version.Tags = append(version.Tags, name)
	vc.mu.Unlock()

	vc.persistTag(name)
	vc.persistVersion(versionID)

	vc.logger.Info("Tag created", "tag", name, "version_id", versionID)
	return nil
}

// VersionByTag returns the version a tag points to.
func (vc *VersionControl) VersionByTag(name string) (uuid.UUID, bool) {
	vc.mu.RLock()
	defer vc.mu.RUnlock()

	tag, ok := vc.tags[name]
	return tag.VersionID, ok
}

// Tags returns all tags sorted by name.
func (vc *VersionControl) Tags() []models.Tag {
	vc.mu.RLock()
	result := make([]models.Tag, 0, len(vc.tags))
	for _, t := range vc.tags {
		result = append(result, t)
	}
	vc.mu.RUnlock()

	slices.SortFunc(result, func(a, b models.Tag) int {
		return strings.Compare(a.Name, b.Name)
	})
	return result
}
