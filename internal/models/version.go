package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// MainBranch - имя ветки по умолчанию; она защищена от удаления.
const MainBranch = "main"

// Version представляет коммит в графе версий чертежа.
// После записи в хранилище версия не изменяется, кроме добавления тегов.
type Version struct {
	Timestamp  time.Time     `json:"timestamp"`           // Timestamp время создания версии
	ID         uuid.UUID     `json:"id"`                  // ID уникальный идентификатор версии
	Author     string        `json:"author"`              // Author автор коммита
	Message    string        `json:"message"`             // Message описание изменений
	Parents    []uuid.UUID   `json:"parents"`             // Parents 0 для корня, 1 для коммита, 2+ для слияния
	Operations Operations    `json:"operations"`          // Operations операции, внесенные этой версией
	Discarded  []OperationID `json:"discarded,omitempty"` // Discarded операции предков, отброшенные при слиянии
	Tags       []string      `json:"tags"`                // Tags имена тегов, указывающих на версию
}

// IsRoot reports whether v has no parents.
func (v *Version) IsRoot() bool {
	return len(v.Parents) == 0
}

// IsMerge reports whether v has two or more parents.
func (v *Version) IsMerge() bool {
	return len(v.Parents) >= 2
}

// FirstParent returns the first parent, or uuid.Nil for the root.
func (v *Version) FirstParent() uuid.UUID {
	if len(v.Parents) == 0 {
		return uuid.Nil
	}
	return v.Parents[0]
}

// Clone создает копию версии. Операции неизменяемы, поэтому
// копируется только срез.
func (v *Version) Clone() *Version {
	return &Version{
		Timestamp:  v.Timestamp,
		ID:         v.ID,
		Author:     v.Author,
		Message:    v.Message,
		Parents:    slices.Clone(v.Parents),
		Operations: slices.Clone(v.Operations),
		Discarded:  slices.Clone(v.Discarded),
		Tags:       slices.Clone(v.Tags),
	}
}

// Branch - перемещаемый указатель на версию.
type Branch struct {
	Name      string    `json:"name"`
	Head      uuid.UUID `json:"head"`
	Protected bool      `json:"protected"`
}

// Tag - неизменяемое имя для версии.
type Tag struct {
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name"`
	VersionID uuid.UUID `json:"version_id"`
}

// VersionDiff summarizes the operations reachable from To but not from From.
type VersionDiff struct {
	ChangedProperties map[uuid.UUID][]string `json:"changed_properties"`
	Added             []uuid.UUID            `json:"added"`
	Modified          []uuid.UUID            `json:"modified"`
	Deleted           []uuid.UUID            `json:"deleted"`
	From              uuid.UUID              `json:"from"`
	To                uuid.UUID              `json:"to"`
}

// TotalChanges returns the number of entities that changed.
func (d *VersionDiff) TotalChanges() int {
	return len(d.Added) + len(d.Modified) + len(d.Deleted)
}
