package models

import (
	"time"

	"github.com/google/uuid"
)

// ConflictType классифицирует конфликт между параллельными операциями.
type ConflictType string

const (
	// PropertyConflict - несколько UpdateProperty одного свойства
	PropertyConflict ConflictType = "property_conflict"
	// DeleteModifyConflict - удаление и изменение одной сущности
	DeleteModifyConflict ConflictType = "delete_modify_conflict"
	// TransformConflict - несколько геометрических преобразований одной сущности
	TransformConflict ConflictType = "transform_conflict"
)

// Severity - серьезность конфликта.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ResolutionStrategy names a conflict resolution policy.
type ResolutionStrategy string

const (
	StrategyLastWriteWins  ResolutionStrategy = "last_write_wins"
	StrategyFirstWriteWins ResolutionStrategy = "first_write_wins"
	StrategyUserPriority   ResolutionStrategy = "user_priority"
	StrategyCRDT           ResolutionStrategy = "crdt"
	StrategyMerge          ResolutionStrategy = "merge"
	StrategyManual         ResolutionStrategy = "manual"

	// StrategyOurs and StrategyTheirs are merge-only strategies: they keep
	// one side of a three-way merge and have no meaning for a lone conflict.
	StrategyOurs   ResolutionStrategy = "ours"
	StrategyTheirs ResolutionStrategy = "theirs"
)

// Valid reports whether s is a known strategy.
func (s ResolutionStrategy) Valid() bool {
	switch s {
	case StrategyLastWriteWins, StrategyFirstWriteWins, StrategyUserPriority,
		StrategyCRDT, StrategyMerge, StrategyManual, StrategyOurs, StrategyTheirs:
		return true
	}
	return false
}

// MergeOnly reports whether s is meaningful only inside a three-way merge.
func (s ResolutionStrategy) MergeOnly() bool {
	return s == StrategyOurs || s == StrategyTheirs
}

// Conflict описывает набор параллельных операций, которые не могут
// быть применены одновременно без выбора политики.
type Conflict struct {
	DetectedAt     time.Time         `json:"detected_at"`
	Type           ConflictType      `json:"type"`
	Severity       Severity          `json:"severity"`
	EntityIDs      []uuid.UUID       `json:"entity_ids"`
	Operations     []OperationRecord `json:"operations"`
	ID             uuid.UUID         `json:"id"`
	AutoResolvable bool              `json:"auto_resolvable"`
}

// Property returns the property name shared by the conflicting updates,
// or "" when the conflict is not a PropertyConflict.
func (c *Conflict) Property() string {
	for _, rec := range c.Operations {
		if u, ok := rec.Op.(UpdateProperty); ok {
			return u.Property
		}
	}
	return ""
}

// ConflictResolution - неизменяемый результат разрешения конфликта.
type ConflictResolution struct {
	ResolvedAt           time.Time          `json:"resolved_at"`
	Strategy             ResolutionStrategy `json:"strategy"`
	ResolvedOperations   Operations         `json:"resolved_operations"`
	DiscardedOperations  []OperationID      `json:"discarded_operations"`
	ConflictID           uuid.UUID          `json:"conflict_id"`
	RequiresNotification bool               `json:"requires_notification"`
}
