package api

import (
	"github.com/iudanet/gophdraw/internal/models"
)

// DetectConflictsRequest - пакет параллельных операций для проверки.
// Пустые id и actor записи вычисляются из операции.
type DetectConflictsRequest struct {
	Operations []models.OperationRecord `json:"operations"`
}

// ConflictsResponse представляет список конфликтов
type ConflictsResponse struct {
	Conflicts []models.Conflict `json:"conflicts"`
}

// ResolveConflictRequest - стратегия разрешения; nil - по умолчанию
type ResolveConflictRequest struct {
	Strategy *models.ResolutionStrategy `json:"strategy,omitempty"`
}
