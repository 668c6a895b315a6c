package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/iudanet/gophdraw/internal/conflict"
	"github.com/iudanet/gophdraw/internal/models"
	"github.com/iudanet/gophdraw/pkg/api"
)

//go:generate moq -out conflicts_mock.go . ConflictManager

// ConflictManager определяет операции менеджера конфликтов для HTTP API.
// Реализуется *conflict.Manager.
type ConflictManager interface {
	DetectConflicts(records []models.OperationRecord) []models.Conflict
	PendingConflicts() []models.Conflict
	ResolveConflict(id uuid.UUID, strategy *models.ResolutionStrategy) (models.ConflictResolution, error)
	AutoResolveAll() []conflict.AutoResolved
	Statistics() conflict.Statistics
}

// ConflictHandler handles conflict detection and resolution requests
type ConflictHandler struct {
	logger  *slog.Logger
	manager ConflictManager
}

// NewConflictHandler creates a new conflict handler
func NewConflictHandler(logger *slog.Logger, manager ConflictManager) *ConflictHandler {
	return &ConflictHandler{
		logger:  logger,
		manager: manager,
	}
}

// Detect обрабатывает POST /api/v1/conflicts/detect.
// Найденные конфликты становятся ожидающими.
func (h *ConflictHandler) Detect(w http.ResponseWriter, r *http.Request) {
	var req api.DetectConflictsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	records := make([]models.OperationRecord, 0, len(req.Operations))
	for _, rec := range req.Operations {
		records = append(records, rec.Complete())
	}

	conflicts := h.manager.DetectConflicts(records)
	if conflicts == nil {
		conflicts = []models.Conflict{}
	}
	writeJSON(w, h.logger, http.StatusOK, api.ConflictsResponse{Conflicts: conflicts})
}

// List обрабатывает GET /api/v1/conflicts
func (h *ConflictHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, api.ConflictsResponse{Conflicts: h.manager.PendingConflicts()})
}

// Resolve обрабатывает POST /api/v1/conflicts/{id}/resolve.
// Пустое тело - стратегия по умолчанию.
func (h *ConflictHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"), "conflict id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req api.ResolveConflictRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, h.logger, err)
			return
		}
	}
	if req.Strategy != nil && !req.Strategy.Valid() {
		writeError(w, h.logger, fmt.Errorf("%w: unknown strategy %q", errBadRequest, *req.Strategy))
		return
	}
	if req.Strategy != nil && req.Strategy.MergeOnly() {
		writeError(w, h.logger, fmt.Errorf("%w: strategy %q applies only to merges", errBadRequest, *req.Strategy))
		return
	}

	resolution, err := h.manager.ResolveConflict(id, req.Strategy)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, resolution)
}

// AutoResolve обрабатывает POST /api/v1/conflicts/auto-resolve
func (h *ConflictHandler) AutoResolve(w http.ResponseWriter, r *http.Request) {
	resolved := h.manager.AutoResolveAll()
	if resolved == nil {
		resolved = []conflict.AutoResolved{}
	}
	writeJSON(w, h.logger, http.StatusOK, resolved)
}

// Stats обрабатывает GET /api/v1/conflicts/stats
func (h *ConflictHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, h.manager.Statistics())
}
