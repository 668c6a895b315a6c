// Package api содержит DTO HTTP API, общие для сервера и клиентов.
package api

import (
	"github.com/google/uuid"

	"github.com/iudanet/gophdraw/internal/crdt"
	"github.com/iudanet/gophdraw/internal/models"
)

// ErrorResponse - тело ответа при ошибке
type ErrorResponse struct {
	Error string `json:"error"`
}

// BranchesResponse представляет список веток
type BranchesResponse struct {
	Current  string          `json:"current"`
	Branches []models.Branch `json:"branches"`
}

// CreateBranchRequest представляет запрос на создание ветки.
// Без start ветка создается от головы текущей ветки.
type CreateBranchRequest struct {
	Start *uuid.UUID `json:"start,omitempty"`
	Name  string     `json:"name"`
}

// CheckoutRequest представляет запрос на переключение ветки
type CheckoutRequest struct {
	Branch string `json:"branch"`
}

// CheckoutResponse returns the checked out branch and its head
type CheckoutResponse struct {
	Branch string    `json:"branch"`
	Head   uuid.UUID `json:"head"`
}

// CommitRequest представляет коммит.
// Branch пустой - текущая ветка. ExpectedHead - голова, от которой
// клиент строил изменения; если голова сдвинулась, ответ 409.
type CommitRequest struct {
	ExpectedHead *uuid.UUID        `json:"expected_head,omitempty"`
	Branch       string            `json:"branch,omitempty"`
	Author       string            `json:"author"`
	Message      string            `json:"message"`
	Operations   models.Operations `json:"operations"`
}

// CommitResponse returns the id of the new version
type CommitResponse struct {
	VersionID uuid.UUID `json:"version_id"`
}

// HistoryResponse - цепочка первых родителей, от новых к старым
type HistoryResponse struct {
	Versions []*models.Version `json:"versions"`
}

// SnapshotResponse - состояние чертежа на версии
type SnapshotResponse struct {
	Entities  map[uuid.UUID]crdt.EntityState `json:"entities"`
	VersionID uuid.UUID                      `json:"version_id"`
}

// EntityResponse - состояние одной сущности на версии
type EntityResponse struct {
	State     crdt.EntityState `json:"state"`
	VersionID uuid.UUID        `json:"version_id"`
	EntityID  uuid.UUID        `json:"entity_id"`
}

// MergeRequest представляет запрос на слияние Source в текущую ветку.
// Пустая Strategy - стратегия по умолчанию из конфигурации.
type MergeRequest struct {
	Source   string                    `json:"source"`
	Author   string                    `json:"author"`
	Strategy models.ResolutionStrategy `json:"strategy,omitempty"`
}

// CreateTagRequest представляет запрос на создание тега
type CreateTagRequest struct {
	Name      string    `json:"name"`
	VersionID uuid.UUID `json:"version_id"`
}
