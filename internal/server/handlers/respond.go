package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/iudanet/gophdraw/internal/models"
	"github.com/iudanet/gophdraw/internal/validation"
	"github.com/iudanet/gophdraw/internal/vcs"
	"github.com/iudanet/gophdraw/pkg/api"
)

// maxBodyBytes ограничивает размер тела запроса
const maxBodyBytes = 8 << 20

// errBadRequest помечает ошибки разбора запроса
var errBadRequest = errors.New("bad request")

// statusFor сопоставляет ошибку HTTP статусу.
// Порядок важен: ErrUnknownStrategy оборачивает ErrInvalidState,
// но это ошибка ввода.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, validation.ErrInvalidName),
		errors.Is(err, models.ErrNoChanges),
		errors.Is(err, models.ErrInvalidOperation),
		errors.Is(err, models.ErrUnknownOperation),
		errors.Is(err, vcs.ErrUnknownStrategy):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyExists),
		errors.Is(err, models.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidState),
		errors.Is(err, vcs.ErrTraversalLimit):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// writeError пишет ошибку в формате api.ErrorResponse.
// Текст внутренних ошибок клиенту не отдается.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
		msg = "internal server error"
	}
	writeJSON(w, logger, status, api.ErrorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
	}
	return nil
}

func parseUUID(value, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s %q", errBadRequest, field, value)
	}
	return id, nil
}
