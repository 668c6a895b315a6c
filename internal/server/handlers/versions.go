package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/iudanet/gophdraw/internal/crdt"
	"github.com/iudanet/gophdraw/internal/models"
	"github.com/iudanet/gophdraw/internal/vcs"
	"github.com/iudanet/gophdraw/pkg/api"
)

// VersionStore определяет операции графа версий, нужные HTTP API.
// Реализуется *vcs.VersionControl.
type VersionStore interface {
	Branches() []models.Branch
	Branch(name string) (models.Branch, error)
	CurrentBranch() string
	CreateBranch(name string, start *uuid.UUID) error
	DeleteBranch(name string) error
	Checkout(name string) (uuid.UUID, error)
	CommitOnBranch(branch string, expectedHead uuid.UUID, author, message string, ops []models.Operation) (uuid.UUID, error)
	History(limit int) []*models.Version
	Version(id uuid.UUID) (*models.Version, error)
	Snapshot(id uuid.UUID) (map[uuid.UUID]crdt.EntityState, error)
	Entity(versionID, entityID uuid.UUID) (crdt.EntityState, error)
	Merge(source, author string, strategy models.ResolutionStrategy) (*vcs.MergeResult, error)
	Diff(from, to uuid.UUID) (*models.VersionDiff, error)
	CreateTag(name string, versionID uuid.UUID) error
	VersionByTag(name string) (uuid.UUID, bool)
	Tags() []models.Tag
}

// VersionHandler handles branch, commit, merge, diff and tag requests
type VersionHandler struct {
	logger *slog.Logger
	store  VersionStore
}

// NewVersionHandler creates a new version handler
func NewVersionHandler(logger *slog.Logger, store VersionStore) *VersionHandler {
	return &VersionHandler{
		logger: logger,
		store:  store,
	}
}

// ListBranches обрабатывает GET /api/v1/branches
func (h *VersionHandler) ListBranches(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, api.BranchesResponse{
		Current:  h.store.CurrentBranch(),
		Branches: h.store.Branches(),
	})
}

// CreateBranch обрабатывает POST /api/v1/branches
func (h *VersionHandler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	var req api.CreateBranchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.store.CreateBranch(req.Name, req.Start); err != nil {
		writeError(w, h.logger, err)
		return
	}

	branch, err := h.store.Branch(req.Name)
	if err != nil {
		// ветку удалили сразу после создания
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, branch)
}

// DeleteBranch обрабатывает DELETE /api/v1/branches/{name}
func (h *VersionHandler) DeleteBranch(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteBranch(r.PathValue("name")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Checkout обрабатывает POST /api/v1/checkout
func (h *VersionHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req api.CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	head, err := h.store.Checkout(req.Branch)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, api.CheckoutResponse{Branch: req.Branch, Head: head})
}

// Commit обрабатывает POST /api/v1/commits.
// Без expected_head коммит строится от текущей головы ветки.
func (h *VersionHandler) Commit(w http.ResponseWriter, r *http.Request) {
	var req api.CommitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	branch := req.Branch
	if branch == "" {
		branch = h.store.CurrentBranch()
	}

	var expected uuid.UUID
	if req.ExpectedHead != nil {
		expected = *req.ExpectedHead
	} else {
		b, err := h.store.Branch(branch)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		expected = b.Head
	}

	id, err := h.store.CommitOnBranch(branch, expected, req.Author, req.Message, req.Operations)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, api.CommitResponse{VersionID: id})
}

// History обрабатывает GET /api/v1/history?limit=N
func (h *VersionHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, h.logger, fmt.Errorf("%w: invalid limit %q", errBadRequest, s))
			return
		}
		limit = n
	}

	writeJSON(w, h.logger, http.StatusOK, api.HistoryResponse{Versions: h.store.History(limit)})
}

// GetVersion обрабатывает GET /api/v1/versions/{ref}
func (h *VersionHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	id, err := h.resolveRef(r.PathValue("ref"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	version, err := h.store.Version(id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, version)
}

// Snapshot обрабатывает GET /api/v1/versions/{ref}/snapshot
func (h *VersionHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	id, err := h.resolveRef(r.PathValue("ref"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	entities, err := h.store.Snapshot(id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, api.SnapshotResponse{VersionID: id, Entities: entities})
}

// GetEntity обрабатывает GET /api/v1/versions/{ref}/entities/{entity}
func (h *VersionHandler) GetEntity(w http.ResponseWriter, r *http.Request) {
	id, err := h.resolveRef(r.PathValue("ref"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	entityID, err := parseUUID(r.PathValue("entity"), "entity id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	state, err := h.store.Entity(id, entityID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, api.EntityResponse{VersionID: id, EntityID: entityID, State: state})
}

// Merge обрабатывает POST /api/v1/merge
func (h *VersionHandler) Merge(w http.ResponseWriter, r *http.Request) {
	var req api.MergeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.store.Merge(req.Source, req.Author, req.Strategy)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, result)
}

// Diff обрабатывает GET /api/v1/diff?from=&to=
func (h *VersionHandler) Diff(w http.ResponseWriter, r *http.Request) {
	from, err := h.resolveRef(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	to, err := h.resolveRef(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	diff, err := h.store.Diff(from, to)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, diff)
}

// ListTags обрабатывает GET /api/v1/tags
func (h *VersionHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, h.store.Tags())
}

// CreateTag обрабатывает POST /api/v1/tags
func (h *VersionHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req api.CreateTagRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.store.CreateTag(req.Name, req.VersionID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	tag, err := h.findTag(req.Name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, tag)
}

// GetTag обрабатывает GET /api/v1/tags/{name}
func (h *VersionHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	tag, err := h.findTag(r.PathValue("name"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, tag)
}

func (h *VersionHandler) findTag(name string) (models.Tag, error) {
	for _, tag := range h.store.Tags() {
		if tag.Name == name {
			return tag, nil
		}
	}
	return models.Tag{}, fmt.Errorf("%w: %s", vcs.ErrTagNotFound, name)
}

// resolveRef принимает id версии, имя тега или имя ветки (в этом порядке).
func (h *VersionHandler) resolveRef(ref string) (uuid.UUID, error) {
	if ref == "" {
		return uuid.Nil, fmt.Errorf("%w: version reference is required", errBadRequest)
	}
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}
	if id, ok := h.store.VersionByTag(ref); ok {
		return id, nil
	}
	if b, err := h.store.Branch(ref); err == nil {
		return b.Head, nil
	}
	return uuid.Nil, fmt.Errorf("%w: unknown reference %q", models.ErrNotFound, ref)
}
