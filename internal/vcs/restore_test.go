package vcs

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophdraw/internal/models"
	"github.com/iudanet/gophdraw/internal/storage"
)

// memRepo - хранилище в памяти, реализующее storage.Sink и storage.Loader.
type memRepo struct {
	versions map[uuid.UUID]*models.Version
	branches map[string]models.Branch
	tags     map[string]models.Tag
	current  string
	mu       sync.Mutex
}

func newMemRepo() *memRepo {
	return &memRepo{
		versions: make(map[uuid.UUID]*models.Version),
		branches: make(map[string]models.Branch),
		tags:     make(map[string]models.Tag),
	}
}

func (r *memRepo) SaveVersion(_ context.Context, v *models.Version) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.versions[v.ID] = v.Clone()
	return nil
}

func (r *memRepo) SaveBranch(_ context.Context, b models.Branch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.branches[b.Name] = b
	return nil
}

func (r *memRepo) DeleteBranch(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.branches, name)
	return nil
}

func (r *memRepo) SaveTag(_ context.Context, t models.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags[t.Name] = t
	return nil
}

func (r *memRepo) SaveCurrentBranch(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = name
	return nil
}

func (r *memRepo) LoadVersions(_ context.Context) ([]*models.Version, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*models.Version, 0, len(r.versions))
	for _, v := range r.versions {
		result = append(result, v.Clone())
	}
	return result, nil
}

func (r *memRepo) LoadBranches(_ context.Context) ([]models.Branch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]models.Branch, 0, len(r.branches))
	for _, b := range r.branches {
		result = append(result, b)
	}
	return result, nil
}

func (r *memRepo) LoadTags(_ context.Context) ([]models.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]models.Tag, 0, len(r.tags))
	for _, t := range r.tags {
		result = append(result, t)
	}
	return result, nil
}

func (r *memRepo) GetCurrentBranch(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == "" {
		return "", storage.ErrMetadataNotFound
	}
	return r.current, nil
}

func TestRestore_RoundTrip(t *testing.T) {
	repo := newMemRepo()
	s := buildScenario(t, true, WithSink(repo))

	result, err := s.vc.Merge("feature", "alice", models.StrategyTheirs)
	require.NoError(t, err)
	require.NoError(t, s.vc.CreateTag("v1", result.MergeVersion))
	mustCheckout(t, s.vc, "feature")

	restored, err := Restore(context.Background(), repo)
	require.NoError(t, err)

	assert.Equal(t, s.vc.Versions(), restored.Versions())
	assert.Equal(t, s.vc.Branches(), restored.Branches())
	assert.Equal(t, s.vc.Tags(), restored.Tags())
	assert.Equal(t, "feature", restored.CurrentBranch())

	want, err := s.vc.Snapshot(result.MergeVersion)
	require.NoError(t, err)
	got, err := restored.Snapshot(result.MergeVersion)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, "green", got[s.e1].Properties["color"])

	// восстановленный граф продолжает работать
	mustCheckout(t, restored, models.MainBranch)
	_, err = restored.Commit("bob", "after restore", []models.Operation{set(s.e1, "color", "black", 10, site2)})
	require.NoError(t, err)
	require.ErrorIs(t, restored.DeleteBranch(models.MainBranch), ErrProtectedBranch)
}

func TestRestore_EmptyRepositoryCreatesRoot(t *testing.T) {
	repo := newMemRepo()

	vc, err := Restore(context.Background(), repo, WithSink(repo))
	require.NoError(t, err)

	assert.Len(t, vc.Versions(), 1)
	assert.Len(t, repo.versions, 1, "root is persisted")
	assert.Equal(t, models.MainBranch, repo.current)
}

func TestRestore_InvalidHistory(t *testing.T) {
	rootID, childID, otherID := uuid.New(), uuid.New(), uuid.New()

	tests := []struct {
		name    string
		prepare func(r *memRepo)
	}{
		{
			name: "missing parent",
			prepare: func(r *memRepo) {
				r.versions[rootID] = &models.Version{ID: rootID, Parents: []uuid.UUID{uuid.New()}}
				r.branches[models.MainBranch] = models.Branch{Name: models.MainBranch, Head: rootID}
			},
		},
		{
			name: "cycle",
			prepare: func(r *memRepo) {
				r.versions[otherID] = &models.Version{ID: otherID}
				r.versions[rootID] = &models.Version{ID: rootID, Parents: []uuid.UUID{childID}}
				r.versions[childID] = &models.Version{ID: childID, Parents: []uuid.UUID{rootID}}
				r.branches[models.MainBranch] = models.Branch{Name: models.MainBranch, Head: otherID}
			},
		},
		{
			name: "branch to missing version",
			prepare: func(r *memRepo) {
				r.versions[rootID] = &models.Version{ID: rootID}
				r.branches[models.MainBranch] = models.Branch{Name: models.MainBranch, Head: uuid.New()}
			},
		},
		{
			name: "no main branch",
			prepare: func(r *memRepo) {
				r.versions[rootID] = &models.Version{ID: rootID}
				r.branches["dev"] = models.Branch{Name: "dev", Head: rootID}
			},
		},
		{
			name: "tag to missing version",
			prepare: func(r *memRepo) {
				r.versions[rootID] = &models.Version{ID: rootID}
				r.branches[models.MainBranch] = models.Branch{Name: models.MainBranch, Head: rootID}
				r.tags["v1"] = models.Tag{Name: "v1", VersionID: uuid.New()}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepo()
			tt.prepare(repo)

			_, err := Restore(context.Background(), repo)
			require.ErrorIs(t, err, ErrInvalidHistory)
		})
	}
}

func TestRestore_UnknownCurrentFallsBackToMain(t *testing.T) {
	repo := newMemRepo()
	rootID := uuid.New()
	repo.versions[rootID] = &models.Version{ID: rootID}
	repo.branches[models.MainBranch] = models.Branch{Name: models.MainBranch, Head: rootID}
	repo.current = "deleted"

	vc, err := Restore(context.Background(), repo)
	require.NoError(t, err)
	assert.Equal(t, models.MainBranch, vc.CurrentBranch())

	branch, err := vc.Branch(models.MainBranch)
	require.NoError(t, err)
	assert.True(t, branch.Protected)
}

type failingLoader struct {
	memRepo
}

func (failingLoader) LoadVersions(context.Context) ([]*models.Version, error) {
	return nil, errors.New("io error")
}

func TestRestore_LoaderError(t *testing.T) {
	_, err := Restore(context.Background(), &failingLoader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load versions")
}
