package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophdraw/internal/crdt"
	"github.com/iudanet/gophdraw/internal/models"
	"github.com/iudanet/gophdraw/internal/vcs"
)

var (
	site1 = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	site2 = uuid.MustParse("00000000-0000-0000-0000-000000000002")
)

// setupTestRepo возвращает путь к новому файлу репозитория
func setupTestRepo(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "drawing.db")
}

// execute выполняет команду CLI и возвращает stdout
func execute(t *testing.T, repo, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--repo", repo, "--author", "alice"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, repo, stdin string, args ...string) string {
	t.Helper()
	out, err := execute(t, repo, stdin, args...)
	require.NoError(t, err, "gophdraw %s", strings.Join(args, " "))
	return out
}

func opsJSON(t *testing.T, ops ...models.Operation) string {
	t.Helper()
	data, err := json.Marshal(models.Operations(ops))
	require.NoError(t, err)
	return string(data)
}

func setColor(entity uuid.UUID, color string, counter uint64, actor uuid.UUID) models.Operation {
	return models.UpdateProperty{
		EntityID:  entity,
		Property:  "color",
		Value:     color,
		Timestamp: crdt.NewTimestamp(counter, actor),
	}
}

func TestCommitAndLog(t *testing.T) {
	repo := setupTestRepo(t)
	entity := uuid.New()

	add := opsJSON(t, models.AddEntity{
		EntityID:     entity,
		InitialState: map[string]any{"color": "red"},
		Timestamp:    crdt.NewTimestamp(1, site1),
	})
	out := mustExecute(t, repo, add, "commit", "-m", "Add wall")
	assert.Contains(t, out, "[main ")
	assert.Contains(t, out, "Add wall")

	// операции из файла
	file := filepath.Join(t.TempDir(), "ops.json")
	require.NoError(t, os.WriteFile(file, []byte(opsJSON(t, setColor(entity, "blue", 2, site1))), 0600))
	mustExecute(t, repo, "", "commit", "-m", "Paint wall", "--file", file)

	out = mustExecute(t, repo, "", "log")
	assert.Less(t, strings.Index(out, "Paint wall"), strings.Index(out, "Add wall"), "newest first")
	assert.Contains(t, out, "Initial version")

	var history []*models.Version
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, repo, "", "log", "-n", "1", "--json")), &history))
	require.Len(t, history, 1)
	assert.Equal(t, "Paint wall", history[0].Message)
	assert.Equal(t, "alice", history[0].Author)

	var snapshot map[uuid.UUID]crdt.EntityState
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, repo, "", "snapshot", "--json")), &snapshot))
	assert.Equal(t, "blue", snapshot[entity].Properties["color"])

	out = mustExecute(t, repo, "", "show")
	assert.Contains(t, out, string(models.KindUpdateProperty))
}

func TestMergeWithConflict(t *testing.T) {
	repo := setupTestRepo(t)
	entity := uuid.New()

	mustExecute(t, repo, opsJSON(t, models.AddEntity{
		EntityID:     entity,
		InitialState: map[string]any{"color": "red"},
		Timestamp:    crdt.NewTimestamp(1, site1),
	}), "commit", "-m", "Add wall")
	mustExecute(t, repo, "", "branch", "create", "feature")

	out := mustExecute(t, repo, "", "checkout", "feature")
	assert.Contains(t, out, "Switched to branch feature")
	mustExecute(t, repo, opsJSON(t, setColor(entity, "blue", 2, site2)), "commit", "-m", "Blue")

	mustExecute(t, repo, "", "checkout", models.MainBranch)
	mustExecute(t, repo, opsJSON(t, setColor(entity, "green", 3, site1)), "commit", "-m", "Green")

	var result vcs.MergeResult
	out = mustExecute(t, repo, "", "merge", "feature", "--strategy", string(models.StrategyTheirs), "--json")
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.False(t, result.FastForward)
	assert.Equal(t, 1, result.Conflicts)
	require.Len(t, result.ConflictingOperations, 1)

	var snapshot map[uuid.UUID]crdt.EntityState
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, repo, "", "snapshot", "--json")), &snapshot))
	assert.Equal(t, "blue", snapshot[entity].Properties["color"])

	out = mustExecute(t, repo, "", "merge", "feature")
	assert.Contains(t, out, "Already up to date.")

	out = mustExecute(t, repo, "", "log", "-n", "1")
	assert.Contains(t, out, "Merge branch 'feature' into main")
	assert.Contains(t, out, "Merge: ")
}

func TestBranchCommands(t *testing.T) {
	repo := setupTestRepo(t)

	mustExecute(t, repo, "", "branch", "create", "dev")
	out := mustExecute(t, repo, "", "branch")
	assert.Contains(t, out, "* main")
	assert.Contains(t, out, "  dev")

	var listing struct {
		Current  string          `json:"current"`
		Branches []models.Branch `json:"branches"`
	}
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, repo, "", "branch", "--json")), &listing))
	assert.Equal(t, models.MainBranch, listing.Current)
	assert.Len(t, listing.Branches, 2)

	_, err := execute(t, repo, "", "branch", "create", "dev")
	require.ErrorIs(t, err, vcs.ErrBranchExists)

	_, err = execute(t, repo, "", "branch", "delete", models.MainBranch)
	require.ErrorIs(t, err, vcs.ErrProtectedBranch)

	mustExecute(t, repo, "", "branch", "delete", "dev")
	out = mustExecute(t, repo, "", "branch")
	assert.NotContains(t, out, "dev")

	_, err = execute(t, repo, "", "checkout", "missing")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestTagAndDiff(t *testing.T) {
	repo := setupTestRepo(t)
	door, window := uuid.New(), uuid.New()

	mustExecute(t, repo, opsJSON(t, models.AddEntity{
		EntityID:     door,
		InitialState: map[string]any{"width": 0.9},
		Timestamp:    crdt.NewTimestamp(1, site1),
	}), "commit", "-m", "Door")
	mustExecute(t, repo, "", "tag", "v1")

	mustExecute(t, repo, opsJSON(t,
		models.AddEntity{EntityID: window, InitialState: map[string]any{}, Timestamp: crdt.NewTimestamp(2, site1)},
		models.UpdateProperty{EntityID: door, Property: "width", Value: 1.0, Timestamp: crdt.NewTimestamp(3, site1)},
	), "commit", "-m", "Window")

	out := mustExecute(t, repo, "", "tag")
	assert.Contains(t, out, "v1 ")

	out = mustExecute(t, repo, "", "show", "v1")
	assert.Contains(t, out, "Door")
	assert.Contains(t, out, "Tags:   v1")

	var diff models.VersionDiff
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, repo, "", "diff", "v1", "--json")), &diff))
	assert.Equal(t, []uuid.UUID{window}, diff.Added)
	assert.Equal(t, []uuid.UUID{door}, diff.Modified)

	out = mustExecute(t, repo, "", "diff", "v1", models.MainBranch)
	assert.Contains(t, out, "2 entities changed")

	_, err := execute(t, repo, "", "tag", "v1")
	require.ErrorIs(t, err, vcs.ErrTagExists)

	_, err = execute(t, repo, "", "diff", "nope")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestCommitErrors(t *testing.T) {
	repo := setupTestRepo(t)

	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{
			name:  "invalid json",
			stdin: "not json",
			args:  []string{"commit", "-m", "x"},
		},
		{
			name:  "unknown operation",
			stdin: `[{"kind":"explode","entity_id":"` + uuid.NewString() + `"}]`,
			args:  []string{"commit", "-m", "x"},
		},
		{
			name:  "empty commit",
			stdin: "[]",
			args:  []string{"commit", "-m", "x"},
		},
		{
			name:  "missing file",
			stdin: "",
			args:  []string{"commit", "-m", "x", "--file", filepath.Join(t.TempDir(), "none.json")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, repo, tt.stdin, tt.args...)
			require.Error(t, err)
		})
	}

	out := mustExecute(t, repo, "", "log", "--json")
	var history []*models.Version
	require.NoError(t, json.Unmarshal([]byte(out), &history))
	assert.Len(t, history, 1, "failed commits leave only the root")
}

func TestVersionCommand(t *testing.T) {
	repo := setupTestRepo(t)

	out := mustExecute(t, repo, "", "version")
	assert.Contains(t, out, "GophDraw CLI")
	assert.Contains(t, out, "Version:    dev")

	_, err := os.Stat(repo)
	assert.True(t, os.IsNotExist(err), "version does not open the repository")
}

func TestCommit_StampsOperationsWithoutTimestamp(t *testing.T) {
	repo := setupTestRepo(t)
	entity := uuid.New()

	mustExecute(t, repo, opsJSON(t, setColor(entity, "red", 5, site1)), "commit", "-m", "Red")

	unstamped := `[{"kind":"update_property","entity_id":"` + entity.String() + `","property":"color","value":"blue"}]`
	var out struct {
		VersionID uuid.UUID             `json:"version_id"`
		Clock     crdt.LamportTimestamp `json:"clock"`
	}
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, repo, unstamped,
		"commit", "-m", "Blue", "--actor", site2.String(), "--json")), &out))
	assert.Equal(t, crdt.NewTimestamp(6, site2), out.Clock)

	var version models.Version
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, repo, "", "show", out.VersionID.String(), "--json")), &version))
	require.Len(t, version.Operations, 1)
	assert.Equal(t, crdt.NewTimestamp(6, site2), version.Operations[0].Stamp())

	var snapshot map[uuid.UUID]crdt.EntityState
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, repo, "", "snapshot", "--json")), &snapshot))
	assert.Equal(t, "blue", snapshot[entity].Properties["color"], "stamped edit is newer than the previous one")

	_, err := execute(t, repo, unstamped, "commit", "-m", "Bad", "--actor", "not-a-uuid")
	require.Error(t, err)
}
