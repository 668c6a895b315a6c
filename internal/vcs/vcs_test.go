package vcs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophdraw/internal/crdt"
	"github.com/iudanet/gophdraw/internal/metrics"
	"github.com/iudanet/gophdraw/internal/models"
	"github.com/iudanet/gophdraw/internal/storage"
	"github.com/iudanet/gophdraw/internal/validation"
)

var (
	site1 = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	site2 = uuid.MustParse("00000000-0000-0000-0000-000000000002")
)

func createTestVCS(t *testing.T, opts ...Option) *VersionControl {
	t.Helper()
	base := []Option{WithMetrics(metrics.New(prometheus.NewRegistry()))}
	return New(append(base, opts...)...)
}

func set(entity uuid.UUID, property string, value any, counter uint64, actor uuid.UUID) models.Operation {
	return models.UpdateProperty{
		EntityID:  entity,
		Property:  property,
		Value:     value,
		Timestamp: crdt.NewTimestamp(counter, actor),
	}
}

func mustCommit(t *testing.T, vc *VersionControl, ops ...models.Operation) uuid.UUID {
	t.Helper()
	id, err := vc.Commit("alice", "change", ops)
	require.NoError(t, err)
	return id
}

func mustCheckout(t *testing.T, vc *VersionControl, name string) {
	t.Helper()
	_, err := vc.Checkout(name)
	require.NoError(t, err)
}

func TestNew(t *testing.T) {
	vc := createTestVCS(t)

	assert.Equal(t, models.MainBranch, vc.CurrentBranch())
	branches := vc.Branches()
	require.Len(t, branches, 1)
	assert.True(t, branches[0].Protected)

	root, err := vc.Version(vc.Head())
	require.NoError(t, err)
	assert.True(t, root.IsRoot())
	assert.Equal(t, rootAuthor, root.Author)
	assert.Equal(t, rootMessage, root.Message)
}

func TestCommit(t *testing.T) {
	vc := createTestVCS(t)
	e1 := uuid.New()

	t.Run("empty operations", func(t *testing.T) {
		before := vc.Head()
		_, err := vc.Commit("alice", "nothing", nil)
		require.ErrorIs(t, err, models.ErrNoChanges)
		assert.Equal(t, before, vc.Head())
	})

	t.Run("invalid author", func(t *testing.T) {
		_, err := vc.Commit("", "msg", []models.Operation{set(e1, "color", "red", 1, site1)})
		require.ErrorIs(t, err, validation.ErrInvalidName)
	})

	t.Run("head advances and parent is previous head", func(t *testing.T) {
		for i := range 5 {
			before := vc.Head()
			id := mustCommit(t, vc, set(e1, "color", i, uint64(i+1), site1))

			assert.Equal(t, id, vc.Head())
			v, err := vc.Version(id)
			require.NoError(t, err)
			require.Len(t, v.Parents, 1)
			assert.Equal(t, before, v.Parents[0])
			assert.Equal(t, "alice", v.Author)
		}
	})
}

func TestCommitOnBranch_CompareAndSwap(t *testing.T) {
	vc := createTestVCS(t)
	e1 := uuid.New()
	stale := vc.Head()

	_, err := vc.CommitOnBranch(models.MainBranch, stale, "alice", "first", []models.Operation{set(e1, "a", 1, 1, site1)})
	require.NoError(t, err)

	_, err = vc.CommitOnBranch(models.MainBranch, stale, "bob", "second", []models.Operation{set(e1, "a", 2, 2, site2)})
	require.ErrorIs(t, err, models.ErrVersionConflict)

	_, err = vc.CommitOnBranch("missing", stale, "bob", "second", []models.Operation{set(e1, "a", 2, 2, site2)})
	require.ErrorIs(t, err, ErrBranchNotFound)

	assert.Len(t, vc.History(0), 2)
}

func TestCommit_ConcurrentWritersNeverLoseCommits(t *testing.T) {
	vc := createTestVCS(t)
	e1 := uuid.New()

	const writers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		committed []uuid.UUID
		conflicts int
	)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := vc.Commit("alice", "parallel", []models.Operation{set(e1, "n", i, uint64(i+1), site1)})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				committed = append(committed, id)
			case errors.Is(err, models.ErrVersionConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, writers, len(committed)+conflicts)
	// каждый успешный коммит остался на цепочке первых родителей
	history := vc.History(0)
	assert.Len(t, history, len(committed)+1)
	onChain := make(map[uuid.UUID]bool)
	for _, v := range history {
		onChain[v.ID] = true
	}
	for _, id := range committed {
		assert.True(t, onChain[id], "commit %s lost", id)
	}
}

func TestBranches(t *testing.T) {
	vc := createTestVCS(t)
	root := vc.Head()
	v1 := mustCommit(t, vc, set(uuid.New(), "color", "red", 1, site1))

	require.NoError(t, vc.CreateBranch("feature", nil))
	require.NoError(t, vc.CreateBranch("from-root", &root))

	feature, err := vc.Branch("feature")
	require.NoError(t, err)
	assert.Equal(t, v1, feature.Head)
	assert.False(t, feature.Protected)

	fromRoot, err := vc.Branch("from-root")
	require.NoError(t, err)
	assert.Equal(t, root, fromRoot.Head)

	tests := []struct {
		name    string
		branch  string
		start   *uuid.UUID
		wantErr error
	}{
		{name: "duplicate", branch: "feature", wantErr: ErrBranchExists},
		{name: "duplicate main", branch: models.MainBranch, wantErr: models.ErrAlreadyExists},
		{name: "unknown start", branch: "x", start: func() *uuid.UUID { id := uuid.New(); return &id }(), wantErr: ErrVersionNotFound},
		{name: "invalid name", branch: "bad name", wantErr: validation.ErrInvalidName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := vc.CreateBranch(tt.branch, tt.start)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	names := make([]string, 0)
	for _, b := range vc.Branches() {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"feature", "from-root", "main"}, names)
}

func TestCheckout(t *testing.T) {
	vc := createTestVCS(t)
	root := vc.Head()
	require.NoError(t, vc.CreateBranch("feature", nil))

	head, err := vc.Checkout("feature")
	require.NoError(t, err)
	assert.Equal(t, root, head)
	assert.Equal(t, "feature", vc.CurrentBranch())

	v := mustCommit(t, vc, set(uuid.New(), "size", 5, 1, site2))
	assert.Equal(t, v, vc.Head())

	main, err := vc.Branch(models.MainBranch)
	require.NoError(t, err)
	assert.Equal(t, root, main.Head, "commit on feature must not move main")

	_, err = vc.Checkout("missing")
	require.ErrorIs(t, err, ErrBranchNotFound)
	require.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, "feature", vc.CurrentBranch())
}

func TestDeleteBranch(t *testing.T) {
	vc := createTestVCS(t)
	require.NoError(t, vc.CreateBranch("feature", nil))
	require.NoError(t, vc.CreateBranch("other", nil))

	t.Run("main is protected on main", func(t *testing.T) {
		err := vc.DeleteBranch(models.MainBranch)
		require.ErrorIs(t, err, ErrProtectedBranch)
		require.ErrorIs(t, err, models.ErrInvalidState)
	})

	t.Run("main is protected from another branch", func(t *testing.T) {
		mustCheckout(t, vc, "feature")
		mustCommit(t, vc, set(uuid.New(), "x", 1, 1, site1))
		require.ErrorIs(t, vc.DeleteBranch(models.MainBranch), ErrProtectedBranch)
	})

	t.Run("current branch", func(t *testing.T) {
		require.ErrorIs(t, vc.DeleteBranch("feature"), ErrCurrentBranch)
	})

	t.Run("unknown", func(t *testing.T) {
		require.ErrorIs(t, vc.DeleteBranch("missing"), ErrBranchNotFound)
	})

	t.Run("deleted", func(t *testing.T) {
		require.NoError(t, vc.DeleteBranch("other"))
		_, err := vc.Branch("other")
		require.ErrorIs(t, err, ErrBranchNotFound)
	})
}

func TestTags(t *testing.T) {
	vc := createTestVCS(t)
	v1 := mustCommit(t, vc, set(uuid.New(), "color", "red", 1, site1))

	require.NoError(t, vc.CreateTag("v1.0", v1))

	id, ok := vc.VersionByTag("v1.0")
	require.True(t, ok)
	assert.Equal(t, v1, id)

	v, err := vc.Version(v1)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1.0"}, v.Tags)

	require.ErrorIs(t, vc.CreateTag("v1.0", vc.Head()), ErrTagExists)
	require.ErrorIs(t, vc.CreateTag("v2.0", uuid.New()), ErrVersionNotFound)
	require.ErrorIs(t, vc.CreateTag("", v1), validation.ErrInvalidName)

	_, ok = vc.VersionByTag("missing")
	assert.False(t, ok)

	tags := vc.Tags()
	require.Len(t, tags, 1)
	assert.Equal(t, v1, tags[0].VersionID)
}

func TestHistory(t *testing.T) {
	vc := createTestVCS(t)
	root := vc.Head()
	e1 := uuid.New()
	v1 := mustCommit(t, vc, set(e1, "a", 1, 1, site1))
	v2 := mustCommit(t, vc, set(e1, "a", 2, 2, site1))
	v3 := mustCommit(t, vc, set(e1, "a", 3, 3, site1))

	ids := func(versions []*models.Version) []uuid.UUID {
		result := make([]uuid.UUID, 0, len(versions))
		for _, v := range versions {
			result = append(result, v.ID)
		}
		return result
	}

	assert.Equal(t, []uuid.UUID{v3, v2, v1, root}, ids(vc.History(0)))
	assert.Equal(t, []uuid.UUID{v3, v2}, ids(vc.History(2)))
	assert.Equal(t, []uuid.UUID{v3, v2, v1, root}, ids(vc.History(100)))
}

func TestIsAncestor(t *testing.T) {
	vc := createTestVCS(t)
	root := vc.Head()
	v1 := mustCommit(t, vc, set(uuid.New(), "a", 1, 1, site1))

	ok, err := vc.IsAncestor(root, v1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = vc.IsAncestor(v1, root)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = vc.IsAncestor(v1, v1)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = vc.IsAncestor(uuid.New(), v1)
	require.ErrorIs(t, err, ErrVersionNotFound)
}

func TestTraversalLimit(t *testing.T) {
	vc := createTestVCS(t, WithMaxTraversal(3))
	root := vc.Head()
	e1 := uuid.New()
	for i := range 5 {
		mustCommit(t, vc, set(e1, "a", i, uint64(i+1), site1))
	}

	_, err := vc.IsAncestor(root, vc.Head())
	require.ErrorIs(t, err, ErrTraversalLimit)

	_, err = vc.Snapshot(vc.Head())
	require.ErrorIs(t, err, ErrTraversalLimit)
}

func TestAcyclicity(t *testing.T) {
	vc := createTestVCS(t)
	e1, e2 := uuid.New(), uuid.New()

	mustCommit(t, vc, set(e1, "a", 1, 1, site1))
	require.NoError(t, vc.CreateBranch("feature", nil))
	mustCheckout(t, vc, "feature")
	mustCommit(t, vc, set(e2, "b", 1, 2, site2))
	mustCheckout(t, vc, models.MainBranch)
	mustCommit(t, vc, set(e1, "a", 2, 3, site1))
	_, err := vc.Merge("feature", "alice", models.StrategyLastWriteWins)
	require.NoError(t, err)
	mustCheckout(t, vc, "feature")
	_, err = vc.Merge(models.MainBranch, "bob", models.StrategyLastWriteWins)
	require.NoError(t, err)

	vc.mu.RLock()
	defer vc.mu.RUnlock()
	for id, v := range vc.versions {
		found := false
		require.NoError(t, vc.walk(v.Parents, func(visited uuid.UUID) bool {
			found = visited == id
			return !found
		}))
		assert.False(t, found, "version %s reaches itself", id)
	}
}

func TestPersistence_Sink(t *testing.T) {
	var mu sync.Mutex
	savedVersions := 0
	sink := &storage.SinkMock{
		SaveVersionFunc: func(ctx context.Context, version *models.Version) error {
			mu.Lock()
			defer mu.Unlock()
			savedVersions++
			return nil
		},
		SaveBranchFunc: func(ctx context.Context, branch models.Branch) error {
			return nil
		},
		DeleteBranchFunc: func(ctx context.Context, name string) error {
			return nil
		},
		SaveTagFunc: func(ctx context.Context, tag models.Tag) error {
			return nil
		},
		SaveCurrentBranchFunc: func(ctx context.Context, name string) error {
			return nil
		},
	}

	vc := createTestVCS(t, WithSink(sink))
	v1 := mustCommit(t, vc, set(uuid.New(), "a", 1, 1, site1))
	require.NoError(t, vc.CreateBranch("feature", nil))
	_, err := vc.Checkout("feature")
	require.NoError(t, err)
	mustCheckout(t, vc, models.MainBranch)
	require.NoError(t, vc.DeleteBranch("feature"))
	require.NoError(t, vc.CreateTag("release", v1))

	assert.Equal(t, 3, savedVersions, "root, commit and tagged version")
	assert.Len(t, sink.SaveBranchCalls(), 3, "main on init, main on commit, feature")
	require.Len(t, sink.DeleteBranchCalls(), 1)
	assert.Equal(t, "feature", sink.DeleteBranchCalls()[0].Name)
	require.Len(t, sink.SaveTagCalls(), 1)
	assert.Equal(t, "release", sink.SaveTagCalls()[0].Tag.Name)
	assert.Len(t, sink.SaveCurrentBranchCalls(), 3)
	assert.Equal(t, []string{"release"}, sink.SaveVersionCalls()[2].Version.Tags)
}

func TestPersistence_FailureDoesNotRollBack(t *testing.T) {
	sinkErr := errors.New("disk full")
	sink := &storage.SinkMock{
		SaveVersionFunc: func(ctx context.Context, version *models.Version) error {
			return sinkErr
		},
		SaveBranchFunc: func(ctx context.Context, branch models.Branch) error {
			return sinkErr
		},
		SaveCurrentBranchFunc: func(ctx context.Context, name string) error {
			return sinkErr
		},
	}

	vc := createTestVCS(t, WithSink(sink))
	id, err := vc.Commit("alice", "still committed", []models.Operation{set(uuid.New(), "a", 1, 1, site1)})
	require.NoError(t, err)
	assert.Equal(t, id, vc.Head())
}

// gatedSink задерживает первую запись после arm() до release(),
// чтобы более позднее изменение успело завершиться в памяти раньше.
type gatedSink struct {
	mu       sync.Mutex
	armed    bool
	once     sync.Once
	blocked  chan struct{}
	released chan struct{}
	heads    map[string]uuid.UUID
	tags     map[uuid.UUID][]string
}

func newGatedSink() *gatedSink {
	return &gatedSink{
		blocked:  make(chan struct{}),
		released: make(chan struct{}),
		heads:    make(map[string]uuid.UUID),
		tags:     make(map[uuid.UUID][]string),
	}
}

func (g *gatedSink) arm() {
	g.mu.Lock()
	g.armed = true
	g.mu.Unlock()
}

func (g *gatedSink) gate() {
	g.mu.Lock()
	armed := g.armed
	g.mu.Unlock()
	if armed {
		g.once.Do(func() {
			close(g.blocked)
			<-g.released
		})
	}
}

func (g *gatedSink) mock(gateBranches, gateVersions bool) *storage.SinkMock {
	return &storage.SinkMock{
		SaveVersionFunc: func(ctx context.Context, version *models.Version) error {
			if gateVersions {
				g.gate()
			}
			g.mu.Lock()
			defer g.mu.Unlock()
			g.tags[version.ID] = version.Tags
			return nil
		},
		SaveBranchFunc: func(ctx context.Context, branch models.Branch) error {
			if gateBranches {
				g.gate()
			}
			g.mu.Lock()
			defer g.mu.Unlock()
			g.heads[branch.Name] = branch.Head
			return nil
		},
		SaveTagFunc: func(ctx context.Context, tag models.Tag) error {
			return nil
		},
		SaveCurrentBranchFunc: func(ctx context.Context, name string) error {
			return nil
		},
	}
}

func TestPersistence_SlowWriteDoesNotOverwriteNewerHead(t *testing.T) {
	gated := newGatedSink()
	vc := createTestVCS(t, WithSink(gated.mock(true, false)))
	gated.arm()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := vc.Commit("alice", "first", []models.Operation{set(uuid.New(), "a", 1, 1, site1)})
		assert.NoError(t, err)
	}()
	<-gated.blocked

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := vc.Commit("bob", "second", []models.Operation{set(uuid.New(), "b", 1, 2, site2)})
		assert.NoError(t, err)
	}()
	require.Eventually(t, func() bool { return len(vc.Versions()) == 3 },
		time.Second, time.Millisecond, "second commit lands in memory while the first write is stuck")

	close(gated.released)
	wg.Wait()

	gated.mu.Lock()
	defer gated.mu.Unlock()
	assert.Equal(t, vc.Head(), gated.heads[models.MainBranch])
}

func TestPersistence_ConcurrentTagsKeepAllNames(t *testing.T) {
	gated := newGatedSink()
	vc := createTestVCS(t, WithSink(gated.mock(false, true)))
	target := mustCommit(t, vc, set(uuid.New(), "a", 1, 1, site1))
	gated.arm()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, vc.CreateTag("v1.0", target))
	}()
	<-gated.blocked

	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, vc.CreateTag("stable", target))
	}()
	require.Eventually(t, func() bool { return len(vc.Tags()) == 2 },
		time.Second, time.Millisecond)

	close(gated.released)
	wg.Wait()

	gated.mu.Lock()
	defer gated.mu.Unlock()
	assert.Equal(t, []string{"v1.0", "stable"}, gated.tags[target])
}

func TestPersistence_DeletedThenRecreatedBranch(t *testing.T) {
	repo := newMemRepo()
	vc := createTestVCS(t, WithSink(repo))

	require.NoError(t, vc.CreateBranch("feature", nil))
	require.NoError(t, vc.DeleteBranch("feature"))
	head := mustCommit(t, vc, set(uuid.New(), "a", 1, 1, site1))
	require.NoError(t, vc.CreateBranch("feature", nil))

	restored, err := Restore(context.Background(), repo)
	require.NoError(t, err)
	branch, err := restored.Branch("feature")
	require.NoError(t, err)
	assert.Equal(t, head, branch.Head)
}

func TestClock_ContinuesLatestCounter(t *testing.T) {
	vc := createTestVCS(t)

	clock := vc.Clock(site2)
	assert.Equal(t, site2, clock.ActorID())
	assert.Equal(t, uint64(0), clock.Now().Counter, "root carries no operations")

	mustCommit(t, vc, set(uuid.New(), "a", 1, 7, site1))
	mustCommit(t, vc, set(uuid.New(), "b", 1, 4, site1))

	clock = vc.Clock(site2)
	assert.Equal(t, crdt.NewTimestamp(8, site2), clock.Tick())

	anonymous := vc.Clock(uuid.Nil)
	assert.NotEqual(t, uuid.Nil, anonymous.ActorID())
	assert.Equal(t, uint64(7), anonymous.Now().Counter)
}
