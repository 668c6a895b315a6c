// Package vcs implements the version graph of a drawing: commits, branches,
// tags, history and three-way merges.
//
// A VersionControl instance owns its maps and guards them with a single
// RWMutex. Reads run concurrently; every branch head update is a
// compare-and-swap against the head the writer started from, so a lost race
// surfaces as models.ErrVersionConflict instead of a silently dropped commit.
package vcs

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/gophdraw/internal/conflict"
	"github.com/iudanet/gophdraw/internal/metrics"
	"github.com/iudanet/gophdraw/internal/models"
	"github.com/iudanet/gophdraw/internal/storage"
)

const (
	// DefaultMaxTraversal ограничивает число версий, посещаемых одним обходом предков
	DefaultMaxTraversal = 100000

	rootAuthor  = "system"
	rootMessage = "Initial version"
)

// VersionControl хранит граф версий одного документа.
type VersionControl struct {
	versions     map[uuid.UUID]*models.Version
	branches     map[string]*models.Branch
	tags         map[string]models.Tag
	sink         storage.Sink
	conflicts    *conflict.Manager
	logger       *slog.Logger
	metrics      *metrics.Collector
	now          func() time.Time
	current      string
	maxTraversal int
	mu           sync.RWMutex
	// persistMu упорядочивает записи в sink. Порядок захвата: persistMu, затем mu.
	persistMu sync.Mutex
}

// Option настраивает VersionControl.
type Option func(*VersionControl)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(vc *VersionControl) {
		if logger != nil {
			vc.logger = logger
		}
	}
}

// WithSink sets the persistence sink that receives every committed change.
func WithSink(sink storage.Sink) Option {
	return func(vc *VersionControl) {
		vc.sink = sink
	}
}

// WithMetrics sets the prometheus collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(vc *VersionControl) {
		vc.metrics = collector
	}
}

// WithConflictManager sets the manager that resolves merge conflicts and
// keeps the ones that need manual work.
func WithConflictManager(manager *conflict.Manager) Option {
	return func(vc *VersionControl) {
		vc.conflicts = manager
	}
}

// WithMaxTraversal limits the number of versions a single ancestry walk may visit.
func WithMaxTraversal(limit int) Option {
	return func(vc *VersionControl) {
		if limit > 0 {
			vc.maxTraversal = limit
		}
	}
}

// WithClock overrides the wall clock used for version timestamps.
func WithClock(now func() time.Time) Option {
	return func(vc *VersionControl) {
		if now != nil {
			vc.now = now
		}
	}
}

func newEmpty(opts ...Option) *VersionControl {
	vc := &VersionControl{
		versions:     make(map[uuid.UUID]*models.Version),
		branches:     make(map[string]*models.Branch),
		tags:         make(map[string]models.Tag),
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:          time.Now,
		maxTraversal: DefaultMaxTraversal,
	}
	for _, opt := range opts {
		opt(vc)
	}
	if vc.conflicts == nil {
		vc.conflicts = conflict.NewManager(conflict.DefaultConfig(), vc.logger, vc.metrics)
	}
	return vc
}

// New создает граф с корневой версией и защищенной веткой main,
// которая становится текущей.
func New(opts ...Option) *VersionControl {
	vc := newEmpty(opts...)

	root := &models.Version{
		ID:        uuid.New(),
		Author:    rootAuthor,
		Message:   rootMessage,
		Timestamp: vc.now(),
		Parents:   []uuid.UUID{},
	}
	main := &models.Branch{Name: models.MainBranch, Head: root.ID, Protected: true}

	vc.versions[root.ID] = root
	vc.branches[main.Name] = main
	vc.current = main.Name

	vc.persistVersion(root.ID)
	vc.persistBranch(main.Name)
	vc.persistCurrent()

	vc.logger.Info("Version graph initialized", "root", root.ID)
	return vc
}

// Conflicts returns the conflict manager used by merges.
func (vc *VersionControl) Conflicts() *conflict.Manager {
	return vc.conflicts
}

// Head returns the head of the current branch.
func (vc *VersionControl) Head() uuid.UUID {
	vc.mu.RLock()
	defer vc.mu.RUnlock()

	return vc.branches[vc.current].Head
}

// Version возвращает копию версии по id.
func (vc *VersionControl) Version(id uuid.UUID) (*models.Version, error) {
	vc.mu.RLock()
	defer vc.mu.RUnlock()

	v, ok := vc.versions[id]
	if !ok {
		return nil, refError(ErrVersionNotFound, id.String())
	}
	return v.Clone(), nil
}

// Versions возвращает копии всех версий, упорядоченные по времени создания.
func (vc *VersionControl) Versions() []*models.Version {
	vc.mu.RLock()
	result := make([]*models.Version, 0, len(vc.versions))
	for _, v := range vc.versions {
		result = append(result, v.Clone())
	}
	vc.mu.RUnlock()

	slices.SortFunc(result, compareVersions)
	return result
}

// compareVersions упорядочивает версии по времени, затем по id.
func compareVersions(a, b *models.Version) int {
	if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
		return c
	}
	return strings.Compare(a.ID.String(), b.ID.String())
}

// Сохранение выполняется после изменения в памяти и вне блокировки mu.
// Записи сериализуются через persistMu, и каждая из них перечитывает
// текущее состояние объекта: последняя запись в sink всегда совпадает
// с памятью, даже если параллельные изменения завершились в другом порядке.
// Ошибки не откатывают изменение: они логируются и учитываются в метриках,
// повторная запись того же объекта идемпотентна.

func (vc *VersionControl) persistVersion(id uuid.UUID) {
	vc.persist("version", func(ctx context.Context, s storage.Sink) error {
		vc.mu.RLock()
		v, ok := vc.versions[id]
		if ok {
			v = v.Clone()
		}
		vc.mu.RUnlock()

		if !ok {
			return nil
		}
		return s.SaveVersion(ctx, v)
	})
}

// persistBranch сохраняет ветку в ее текущем состоянии или удаляет ее,
// если ветки больше нет в памяти.
func (vc *VersionControl) persistBranch(name string) {
	vc.persist("branch", func(ctx context.Context, s storage.Sink) error {
		vc.mu.RLock()
		b, ok := vc.branches[name]
		var branch models.Branch
		if ok {
			branch = *b
		}
		vc.mu.RUnlock()

		if !ok {
			return s.DeleteBranch(ctx, name)
		}
		return s.SaveBranch(ctx, branch)
	})
}

func (vc *VersionControl) persistCurrent() {
	vc.persist("current_branch", func(ctx context.Context, s storage.Sink) error {
		vc.mu.RLock()
		name := vc.current
		vc.mu.RUnlock()

		return s.SaveCurrentBranch(ctx, name)
	})
}

func (vc *VersionControl) persistTag(name string) {
	vc.persist("tag", func(ctx context.Context, s storage.Sink) error {
		vc.mu.RLock()
		tag, ok := vc.tags[name]
		vc.mu.RUnlock()

		if !ok {
			return nil
		}
		return s.SaveTag(ctx, tag)
	})
}

func (vc *VersionControl) persist(object string, write func(ctx context.Context, s storage.Sink) error) {
	if vc.sink == nil {
		return
	}

	vc.persistMu.Lock()
	defer vc.persistMu.Unlock()

	if err := write(context.Background(), vc.sink); err != nil {
		vc.metrics.PersistFailure(object)
		vc.logger.Warn("Failed to persist change",
			"object", object,
			"error", err)
	}
}
