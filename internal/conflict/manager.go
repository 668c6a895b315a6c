package conflict

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/gophdraw/internal/metrics"
	"github.com/iudanet/gophdraw/internal/models"
)

// ErrConflictNotFound indicates that a conflict is not pending
// (unknown id or already resolved).
var ErrConflictNotFound = fmt.Errorf("conflict %w", models.ErrNotFound)

// Config задает политику разрешения конфликтов.
type Config struct {
	Priorities             Priorities                // Priorities приоритеты авторов для StrategyUserPriority
	DefaultStrategy        models.ResolutionStrategy // DefaultStrategy стратегия, если вызывающий ее не указал
	AutoResolveLowSeverity bool                      // AutoResolveLowSeverity разрешать Low конфликты в AutoResolveAll
}

// DefaultConfig returns LastWriteWins with low-severity auto resolution.
func DefaultConfig() Config {
	return Config{
		Priorities:             Priorities{},
		DefaultStrategy:        models.StrategyLastWriteWins,
		AutoResolveLowSeverity: true,
	}
}

// ResolvedConflict - запись истории разрешений.
type ResolvedConflict struct {
	Conflict   models.Conflict           `json:"conflict"`
	Resolution models.ConflictResolution `json:"resolution"`
}

// AutoResolved pairs a conflict id with its automatic resolution.
type AutoResolved struct {
	Resolution models.ConflictResolution `json:"resolution"`
	ConflictID uuid.UUID                 `json:"conflict_id"`
}

// Statistics - сводка по ожидающим и разрешенным конфликтам.
type Statistics struct {
	ByType                map[models.ConflictType]int       `json:"by_type"`
	BySeverity            map[models.Severity]int           `json:"by_severity"`
	ByStrategy            map[models.ResolutionStrategy]int `json:"by_strategy"`
	Pending               int                               `json:"pending"`
	Resolved              int                               `json:"resolved"`
	RequiringNotification int                               `json:"requiring_notification"`
}

// Manager хранит ожидающие конфликты и историю разрешений.
// Обнаружение и разрешение - чистые функции; мьютекс защищает
// только коллекции менеджера.
type Manager struct {
	pending  map[uuid.UUID]models.Conflict
	logger   *slog.Logger
	metrics  *metrics.Collector
	now      func() time.Time
	order    []uuid.UUID // порядок обнаружения ожидающих конфликтов
	resolved []ResolvedConflict
	cfg      Config
	mu       sync.Mutex
}

// NewManager создает менеджер конфликтов. logger и collector могут быть nil.
func NewManager(cfg Config, logger *slog.Logger, collector *metrics.Collector) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.DefaultStrategy == "" {
		cfg.DefaultStrategy = models.StrategyLastWriteWins
	}
	if cfg.Priorities == nil {
		cfg.Priorities = Priorities{}
	}

	return &Manager{
		pending: make(map[uuid.UUID]models.Conflict),
		logger:  logger,
		metrics: collector,
		now:     time.Now,
		cfg:     cfg,
	}
}

// Config returns the manager's resolution policy.
func (m *Manager) Config() Config {
	return m.cfg
}

// DetectConflicts находит конфликты в пакете операций и сохраняет
// их как ожидающие.
func (m *Manager) DetectConflicts(records []models.OperationRecord) []models.Conflict {
	conflicts := Detect(records, m.now())
	m.Track(conflicts...)

	if len(conflicts) > 0 {
		m.logger.Info("Conflicts detected",
			"operations", len(records),
			"conflicts", len(conflicts))
	}
	return conflicts
}

// Track добавляет уже обнаруженные конфликты в список ожидающих.
func (m *Manager) Track(conflicts ...models.Conflict) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range conflicts {
		if _, exists := m.pending[c.ID]; !exists {
			m.order = append(m.order, c.ID)
		}
		m.pending[c.ID] = c
		m.metrics.ConflictDetected(string(c.Type))
	}
	m.metrics.PendingConflicts(len(m.pending))
}

// Resolve разрешает конфликт без сохранения в менеджере.
// Используется движком слияния, который сам решает, что записать.
func (m *Manager) Resolve(c models.Conflict, strategy models.ResolutionStrategy) models.ConflictResolution {
	return Resolve(c, strategy, m.cfg.Priorities, m.now())
}

// ResolveConflict извлекает конфликт из ожидающих и разрешает его.
// Повторный вызов с тем же id возвращает ErrConflictNotFound.
// При strategy == nil используется стратегия по умолчанию.
func (m *Manager) ResolveConflict(id uuid.UUID, strategy *models.ResolutionStrategy) (models.ConflictResolution, error) {
	c, ok := m.take(id)
	if !ok {
		return models.ConflictResolution{}, fmt.Errorf("%w: %s", ErrConflictNotFound, id)
	}

	s := m.cfg.DefaultStrategy
	if strategy != nil {
		s = *strategy
	}

	resolution := m.Resolve(c, s)
	m.Record(c, resolution)
	return resolution, nil
}

// AutoResolveAll разрешает стратегией по умолчанию все ожидающие конфликты,
// помеченные auto_resolvable, если это разрешено конфигурацией.
func (m *Manager) AutoResolveAll() []AutoResolved {
	if !m.cfg.AutoResolveLowSeverity {
		return nil
	}

	var candidates []uuid.UUID
	m.mu.Lock()
	for _, id := range m.order {
		if m.pending[id].AutoResolvable {
			candidates = append(candidates, id)
		}
	}
	m.mu.Unlock()

	var results []AutoResolved
	for _, id := range candidates {
		resolution, err := m.ResolveConflict(id, nil)
		if err != nil {
			// конфликт успели разрешить параллельно
			continue
		}
		results = append(results, AutoResolved{ConflictID: id, Resolution: resolution})
	}
	return results
}

// Record добавляет разрешение в историю.
func (m *Manager) Record(c models.Conflict, resolution models.ConflictResolution) {
	m.mu.Lock()
	m.resolved = append(m.resolved, ResolvedConflict{Conflict: c, Resolution: resolution})
	m.mu.Unlock()

	m.metrics.ConflictResolved(string(c.Type), string(resolution.Strategy))

	if resolution.RequiresNotification {
		m.logger.Warn("Conflict requires manual resolution",
			"conflict_id", c.ID,
			"type", c.Type,
			"entities", len(c.EntityIDs))
		return
	}
	m.logger.Debug("Conflict resolved",
		"conflict_id", c.ID,
		"type", c.Type,
		"strategy", resolution.Strategy,
		"discarded", len(resolution.DiscardedOperations))
}

func (m *Manager) take(id uuid.UUID) (models.Conflict, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.pending[id]
	if !ok {
		return models.Conflict{}, false
	}
	delete(m.pending, id)
	for i, pendingID := range m.order {
		if pendingID == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.metrics.PendingConflicts(len(m.pending))
	return c, true
}

// PendingConflicts возвращает ожидающие конфликты в порядке обнаружения.
func (m *Manager) PendingConflicts() []models.Conflict {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]models.Conflict, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.pending[id])
	}
	return result
}

// PendingConflict returns a single pending conflict.
func (m *Manager) PendingConflict(id uuid.UUID) (models.Conflict, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.pending[id]
	return c, ok
}

// ResolvedConflicts возвращает историю разрешений (от старых к новым).
func (m *Manager) ResolvedConflicts() []ResolvedConflict {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]ResolvedConflict, len(m.resolved))
	copy(result, m.resolved)
	return result
}

// ClearResolvedHistory очищает историю разрешений.
func (m *Manager) ClearResolvedHistory() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.resolved = nil
}

// Statistics считает сводку по текущему состоянию менеджера.
func (m *Manager) Statistics() Statistics {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := Statistics{
		ByType:     make(map[models.ConflictType]int),
		BySeverity: make(map[models.Severity]int),
		ByStrategy: make(map[models.ResolutionStrategy]int),
		Pending:    len(m.pending),
		Resolved:   len(m.resolved),
	}

	for _, c := range m.pending {
		stats.ByType[c.Type]++
		stats.BySeverity[c.Severity]++
	}
	for _, r := range m.resolved {
		stats.ByType[r.Conflict.Type]++
		stats.BySeverity[r.Conflict.Severity]++
		stats.ByStrategy[r.Resolution.Strategy]++
		if r.Resolution.RequiresNotification {
			stats.RequiringNotification++
		}
	}
	return stats
}
