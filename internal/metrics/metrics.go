// Package metrics exposes prometheus collectors for the version store and
// the conflict manager. A nil *Collector is valid and records nothing.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gophdraw"

// Collector группирует метрики движка версий.
type Collector struct {
	commits           *prometheus.CounterVec
	merges            *prometheus.CounterVec
	conflictsDetected *prometheus.CounterVec
	conflictsResolved *prometheus.CounterVec
	persistFailures   *prometheus.CounterVec
	traversalVisited  prometheus.Histogram
	pendingConflicts  prometheus.Gauge
	httpRequests      *prometheus.CounterVec
}

// New регистрирует метрики в reg. Для тестов используется
// prometheus.NewRegistry(), для сервера - отдельный реестр процесса.
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		commits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commits_total",
			Help:      "Commit attempts by result (ok, no_changes, version_conflict, error).",
		}, []string{"result"}),
		merges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merges_total",
			Help:      "Completed merges by kind (fast_forward, three_way, up_to_date).",
		}, []string{"kind"}),
		conflictsDetected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conflicts_detected_total",
			Help:      "Detected conflicts by type.",
		}, []string{"type"}),
		conflictsResolved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conflicts_resolved_total",
			Help:      "Resolved conflicts by type and applied strategy.",
		}, []string{"type", "strategy"}),
		persistFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_failures_total",
			Help:      "Failed writes to the persistence sink by object kind.",
		}, []string{"object"}),
		traversalVisited: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ancestry_visited_versions",
			Help:      "Versions visited by a single ancestry traversal.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10), // 1 .. ~262k
		}),
		pendingConflicts: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_conflicts",
			Help:      "Conflicts waiting for resolution.",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status class (2xx, 4xx, 5xx).",
		}, []string{"method", "status"}),
	}
}

// CommitResult - значения метки result для commits_total.
const (
	CommitOK              = "ok"
	CommitNoChanges       = "no_changes"
	CommitVersionConflict = "version_conflict"
	CommitError           = "error"
)

// MergeKind - значения метки kind для merges_total.
const (
	MergeFastForward = "fast_forward"
	MergeThreeWay    = "three_way"
	MergeUpToDate    = "up_to_date"
)

// Commit records a commit attempt.
func (c *Collector) Commit(result string) {
	if c == nil {
		return
	}
	c.commits.WithLabelValues(result).Inc()
}

// Merge records a completed merge.
func (c *Collector) Merge(kind string) {
	if c == nil {
		return
	}
	c.merges.WithLabelValues(kind).Inc()
}

// ConflictDetected records a detected conflict of the given type.
func (c *Collector) ConflictDetected(conflictType string) {
	if c == nil {
		return
	}
	c.conflictsDetected.WithLabelValues(conflictType).Inc()
}

// ConflictResolved records a resolution.
func (c *Collector) ConflictResolved(conflictType, strategy string) {
	if c == nil {
		return
	}
	c.conflictsResolved.WithLabelValues(conflictType, strategy).Inc()
}

// PersistFailure records a failed sink write.
func (c *Collector) PersistFailure(object string) {
	if c == nil {
		return
	}
	c.persistFailures.WithLabelValues(object).Inc()
}

// Traversal records the size of an ancestry traversal.
func (c *Collector) Traversal(visited int) {
	if c == nil {
		return
	}
	c.traversalVisited.Observe(float64(visited))
}

// PendingConflicts sets the pending conflicts gauge.
func (c *Collector) PendingConflicts(n int) {
	if c == nil {
		return
	}
	c.pendingConflicts.Set(float64(n))
}

// HTTPRequest records a served request. status is the full code,
// only its class is used as a label.
func (c *Collector) HTTPRequest(method string, status int) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, strconv.Itoa(status/100)+"xx").Inc()
}
