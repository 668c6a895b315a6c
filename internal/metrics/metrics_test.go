package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.Commit(CommitOK)
	c.Commit(CommitOK)
	c.Commit(CommitVersionConflict)
	c.Merge(MergeFastForward)
	c.ConflictDetected("property_conflict")
	c.ConflictResolved("property_conflict", "last_write_wins")
	c.PersistFailure("version")
	c.Traversal(12)
	c.PendingConflicts(3)
	c.HTTPRequest("GET", 200)
	c.HTTPRequest("GET", 204)
	c.HTTPRequest("POST", 409)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.commits.WithLabelValues(CommitOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.commits.WithLabelValues(CommitVersionConflict)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.merges.WithLabelValues(MergeFastForward)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.conflictsDetected.WithLabelValues("property_conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.conflictsResolved.WithLabelValues("property_conflict", "last_write_wins")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.persistFailures.WithLabelValues("version")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.pendingConflicts))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("POST", "4xx")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.Commit(CommitOK)
		c.Merge(MergeThreeWay)
		c.ConflictDetected("x")
		c.ConflictResolved("x", "y")
		c.PersistFailure("branch")
		c.Traversal(1)
		c.PendingConflicts(0)
		c.HTTPRequest("GET", 200)
	})
}
