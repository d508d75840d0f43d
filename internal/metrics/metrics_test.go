package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewIsSingleton(t *testing.T) {
	assert.Same(t, New(), New())
}

func TestObserveCommit(t *testing.T) {
	m := New()
	before := testutil.ToFloat64(m.Commits.WithLabelValues("job_posting", "error"))

	m.ObserveCommit("job_posting", errors.New("db down"))

	after := testutil.ToFloat64(m.Commits.WithLabelValues("job_posting", "error"))
	assert.Equal(t, before+1, after)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCommit("candidate", nil)
		m.ObserveStage("candidate")
		m.ObserveUpload(nil)
		m.ObserveSnapshot()
		m.ObserveGroupCache(true)
		m.ObserveGroupDelete(nil)
	})
}
