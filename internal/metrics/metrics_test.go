package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ParseOutcome("llm", "fallback")
	m.ParseOutcome("rules", "ok")
	m.ParseOutcome("rules", "ok")
	m.SearchCompleted("rules", "strict-semantic", 3, 20*time.Millisecond)
	m.SearchCompleted("rules", "", 0, time.Millisecond)
	m.CandidateIngested(true)
	m.CandidateIngested(false)
	m.CandidateIngested(true)
	m.RecordHTTPRequest("/search_candidates", 200, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ParseOutcomes.WithLabelValues("llm", "fallback")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ParseOutcomes.WithLabelValues("rules", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchesTotal.WithLabelValues("rules", "strict-semantic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchesTotal.WithLabelValues("rules", StrategyNone)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Ingestions.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Ingestions.WithLabelValues("updated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/search_candidates", "200")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "talent_search_search_duration_seconds")
	assert.Contains(t, names, "talent_search_http_request_duration_seconds")
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ParseOutcome("rules", "ok")
		m.SearchCompleted("rules", "open-semantic", 1, time.Second)
		m.CandidateIngested(true)
		m.RecordHTTPRequest("/health", 200, time.Millisecond)
	})
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
