// Package metrics provides Prometheus metrics for the search service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "talent_search"

// StrategyNone labels searches that no fusion tier could answer.
const StrategyNone = "none"

// Metrics holds the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	ParseOutcomes  *prometheus.CounterVec
	SearchesTotal  *prometheus.CounterVec
	SearchDuration prometheus.Histogram
	SearchResults  prometheus.Histogram
	Ingestions     *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	m := &Metrics{}

	m.ParseOutcomes = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_parse_total",
			Help:      "Query parses by parser strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)

	m.SearchesTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Completed searches by parser and fusion tier",
		},
		[]string{"parser", "strategy"},
	)

	m.SearchDuration = f.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "End-to-end search latency in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	m.SearchResults = f.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of results returned per search",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		},
	)

	m.Ingestions = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestions_total",
			Help:      "Resume ingestions by result",
		},
		[]string{"result"},
	)

	m.HTTPRequestsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code",
		},
		[]string{"route", "status"},
	)

	m.HTTPRequestDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	return m
}

// ParseOutcome records which parser produced a query.
func (m *Metrics) ParseOutcome(strategy, outcome string) {
	if m == nil {
		return
	}
	m.ParseOutcomes.WithLabelValues(strategy, outcome).Inc()
}

// SearchCompleted records one finished search.
func (m *Metrics) SearchCompleted(parser, strategy string, results int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if strategy == "" {
		strategy = StrategyNone
	}
	m.SearchesTotal.WithLabelValues(parser, strategy).Inc()
	m.SearchDuration.Observe(elapsed.Seconds())
	m.SearchResults.Observe(float64(results))
}

// CandidateIngested records one stored resume.
func (m *Metrics) CandidateIngested(isNew bool) {
	if m == nil {
		return
	}
	result := "updated"
	if isNew {
		result = "created"
	}
	m.Ingestions.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
