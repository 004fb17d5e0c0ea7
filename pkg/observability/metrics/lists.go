package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Refresh outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// ListMetrics records query and refresh activity per domain.
// A nil *ListMetrics is valid and records nothing.
type ListMetrics struct {
	queries         *prometheus.CounterVec
	visibleRecords  *prometheus.HistogramVec
	refreshes       *prometheus.CounterVec
	refreshDuration *prometheus.HistogramVec
}

// NewListMetrics creates unregistered list metrics.
func NewListMetrics() *ListMetrics {
	return &ListMetrics{
		queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "listquery_queries_total",
				Help: "Total number of list queries applied",
			},
			[]string{"domain"},
		),
		visibleRecords: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "listquery_visible_records",
				Help:    "Number of records returned by a list query",
				Buckets: prometheus.ExponentialBuckets(1, 4, 7),
			},
			[]string{"domain"},
		),
		refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "listquery_refreshes_total",
				Help: "Total number of source list refreshes",
			},
			[]string{"domain", "outcome"},
		),
		refreshDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "listquery_refresh_duration_seconds",
				Help:    "Source list refresh duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"domain"},
		),
	}
}

func (m *ListMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.queries, m.visibleRecords, m.refreshes, m.refreshDuration}
}

// ObserveQuery records one query returning visible records.
func (m *ListMetrics) ObserveQuery(domain string, visible int) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(domain).Inc()
	m.visibleRecords.WithLabelValues(domain).Observe(float64(visible))
}

// ObserveRefresh records one source refresh.
func (m *ListMetrics) ObserveRefresh(domain string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.refreshes.WithLabelValues(domain, outcome).Inc()
	m.refreshDuration.WithLabelValues(domain).Observe(duration.Seconds())
}

// Queries exposes the query counter, labelled by domain.
func (m *ListMetrics) Queries() *prometheus.CounterVec {
	return m.queries
}

// Refreshes exposes the refresh counter, labelled by domain and outcome.
func (m *ListMetrics) Refreshes() *prometheus.CounterVec {
	return m.refreshes
}
