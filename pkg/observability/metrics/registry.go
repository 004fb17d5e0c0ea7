// Package metrics provides Prometheus metrics for list screens.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry manages Prometheus metrics registration and exposure.
// It registers the list metrics and the Go runtime collectors.
type Registry struct {
	registry *prometheus.Registry
	lists    *ListMetrics
}

// NewRegistry creates a registry with list metrics and runtime collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	lists := NewListMetrics()

	reg.MustRegister(lists.collectors()...)
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &Registry{
		registry: reg,
		lists:    lists,
	}
}

// Lists returns the list metrics registered with r.
func (r *Registry) Lists() *ListMetrics {
	return r.lists
}

// Gatherer returns the underlying prometheus.Gatherer.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
