// Package metrics exposes Prometheus collectors for store operations and
// export jobs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeOK      = "ok"
	OutcomeFailure = "failure" // reported in a result value
	OutcomeError   = "error"   // returned as an error
)

// LabelInvalid replaces caller supplied label values that failed
// validation.
const LabelInvalid = "invalid"

const namespace = "sei"

// Collector owns a private registry and the metrics recorded into it.
type Collector struct {
	registry *prometheus.Registry

	storeOps      *prometheus.CounterVec
	storeDuration *prometheus.HistogramVec
	exports       *prometheus.CounterVec
	exportRows    *prometheus.HistogramVec
}

// NewCollector registers the collectors on registry. A nil registry gets a
// fresh one with the Go runtime and process collectors.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	c := &Collector{
		registry: registry,
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Store operations by backend kind, operation and outcome.",
		}, []string{"kind", "op", "outcome"}),
		storeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Store operation latency.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"kind", "op"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Export jobs by dataset, format and outcome.",
		}, []string{"dataset", "format", "outcome"}),
		exportRows: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_rows",
			Help:      "Rows written per export job.",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 7),
		}, []string{"dataset"}),
	}

	registry.MustRegister(c.storeOps, c.storeDuration, c.exports, c.exportRows)
	return c
}

// ObserveStore records one store operation.
func (c *Collector) ObserveStore(kind, op, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.storeOps.WithLabelValues(kind, op, outcome).Inc()
	c.storeDuration.WithLabelValues(kind, op).Observe(elapsed.Seconds())
}

// ObserveExport records one export job.
func (c *Collector) ObserveExport(dataset, format, outcome string, rows int) {
	if c == nil {
		return
	}
	c.exports.WithLabelValues(dataset, format, outcome).Inc()
	if outcome == OutcomeOK {
		c.exportRows.WithLabelValues(dataset).Observe(float64(rows))
	}
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Default is the process-wide collector used by the store adapters and the
// export engine.
var Default = NewCollector(nil)

// ObserveStore records into Default.
func ObserveStore(kind, op, outcome string, elapsed time.Duration) {
	Default.ObserveStore(kind, op, outcome, elapsed)
}
