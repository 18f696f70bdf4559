// Package metrics exposes Prometheus collectors for validation runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records validation outcomes on its own registry, so several
// engines (and tests) never clash on the global one.
type Collector struct {
	registry    *prometheus.Registry
	validations *prometheus.CounterVec
	failures    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// New creates a Collector with the Go and process collectors attached.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conform_validations_total",
				Help: "Total number of documents validated",
			},
			[]string{"schema", "result"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conform_validation_errors_total",
				Help: "Total number of top-level validation errors reported",
			},
			[]string{"schema"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "conform_validation_duration_seconds",
				Help:    "Duration of validation runs",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"schema"},
		),
	}
	c.registry.MustRegister(
		c.validations,
		c.failures,
		c.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveValidation records one validation run.
func (c *Collector) ObserveValidation(schema string, valid bool, errors int, took time.Duration) {
	result := "valid"
	if !valid {
		result = "invalid"
	}
	c.validations.WithLabelValues(schema, result).Inc()
	c.failures.WithLabelValues(schema).Add(float64(errors))
	c.duration.WithLabelValues(schema).Observe(took.Seconds())
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
