// Package metrics exposes Prometheus collectors for report exports.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the export collectors on a private registry.
type Metrics struct {
	reg *prometheus.Registry

	exports  *prometheus.CounterVec   // hosereport_exports_total
	duration *prometheus.HistogramVec // hosereport_export_duration_seconds
	pages    prometheus.Counter       // hosereport_pages_total
	inFlight prometheus.Gauge         // hosereport_exports_in_flight
}

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() (*Metrics, error) {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		reg: reg,
		exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hosereport_exports_total",
				Help: "Report exports, partitioned by source and status.",
			},
			[]string{"source", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hosereport_export_duration_seconds",
				Help:    "Wall time of report exports, partitioned by engine.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"engine"},
		),
		pages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hosereport_pages_total",
			Help: "Report pages rendered by successful exports.",
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hosereport_exports_in_flight",
			Help: "Exports currently being generated.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.exports, m.duration, m.pages, m.inFlight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register collector: %w", err)
		}
	}
	return m, nil
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Begin marks an export as started. The returned func records its outcome;
// call it exactly once.
func (m *Metrics) Begin(source, engine string) func(pages int, err error) {
	if m == nil {
		return func(int, error) {}
	}
	start := time.Now()
	m.inFlight.Inc()
	return func(pages int, err error) {
		m.inFlight.Dec()
		status := "ok"
		if err != nil {
			status = "failed"
		}
		m.exports.WithLabelValues(source, status).Inc()
		m.duration.WithLabelValues(engine).Observe(time.Since(start).Seconds())
		if err == nil {
			m.pages.Add(float64(pages))
		}
	}
}
