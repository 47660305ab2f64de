// Package metrics exposes crawl counters to prometheus. A nil *Metrics is
// valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tagcrawl"

type Metrics struct {
	registry *prometheus.Registry

	units    *prometheus.CounterVec
	requests *prometheus.CounterVec
	bytes    prometheus.Counter
	exports  *prometheus.CounterVec
	errors   *prometheus.CounterVec
}

// New registers the crawl counters, plus the go and process collectors, on a
// fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_total",
			Help:      "Queue units processed, by kind.",
		}, []string{"kind"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Fetches issued, by method and outcome.",
		}, []string{"method", "outcome"}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "response_bytes_total",
			Help:      "Bytes of response bodies received.",
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Exports run, by format and outcome.",
		}, []string{"format", "outcome"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Unit-local errors, by class.",
		}, []string{"class"}),
	}
	m.registry.MustRegister(
		m.units, m.requests, m.bytes, m.exports, m.errors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}

func (m *Metrics) Unit(kind string) {
	if m == nil {
		return
	}
	m.units.WithLabelValues(kind).Inc()
}

func (m *Metrics) Request(method string, ok bool, size int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, outcome(ok)).Inc()
	if size > 0 {
		m.bytes.Add(float64(size))
	}
}

func (m *Metrics) Export(format string, ok bool) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(format, outcome(ok)).Inc()
}

func (m *Metrics) Error(class string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(class).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
