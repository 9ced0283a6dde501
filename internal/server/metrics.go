package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the dashboard's Prometheus instrumentation. Each Server owns its
// registry so tests can create servers freely.
type Metrics struct {
	registry     *prometheus.Registry
	recomputes   *prometheus.CounterVec
	recomputeDur prometheus.Histogram
	animation    *prometheus.CounterVec
	requests     *prometheus.CounterVec
	records      prometheus.GaugeFunc
}

func newMetrics(records func() float64) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		recomputes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookdash",
			Name:      "recomputations_total",
			Help:      "Filtered views computed, by endpoint.",
		}, []string{"endpoint"}),
		recomputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bookdash",
			Name:      "recomputation_duration_seconds",
			Help:      "Time spent filtering and aggregating one view.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		animation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookdash",
			Name:      "animation_fetches_total",
			Help:      "Decorative animation fetches, by result.",
		}, []string{"result"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookdash",
			Name:      "http_requests_total",
			Help:      "HTTP requests, by route and status code.",
		}, []string{"route", "code"}),
		records: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "bookdash",
			Name:      "dataset_records",
			Help:      "Records in the current dataset.",
		}, records),
	}
	m.registry.MustRegister(
		m.recomputes, m.recomputeDur, m.animation, m.requests, m.records,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) observeAnimation(result string) {
	m.animation.WithLabelValues(result).Inc()
}
