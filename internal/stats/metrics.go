package stats

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the Prometheus collectors exposed by the crawler and
// the read API. They live on a dedicated registry so tests can build
// isolated instances.
type Metrics struct {
	Registry        *prometheus.Registry
	PagesTotal      *prometheus.CounterVec
	PageDuration    prometheus.Histogram
	ItemsTotal      *prometheus.CounterVec
	FailuresTotal   *prometheus.CounterVec
	InFlightWorkers prometheus.Gauge
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_pages_total",
			Help: "Total pages fetched, by crawl kind.",
		},
		[]string{"kind"},
	)
	pageDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crawler_page_duration_seconds",
			Help:    "Wall time spent per fetched page.",
			Buckets: prometheus.DefBuckets,
		},
	)
	items := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_items_total",
			Help: "Total items persisted, by document kind.",
		},
		[]string{"kind"},
	)
	failures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_failures_total",
			Help: "Total per-item failures, by failure type.",
		},
		[]string{"failure_type"},
	)
	inFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "crawler_in_flight_workers",
			Help: "Workers currently holding a browser context.",
		},
	)

	registry.MustRegister(pages, pageDuration, items, failures, inFlight)

	return &Metrics{
		Registry:        registry,
		PagesTotal:      pages,
		PageDuration:    pageDuration,
		ItemsTotal:      items,
		FailuresTotal:   failures,
		InFlightWorkers: inFlight,
	}
}

func (m *Metrics) IncPage(kind string) {
	if m == nil {
		return
	}
	m.PagesTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObservePage(d time.Duration) {
	if m == nil {
		return
	}
	m.PageDuration.Observe(d.Seconds())
}

func (m *Metrics) AddItems(kind string, n int) {
	if m == nil {
		return
	}
	m.ItemsTotal.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) IncFailure(failureType string) {
	if m == nil {
		return
	}
	m.FailuresTotal.WithLabelValues(failureType).Inc()
}

func (m *Metrics) WorkerStarted() {
	if m == nil {
		return
	}
	m.InFlightWorkers.Inc()
}

func (m *Metrics) WorkerDone() {
	if m == nil {
		return
	}
	m.InFlightWorkers.Dec()
}
