package importer

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the import pipeline.
type Metrics struct {
	Registry      *prometheus.Registry
	PagesFetched  prometheus.Counter
	ItemsTotal    *prometheus.CounterVec
	DetailFetches prometheus.Counter
	RunsTotal     *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "import_pages_fetched_total",
			Help: "Listing pages fetched from the remote API.",
		},
	)
	items := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_items_total",
			Help: "Listing items processed, by outcome.",
		},
		[]string{"outcome"},
	)
	details := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "import_detail_fetches_total",
			Help: "Detail lookups performed for classified items.",
		},
	)
	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_runs_total",
			Help: "Import runs finished, by status.",
		},
		[]string{"status"},
	)

	registry.MustRegister(pages, items, details, runs)

	return &Metrics{
		Registry:      registry,
		PagesFetched:  pages,
		ItemsTotal:    items,
		DetailFetches: details,
		RunsTotal:     runs,
	}
}

func (m *Metrics) IncPage() {
	if m == nil {
		return
	}
	m.PagesFetched.Inc()
}

func (m *Metrics) IncItem(outcome string) {
	if m == nil {
		return
	}
	m.ItemsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncDetailFetch() {
	if m == nil {
		return
	}
	m.DetailFetches.Inc()
}

func (m *Metrics) IncRun(status string) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status).Inc()
}
