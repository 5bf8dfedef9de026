// ABOUTME: Prometheus metrics for the ingestion pipeline.
// ABOUTME: Defines counters and histograms and provides the /metrics HTTP handler.

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles every collector the pipeline reports to.
type Metrics struct {
	registry *prometheus.Registry

	IngestRuns         *prometheus.CounterVec
	IngestDuration     prometheus.Histogram
	ItemsSeen          prometheus.Counter
	DuplicatesSkipped  prometheus.Counter
	ItemsSkipped       prometheus.Counter
	RecordsCreated     prometheus.Counter
	GenerationFailures prometheus.Counter
	SourceErrors       prometheus.Counter

	StoredVulnerabilities *prometheus.GaugeVec
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		IngestRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vulntrack_ingest_runs_total",
				Help: "Number of ingestion runs by result",
			},
			[]string{"result"},
		),

		IngestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "vulntrack_ingest_duration_seconds",
				Help:    "Duration of ingestion runs",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
		),

		ItemsSeen: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "vulntrack_source_items_total",
				Help: "Number of source items returned by the vulnerability source",
			},
		),

		DuplicatesSkipped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "vulntrack_duplicates_skipped_total",
				Help: "Number of source items skipped because their CVE ID was already stored",
			},
		),

		ItemsSkipped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "vulntrack_items_skipped_total",
				Help: "Number of malformed source items skipped (e.g. missing descriptions)",
			},
		),

		RecordsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "vulntrack_records_created_total",
				Help: "Number of new vulnerability records persisted",
			},
		),

		GenerationFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "vulntrack_generation_failures_total",
				Help: "Number of narrative generation calls that degraded to a placeholder",
			},
		),

		SourceErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "vulntrack_source_errors_total",
				Help: "Number of failed vulnerability source queries",
			},
		),

		StoredVulnerabilities: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "vulntrack_stored_vulnerabilities",
				Help: "Number of vulnerability records stored per device",
			},
			[]string{"device"},
		),
	}

	m.registry.MustRegister(
		m.IngestRuns,
		m.IngestDuration,
		m.ItemsSeen,
		m.DuplicatesSkipped,
		m.ItemsSkipped,
		m.RecordsCreated,
		m.GenerationFailures,
		m.SourceErrors,
		m.StoredVulnerabilities,
	)

	return m
}

// Handler returns the HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
