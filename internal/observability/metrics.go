package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion pipeline and scheduler.
type Metrics struct {
	RecordsFetched    *prometheus.CounterVec // labels: source
	IncidentsImported *prometheus.CounterVec // labels: source
	RecordsDropped    *prometheus.CounterVec // labels: source, reason={filtered,category,region,mapping,dedup_error}
	DuplicatesSkipped *prometheus.CounterVec // labels: source
	CommitFailures    *prometheus.CounterVec // labels: source
	ImportDuration    *prometheus.HistogramVec

	SchedulerRunning prometheus.Gauge
	JobRuns          *prometheus.CounterVec // labels: job, outcome={ok,panic,skipped}
}

// NewMetrics creates and registers all metrics with the default Prometheus
// registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RecordsFetched,
		m.IncidentsImported,
		m.RecordsDropped,
		m.DuplicatesSkipped,
		m.CommitFailures,
		m.ImportDuration,
		m.SchedulerRunning,
		m.JobRuns,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disaster_ingest",
			Name:      "records_fetched_total",
			Help:      "Raw records returned by feed adapters.",
		}, []string{"source"}),
		IncidentsImported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disaster_ingest",
			Name:      "incidents_imported_total",
			Help:      "Incidents durably persisted.",
		}, []string{"source"}),
		RecordsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disaster_ingest",
			Name:      "records_dropped_total",
			Help:      "Raw records dropped before persistence, by reason.",
		}, []string{"source", "reason"}),
		DuplicatesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disaster_ingest",
			Name:      "duplicates_skipped_total",
			Help:      "Records skipped by the dedup check.",
		}, []string{"source"}),
		CommitFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disaster_ingest",
			Name:      "commit_failures_total",
			Help:      "Batch commits that failed and were discarded.",
		}, []string{"source"}),
		ImportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "disaster_ingest",
			Name:      "import_duration_seconds",
			Help:      "Duration of one fetch-to-commit pipeline run.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"source"}),
		SchedulerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "disaster_ingest",
			Name:      "scheduler_running",
			Help:      "1 when the scheduler loop is active, 0 when stopped.",
		}),
		JobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disaster_ingest",
			Name:      "job_runs_total",
			Help:      "Scheduled job executions by outcome.",
		}, []string{"job", "outcome"}),
	}
}
