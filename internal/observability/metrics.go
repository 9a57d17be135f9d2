package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the collection
// and report-check runs.
type Metrics struct {
	ObservationsSaved     prometheus.Counter
	ObservationsDuplicate prometheus.Counter
	ObservationsSkipped   prometheus.Counter
	ObservationFailures   prometheus.Counter

	ReportsLocked       prometheus.Counter
	ReportsUnavailable  prometheus.Counter
	ReportParseFailures prometheus.Counter
	ReportFailures      prometheus.Counter

	CollectRunDuration prometheus.Histogram
	ReportRunDuration  prometheus.Histogram
}

// NewMetrics creates all metrics and registers them with reg. Tests pass a
// fresh prometheus.NewRegistry so parallel runs never collide.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ObservationsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stationpace",
			Name:      "observations_saved_total",
			Help:      "Observations newly persisted to the observation store.",
		}),
		ObservationsDuplicate: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stationpace",
			Name:      "observations_duplicate_total",
			Help:      "Observations skipped because the (station, timestamp) key was already stored.",
		}),
		ObservationsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stationpace",
			Name:      "observations_skipped_total",
			Help:      "Observations skipped because the sensor reported no temperature.",
		}),
		ObservationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stationpace",
			Name:      "observation_failures_total",
			Help:      "Per-station fetch or persistence failures during collection runs.",
		}),
		ReportsLocked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stationpace",
			Name:      "reports_locked_total",
			Help:      "Daily results locked in from parsed official reports.",
		}),
		ReportsUnavailable: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stationpace",
			Name:      "reports_unavailable_total",
			Help:      "Report checks where the office had not issued a report yet.",
		}),
		ReportParseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stationpace",
			Name:      "report_parse_failures_total",
			Help:      "Reports fetched but missing an extractable high or low.",
		}),
		ReportFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stationpace",
			Name:      "report_failures_total",
			Help:      "Per-station transport or persistence failures during report checks.",
		}),
		CollectRunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stationpace",
			Name:      "collect_run_duration_seconds",
			Help:      "Duration of a full collection batch over all stations.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		ReportRunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stationpace",
			Name:      "report_run_duration_seconds",
			Help:      "Duration of a full report-check batch over all stations.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}

	reg.MustRegister(
		m.ObservationsSaved,
		m.ObservationsDuplicate,
		m.ObservationsSkipped,
		m.ObservationFailures,
		m.ReportsLocked,
		m.ReportsUnavailable,
		m.ReportParseFailures,
		m.ReportFailures,
		m.CollectRunDuration,
		m.ReportRunDuration,
	)
	return m
}
