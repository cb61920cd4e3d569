// Package metrics defines the Prometheus instruments for scans.
//
// All methods are safe on a nil *Metrics, which records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "horizon"

type Metrics struct {
	// SearchesTotal counts finished searches.
	// Labels: mode (live, simulation), state (success, fallback_success, failed)
	SearchesTotal *prometheus.CounterVec

	// SearchDurationSeconds measures a search from submission to result.
	// Labels: mode
	SearchDurationSeconds *prometheus.HistogramVec

	// LiveQueryErrorsTotal counts live query failures that triggered a fallback.
	// Labels: kind (auth, rate_limit, request, malformed)
	LiveQueryErrorsTotal *prometheus.CounterVec

	// ArchiveFailuresTotal counts archive operations that returned a sentinel
	// because of a database error. Labels: op
	ArchiveFailuresTotal *prometheus.CounterVec

	// SignalsReturned observes the size of each returned signal set.
	SignalsReturned prometheus.Histogram
}

// New registers the instruments with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SearchesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "total",
			Help:      "Total number of searches by mode and final state",
		}, []string{"mode", "state"}),
		SearchDurationSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Search duration by mode",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
		}, []string{"mode"}),
		LiveQueryErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "live_query",
			Name:      "errors_total",
			Help:      "Live query failures by kind",
		}, []string{"kind"}),
		ArchiveFailuresTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "failures_total",
			Help:      "Archive operations that failed, by operation",
		}, []string{"op"}),
		SignalsReturned: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "signals_returned",
			Help:      "Number of signals returned per search",
			Buckets:   prometheus.LinearBuckets(0, 5, 7),
		}),
	}
}

func (m *Metrics) ObserveSearch(mode, state string, elapsed time.Duration, signals int) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(mode, state).Inc()
	m.SearchDurationSeconds.WithLabelValues(mode).Observe(elapsed.Seconds())
	if signals > 0 {
		m.SignalsReturned.Observe(float64(signals))
	}
}

func (m *Metrics) LiveQueryError(kind string) {
	if m == nil {
		return
	}
	m.LiveQueryErrorsTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) ArchiveFailure(op string) {
	if m == nil {
		return
	}
	m.ArchiveFailuresTotal.WithLabelValues(op).Inc()
}
