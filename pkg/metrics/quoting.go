package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// QuotingMetrics records counters for the quote request workflow.
type QuotingMetrics struct {
	submissions      *prometheus.CounterVec
	submissionTime   *prometheus.HistogramVec
	notifyFailures   *prometheus.CounterVec
	cartDegradations prometheus.Counter
}

// NewQuotingMetrics registers the quoting metrics on the provided registerer.
// A nil registerer yields a no-op collector, useful in tests.
func NewQuotingMetrics(reg prometheus.Registerer) *QuotingMetrics {
	if reg == nil {
		return &QuotingMetrics{}
	}
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_submissions_total",
		Help: "Quote request submissions by source and outcome.",
	}, []string{"source", "outcome"})
	submissionTime := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quote_submission_duration_seconds",
		Help:    "Duration of quote submission handling in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
	notifyFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_failures_total",
		Help: "Notification dispatches that did not complete.",
	}, []string{"kind"})
	cartDegradations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_snapshot_degradations_total",
		Help: "Cart snapshot writes abandoned after storage quota pressure.",
	})
	reg.MustRegister(submissions, submissionTime, notifyFailures, cartDegradations)
	return &QuotingMetrics{
		submissions:      submissions,
		submissionTime:   submissionTime,
		notifyFailures:   notifyFailures,
		cartDegradations: cartDegradations,
	}
}

// IncSubmission counts one quote submission for the given source and outcome.
func (m *QuotingMetrics) IncSubmission(source, outcome string) {
	if m == nil || m.submissions == nil {
		return
	}
	m.submissions.WithLabelValues(normalizeLabel(source), normalizeLabel(outcome)).Inc()
}

// ObserveSubmission records how long a submission took.
func (m *QuotingMetrics) ObserveSubmission(source string, duration time.Duration) {
	if m == nil || m.submissionTime == nil {
		return
	}
	m.submissionTime.WithLabelValues(normalizeLabel(source)).Observe(duration.Seconds())
}

// IncNotifyFailure counts one failed notification dispatch of the given kind.
func (m *QuotingMetrics) IncNotifyFailure(kind string) {
	if m == nil || m.notifyFailures == nil {
		return
	}
	m.notifyFailures.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncCartDegradation counts one cart snapshot abandoned under quota pressure.
func (m *QuotingMetrics) IncCartDegradation() {
	if m == nil || m.cartDegradations == nil {
		return
	}
	m.cartDegradations.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
