package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BookingMetrics exposes counters/histograms for the booking wizard and the
// document store. It satisfies booking.Observer and store.RequestObserver.
type BookingMetrics struct {
	sessionsStarted *prometheus.CounterVec
	stepTransitions *prometheus.CounterVec
	submissions     *prometheus.CounterVec
	submitLatency   prometheus.Histogram
	storeRequests   *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		sessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: "wizard",
			Name:      "sessions_started_total",
			Help:      "Wizard sessions started",
		}, []string{"flow"}),
		stepTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: "wizard",
			Name:      "step_transitions_total",
			Help:      "Wizard step changes",
		}, []string{"flow", "from", "to"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: "wizard",
			Name:      "submissions_total",
			Help:      "Finished booking submissions by outcome",
		}, []string{"outcome"}),
		submitLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Subsystem: "wizard",
			Name:      "submit_latency_seconds",
			Help:      "Latency of booking submissions",
			Buckets:   []float64{0.25, 0.5, 1, 1.5, 2, 3, 5, 10},
		}),
		storeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: "store",
			Name:      "requests_total",
			Help:      "Document store requests",
		}, []string{"collection", "op", "outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.sessionsStarted, m.stepTransitions, m.submissions, m.submitLatency, m.storeRequests)
	return m
}

func (m *BookingMetrics) SessionStarted(flow string) {
	if m == nil {
		return
	}
	m.sessionsStarted.WithLabelValues(flow).Inc()
}

func (m *BookingMetrics) StepTransition(flow string, from, to int) {
	if m == nil {
		return
	}
	m.stepTransitions.WithLabelValues(flow, strconv.Itoa(from), strconv.Itoa(to)).Inc()
}

func (m *BookingMetrics) SubmissionFinished(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
	m.submitLatency.Observe(elapsed.Seconds())
}

func (m *BookingMetrics) ObserveStoreRequest(collection, op, outcome string) {
	if m == nil {
		return
	}
	m.storeRequests.WithLabelValues(collection, op, outcome).Inc()
}
