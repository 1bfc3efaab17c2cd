package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agendalink",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	flowSessions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "agendalink",
			Name:      "flow_sessions_started_total",
			Help:      "Public booking flow sessions started.",
		},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "agendalink",
			Name:      "bookings_created_total",
			Help:      "Bookings successfully created through the flow.",
		},
	)

	rollbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agendalink",
			Name:      "booking_rollbacks_total",
			Help:      "Best-effort booking cancellations after a failed PIX creation.",
		},
		[]string{"outcome"}, // ok, failed
	)

	pollTicks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "agendalink",
			Name:      "poll_ticks_total",
			Help:      "Payment status poll ticks executed.",
		},
	)

	pollErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "agendalink",
			Name:      "poll_errors_total",
			Help:      "Poll ticks that failed and were skipped.",
		},
	)

	flowOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agendalink",
			Name:      "flow_outcomes_total",
			Help:      "Terminal flow outcomes by state.",
		},
		[]string{"state"}, // approved, expired
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			flowSessions,
			bookingsCreated,
			rollbacks,
			pollTicks,
			pollErrors,
			flowOutcomes,
		)
	})
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncFlowSession() { flowSessions.Inc() }

func IncBookingCreated() { bookingsCreated.Inc() }

func IncRollback(outcome string) { rollbacks.WithLabelValues(outcome).Inc() }

func IncPollTick() { pollTicks.Inc() }

func IncPollError() { pollErrors.Inc() }

func IncFlowOutcome(state string) { flowOutcomes.WithLabelValues(state).Inc() }
