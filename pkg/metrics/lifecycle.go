package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LifecycleMetrics records the booking and session lifecycle.
type LifecycleMetrics struct {
	bookingsCreated    prometheus.Counter
	bookingsConfirmed  prometheus.Counter
	bookingsCancelled  prometheus.Counter
	sessionsStarted    prometheus.Counter
	sessionsEnded      prometheus.Counter
	sessionDuration    prometheus.Histogram
	settlementFailures prometheus.Counter
	payments           *prometheus.CounterVec
}

// NewLifecycleMetrics registers the lifecycle metrics on the provided registerer.
func NewLifecycleMetrics(reg prometheus.Registerer) *LifecycleMetrics {
	if reg == nil {
		return &LifecycleMetrics{}
	}
	bookingsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bookings_created_total",
		Help: "Bookings created.",
	})
	bookingsConfirmed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bookings_confirmed_total",
		Help: "Bookings confirmed.",
	})
	bookingsCancelled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bookings_cancelled_total",
		Help: "Bookings cancelled.",
	})
	sessionsStarted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sessions_started_total",
		Help: "Parking sessions started.",
	})
	sessionsEnded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sessions_ended_total",
		Help: "Parking sessions ended.",
	})
	sessionDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "session_duration_minutes",
		Help:    "Duration of completed parking sessions in minutes.",
		Buckets: []float64{15, 30, 60, 120, 240, 480, 1440},
	})
	settlementFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "settlement_failures_total",
		Help: "Session settlements that failed.",
	})
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_total",
		Help: "Payments processed.",
	}, []string{"kind"})
	reg.MustRegister(bookingsCreated, bookingsConfirmed, bookingsCancelled,
		sessionsStarted, sessionsEnded, sessionDuration, settlementFailures, payments)
	return &LifecycleMetrics{
		bookingsCreated:    bookingsCreated,
		bookingsConfirmed:  bookingsConfirmed,
		bookingsCancelled:  bookingsCancelled,
		sessionsStarted:    sessionsStarted,
		sessionsEnded:      sessionsEnded,
		sessionDuration:    sessionDuration,
		settlementFailures: settlementFailures,
		payments:           payments,
	}
}

// IncBookingCreated counts a newly created booking.
func (m *LifecycleMetrics) IncBookingCreated() {
	if m == nil || m.bookingsCreated == nil {
		return
	}
	m.bookingsCreated.Inc()
}

// IncBookingConfirmed counts a confirmed booking.
func (m *LifecycleMetrics) IncBookingConfirmed() {
	if m == nil || m.bookingsConfirmed == nil {
		return
	}
	m.bookingsConfirmed.Inc()
}

// IncBookingCancelled counts a cancelled booking.
func (m *LifecycleMetrics) IncBookingCancelled() {
	if m == nil || m.bookingsCancelled == nil {
		return
	}
	m.bookingsCancelled.Inc()
}

// IncSessionStarted counts an opened parking session.
func (m *LifecycleMetrics) IncSessionStarted() {
	if m == nil || m.sessionsStarted == nil {
		return
	}
	m.sessionsStarted.Inc()
}

// ObserveSessionEnded counts a completed session and records its duration.
func (m *LifecycleMetrics) ObserveSessionEnded(duration time.Duration) {
	if m == nil || m.sessionsEnded == nil {
		return
	}
	m.sessionsEnded.Inc()
	m.sessionDuration.Observe(duration.Minutes())
}

// IncSettlementFailure counts a session whose settlement could not complete.
func (m *LifecycleMetrics) IncSettlementFailure() {
	if m == nil || m.settlementFailures == nil {
		return
	}
	m.settlementFailures.Inc()
}

// IncPayment counts a processed payment of the given kind.
func (m *LifecycleMetrics) IncPayment(kind string) {
	if m == nil || m.payments == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.payments.WithLabelValues(kind).Inc()
}
