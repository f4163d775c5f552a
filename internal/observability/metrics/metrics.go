package metrics

import "github.com/prometheus/client_golang/prometheus"

// AppointmentMetrics exposes counters for the booking lifecycle.
type AppointmentMetrics struct {
	bookingsTotal    *prometheus.CounterVec
	conflictsTotal   prometheus.Counter
	transitionsTotal *prometheus.CounterVec
	waitingPatients  prometheus.Gauge
	notifyFailures   prometheus.Counter
	handoffChecks    *prometheus.CounterVec
}

func NewAppointmentMetrics(reg prometheus.Registerer) *AppointmentMetrics {
	m := &AppointmentMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "telecare",
			Subsystem: "appointments",
			Name:      "bookings_total",
			Help:      "Total booking attempts",
		}, []string{"status"}),
		conflictsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "telecare",
			Subsystem: "appointments",
			Name:      "booking_conflicts_total",
			Help:      "Bookings rejected for slot conflicts",
		}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "telecare",
			Subsystem: "appointments",
			Name:      "transitions_total",
			Help:      "Lifecycle transitions by target status",
		}, []string{"to"}),
		waitingPatients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "telecare",
			Subsystem: "waitingroom",
			Name:      "waiting_patients",
			Help:      "Patients currently in waiting rooms",
		}),
		notifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "telecare",
			Subsystem: "notify",
			Name:      "failures_total",
			Help:      "Best-effort notifications that failed to send",
		}),
		handoffChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "telecare",
			Subsystem: "session",
			Name:      "handoff_checks_total",
			Help:      "Session hand-off gate evaluations",
		}, []string{"allowed"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.conflictsTotal, m.transitionsTotal, m.waitingPatients, m.notifyFailures, m.handoffChecks)
	return m
}

func (m *AppointmentMetrics) ObserveBooking(status string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(status).Inc()
}

func (m *AppointmentMetrics) ObserveConflict() {
	if m == nil {
		return
	}
	m.conflictsTotal.Inc()
}

func (m *AppointmentMetrics) ObserveTransition(to string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(to).Inc()
}

func (m *AppointmentMetrics) WaitingJoined() {
	if m == nil {
		return
	}
	m.waitingPatients.Inc()
}

func (m *AppointmentMetrics) WaitingLeft() {
	if m == nil {
		return
	}
	m.waitingPatients.Dec()
}

func (m *AppointmentMetrics) ObserveNotifyFailure() {
	if m == nil {
		return
	}
	m.notifyFailures.Inc()
}

func (m *AppointmentMetrics) ObserveHandoffCheck(allowed bool) {
	if m == nil {
		return
	}
	label := "false"
	if allowed {
		label = "true"
	}
	m.handoffChecks.WithLabelValues(label).Inc()
}
