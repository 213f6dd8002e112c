package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics exposes counters/histograms for the scheduling flows.
type SchedulingMetrics struct {
	bookingsTotal       *prometheus.CounterVec
	cancellationsTotal  *prometheus.CounterVec
	jobsEnqueuedTotal   *prometheus.CounterVec
	availabilityLatency prometheus.Histogram
}

// NewSchedulingMetrics registers the scheduling metrics on reg (default
// registerer when nil).
func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hourdesk",
			Subsystem: "scheduling",
			Name:      "bookings_total",
			Help:      "Booking attempts by outcome",
		}, []string{"status"}),
		cancellationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hourdesk",
			Subsystem: "scheduling",
			Name:      "cancellations_total",
			Help:      "Cancellation attempts by outcome",
		}, []string{"status"}),
		jobsEnqueuedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hourdesk",
			Subsystem: "scheduling",
			Name:      "jobs_enqueued_total",
			Help:      "Background jobs handed to the queue, by key and outcome",
		}, []string{"key", "status"}),
		availabilityLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hourdesk",
			Subsystem: "scheduling",
			Name:      "availability_latency_seconds",
			Help:      "Latency of availability grid computation",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.cancellationsTotal, m.jobsEnqueuedTotal, m.availabilityLatency)
	return m
}

// ObserveBooking records a booking attempt outcome.
func (m *SchedulingMetrics) ObserveBooking(status string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(status).Inc()
}

// ObserveCancellation records a cancellation attempt outcome.
func (m *SchedulingMetrics) ObserveCancellation(status string) {
	if m == nil {
		return
	}
	m.cancellationsTotal.WithLabelValues(status).Inc()
}

// ObserveJobEnqueued records a queue handoff outcome.
func (m *SchedulingMetrics) ObserveJobEnqueued(key, status string) {
	if m == nil {
		return
	}
	m.jobsEnqueuedTotal.WithLabelValues(key, status).Inc()
}

// ObserveAvailabilityLatency records one availability computation.
func (m *SchedulingMetrics) ObserveAvailabilityLatency(seconds float64) {
	if m == nil {
		return
	}
	m.availabilityLatency.Observe(seconds)
}
