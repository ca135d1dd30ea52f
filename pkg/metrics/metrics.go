package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all application metrics
type Metrics struct {
	// Timeline mutations
	Confirmations         *prometheus.CounterVec
	Cancellations         *prometheus.CounterVec
	StaffAssignments      *prometheus.CounterVec
	ConfirmationLatency   prometheus.Histogram
	SourceResolveFailures prometheus.Counter
	NoteSaves             *prometheus.CounterVec

	// Outbox related metrics
	OutboxEventsProcessed   prometheus.Counter
	OutboxEventsFailed      prometheus.Counter
	OutboxProcessingLatency prometheus.Histogram
	OutboxRetries           *prometheus.CounterVec

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
}

// New creates the application metrics and registers them with reg.
// A nil reg leaves them unregistered, which is what tests want.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Confirmations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hold_confirmations_total",
			Help:      "Hold confirmations by outcome",
		}, []string{"outcome"}),
		Cancellations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cancellations_total",
			Help:      "Hold and appointment cancellations by entity and outcome",
		}, []string{"entity", "outcome"}),
		StaffAssignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "staff_assignment_writes_total",
			Help:      "Staff assignment persistence attempts by strategy and status",
		}, []string{"strategy", "status"}),
		ConfirmationLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "hold_confirmation_duration_seconds",
			Help:      "Time spent confirming a hold",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		SourceResolveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_resolve_failures_total",
			Help:      "Call lookups that failed while resolving provenance",
		}),
		NoteSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clinical_note_saves_total",
			Help:      "Clinical note saves by mode and status",
		}, []string{"mode", "status"}),

		OutboxEventsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_processed_total",
			Help:      "Total number of successfully processed outbox events",
		}),
		OutboxEventsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_failed_total",
			Help:      "Total number of failed outbox events",
		}),
		OutboxProcessingLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "outbox_processing_duration_seconds",
			Help:      "Time spent processing outbox events",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		OutboxRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_retry_attempts_total",
			Help:      "Total number of retry attempts for outbox events",
		}, []string{"event_type"}),

		DatabaseOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.Confirmations,
			m.Cancellations,
			m.StaffAssignments,
			m.ConfirmationLatency,
			m.SourceResolveFailures,
			m.NoteSaves,
			m.OutboxEventsProcessed,
			m.OutboxEventsFailed,
			m.OutboxProcessingLatency,
			m.OutboxRetries,
			m.DatabaseOperations,
		)
	}
	return m
}
