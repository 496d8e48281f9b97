package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Event store metrics
var (
	// EventsEmittedTotal counts successfully persisted events by type
	EventsEmittedTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_emitted_total",
			Help:      "Total number of events durably persisted",
		},
		[]string{"type"},
	)

	// EventWriteFailuresTotal counts durable-write failures by type
	EventWriteFailuresTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_write_failures_total",
			Help:      "Total number of event writer failures",
		},
		[]string{"type"},
	)

	// ListenerFailuresTotal counts listener handler failures by event type
	ListenerFailuresTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_listener_failures_total",
			Help:      "Total number of event listener failures (isolated, never fail the emit)",
		},
		[]string{"type"},
	)
)
