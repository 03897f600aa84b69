package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	EventsConsumedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifyhub_events_consumed_total",
			Help: "Total number of consumed events by type and outcome.",
		},
		[]string{"event_type", "outcome"}, // committed, duplicate, failed
	)

	DuplicatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifyhub_duplicates_total",
			Help: "Total number of duplicate deliveries dropped by the ledger.",
		},
		[]string{"event_type"},
	)

	HandlerFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifyhub_handler_failures_total",
			Help: "Total number of handler failures by reason.",
		},
		[]string{"event_type", "reason"}, // malformed_payload, unknown_type, channel
	)

	StoreErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifyhub_store_errors_total",
			Help: "Total number of ledger failures by operation.",
		},
		[]string{"op"}, // reserve, exists
	)

	DispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notifyhub_dispatch_duration_seconds",
			Help:    "Time spent dispatching one event.",
			Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"event_type"},
	)

	TopicDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "notifyhub_nsq_topic_depth",
			Help: "Current NSQ topic/channel depth as seen by the consumer.",
		},
		[]string{"topic", "channel"},
	)
)

func MustRegister(reg *prometheus.Registry) {
	reg.MustRegister(
		EventsConsumedTotal,
		DuplicatesTotal,
		HandlerFailuresTotal,
		StoreErrorsTotal,
		DispatchDuration,
		TopicDepth,
	)
}

// RecordOutcome increments the consumed-events counter for one dispatch.
func RecordOutcome(eventType, outcome string, d time.Duration) {
	EventsConsumedTotal.WithLabelValues(eventType, outcome).Inc()
	DispatchDuration.WithLabelValues(eventType).Observe(d.Seconds())
}

// RecordDuplicate counts a delivery dropped as already reserved.
func RecordDuplicate(eventType string) {
	DuplicatesTotal.WithLabelValues(eventType).Inc()
}

// RecordHandlerFailure counts a terminal handler-side failure.
func RecordHandlerFailure(eventType, reason string) {
	HandlerFailuresTotal.WithLabelValues(eventType, reason).Inc()
}

// RecordStoreError counts a ledger failure for the given operation.
func RecordStoreError(op string) {
	StoreErrorsTotal.WithLabelValues(op).Inc()
}

// UpdateTopicDepth sets the observed backlog for a topic/channel pair.
func UpdateTopicDepth(topic, channel string, depth float64) {
	TopicDepth.WithLabelValues(topic, channel).Set(depth)
}
