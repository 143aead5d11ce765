// Package metrics registers the Prometheus collectors for the live hub.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConnectedConnections tracks live transport connections.
	ConnectedConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "livehub",
		Name:      "connected_connections",
		Help:      "Number of live WebSocket connections.",
	})

	// BroadcastsSent counts outbound events by target kind.
	BroadcastsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "livehub",
		Name:      "broadcasts_sent_total",
		Help:      "Outbound events sent, by target kind.",
	}, []string{"target"})

	// OperationsHandled counts inbound operations by name and outcome.
	OperationsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "livehub",
		Name:      "operations_handled_total",
		Help:      "Inbound hub operations, by operation and outcome.",
	}, []string{"operation", "outcome"})

	// NotificationsEnqueued counts envelopes handed to the dispatch queue.
	NotificationsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "livehub",
		Name:      "notifications_enqueued_total",
		Help:      "Notification envelopes enqueued for push dispatch.",
	})

	// PushDispatches counts push delivery attempts by channel and outcome.
	PushDispatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "livehub",
		Name:      "push_dispatches_total",
		Help:      "Push delivery attempts, by channel and outcome.",
	}, []string{"channel", "outcome"})
)
