// Package metrics defines the Prometheus collectors for the notification
// subsystem. Exposed on /metrics via promhttp.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Hub metrics
var (
	// HubConnectedClients tracks the current number of live subscriber handles.
	HubConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_connected_clients",
			Help: "Number of currently connected WebSocket subscribers",
		},
	)

	// HubSubscribersReaped counts subscribers removed by the heartbeat.
	HubSubscribersReaped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_subscribers_reaped_total",
			Help: "Subscribers removed by heartbeat liveness probing",
		},
	)

	// HubSendFailures counts per-subscriber delivery failures during broadcast.
	HubSendFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_send_failures_total",
			Help: "Failed deliveries to individual subscribers",
		},
	)

	// HubMessageSendDuration tracks WebSocket write latency in seconds.
	HubMessageSendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hub_message_send_duration_seconds",
			Help:    "WebSocket message write duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	// EventsBroadcastTotal counts broadcast events by kind.
	EventsBroadcastTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_broadcast_total",
			Help: "Order events broadcast to subscribers by kind",
		},
		[]string{"kind"},
	)

	// RelayMessagesTotal counts peer relay messages forwarded through the hub.
	RelayMessagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_messages_total",
			Help: "Peer relay messages forwarded to other subscribers",
		},
	)
)

// Pipeline metrics
var (
	// SnapshotWriteFailures counts snapshot writes that failed after retries.
	SnapshotWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "snapshot_write_failures_total",
			Help: "Order snapshot writes that failed after all retry attempts",
		},
	)

	// OrderMutationsTotal counts committed order mutations by operation.
	OrderMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_mutations_total",
			Help: "Committed order mutations by operation",
		},
		[]string{"operation"},
	)
)
