package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WsConnections tracks open websocket connections (handles, not users).
	WsConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "heychat_ws_connections",
		Help: "Currently open websocket connections.",
	})

	// WsEvents counts inbound socket events by name and outcome
	// (ok, rejected, dropped, error).
	WsEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "heychat_ws_events_total",
		Help: "Inbound websocket events by outcome.",
	}, []string{"event", "outcome"})

	// MessagesRouted counts messages persisted and emitted by the router.
	MessagesRouted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heychat_messages_routed_total",
		Help: "Messages accepted by the router.",
	})

	// BacklogDelivered counts messages marked delivered by connect-time
	// backlog flushes.
	BacklogDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heychat_backlog_delivered_total",
		Help: "Messages marked delivered during backlog flushes.",
	})
)
