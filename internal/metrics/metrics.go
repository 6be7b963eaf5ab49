package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the signage client

var (
	// Connection lifecycle
	ConnectionState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "signboard_connection_state",
		Help: "Current connection state (0=discovering, 1=connecting, 2=open, 3=closed)",
	})

	ReconnectsScheduled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signboard_reconnects_scheduled_total",
		Help: "Reconnect attempts scheduled after a transport close",
	})

	DiscoveryRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signboard_discovery_requests_total",
		Help: "Address discovery requests by result",
	}, []string{"result"}) // result: ok|error

	// Protocol
	MessagesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signboard_messages_received_total",
		Help: "Inbound messages by type",
	}, []string{"type"})

	// Reliable send
	SendAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signboard_send_attempts_total",
		Help: "Send attempts by retry policy and outcome",
	}, []string{"policy", "outcome"}) // policy: callback|bounded, outcome: sent|congested|error

	SendExhausted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signboard_send_exhausted_total",
		Help: "Bounded sends dropped after reaching their attempt limit",
	})
)
