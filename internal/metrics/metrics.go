// Package metrics exposes the server's Prometheus collectors. Grounded on
// the client_golang usage surfaced across the retrieval pack's networking
// tools (runZeroInc-conniver, runZeroInc-sockstats) — counters/gauges
// registered against a private Registry and served over HTTP via
// promhttp.HandlerFor, rather than relying on the global DefaultRegisterer so
// a server can own its own metrics instance in tests.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds every metric the server records.
type Collector struct {
	registry *prometheus.Registry

	PacketsReceived  prometheus.Counter
	PacketsSent      prometheus.Counter
	PacketsRetransmitted prometheus.Counter
	PacketsDropped   prometheus.Counter
	ConnectionsActive prometheus.Gauge
	ConnectionsDropped prometheus.Counter
	TickDuration     prometheus.Histogram
	TickOverruns     prometheus.Counter
	CommandQueueDepth prometheus.Gauge
	SessionsJoined   prometheus.Counter
	SessionsLeft     prometheus.Counter
}

// New constructs a Collector with a private registry and registers every
// metric against it.
func New() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		PacketsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "riftforged", Subsystem: "transport", Name: "packets_received_total",
			Help: "Total UDP datagrams received.",
		}),
		PacketsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "riftforged", Subsystem: "transport", Name: "packets_sent_total",
			Help: "Total UDP datagrams sent, including retransmissions.",
		}),
		PacketsRetransmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "riftforged", Subsystem: "transport", Name: "packets_retransmitted_total",
			Help: "Total reliable packets retransmitted after RTO expiry.",
		}),
		PacketsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "riftforged", Subsystem: "transport", Name: "packets_dropped_total",
			Help: "Total inbound datagrams discarded (malformed, version mismatch, or sent by an endpoint with no session).",
		}),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "riftforged", Subsystem: "transport", Name: "connections_active",
			Help: "Current number of tracked peer connections.",
		}),
		ConnectionsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "riftforged", Subsystem: "transport", Name: "connections_dropped_total",
			Help: "Total connections torn down by stale-peer reaping or max-retry exhaustion.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "riftforged", Subsystem: "sim", Name: "tick_duration_seconds",
			Help:    "Wall-clock duration of each simulation tick.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		TickOverruns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "riftforged", Subsystem: "sim", Name: "tick_overruns_total",
			Help: "Total ticks whose body took longer than the configured tick interval.",
		}),
		CommandQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "riftforged", Subsystem: "sim", Name: "command_queue_depth",
			Help: "Number of queued player commands awaiting the next tick.",
		}),
		SessionsJoined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "riftforged", Subsystem: "session", Name: "joins_total",
			Help: "Total successful joins.",
		}),
		SessionsLeft: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "riftforged", Subsystem: "session", Name: "leaves_total",
			Help: "Total sessions removed (disconnect or timeout).",
		}),
	}
	reg.MustRegister(
		c.PacketsReceived, c.PacketsSent, c.PacketsRetransmitted, c.PacketsDropped,
		c.ConnectionsActive, c.ConnectionsDropped, c.TickDuration, c.TickOverruns,
		c.CommandQueueDepth, c.SessionsJoined, c.SessionsLeft,
	)
	return c
}

// Handler returns the HTTP handler that serves this collector's metrics in
// the Prometheus text exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
