// Package metrics exposes the service's prometheus collectors. One Metrics
// value satisfies the recorder interfaces of the narrative client, the battle
// orchestrator, the social orchestrator and the websocket hub.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace prefixes every metric name
const DefaultNamespace = "rpg_narrator"

// Metrics holds the registered collectors
type Metrics struct {
	BackendCalls   *prometheus.CounterVec
	BackendLatency *prometheus.HistogramVec
	Battles        *prometheus.CounterVec
	ChatMessages   prometheus.Counter
	ChatClients    prometheus.Gauge
}

// New creates the collectors and registers them on reg. A nil reg uses the
// default registerer.
func New(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		BackendCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_calls_total",
			Help:      "Narrative backend calls by tier, operation and outcome",
		}, []string{"tier", "operation", "outcome"}),
		BackendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_call_seconds",
			Help:      "Narrative backend call latency",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"tier", "operation"}),
		Battles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "battle_transitions_total",
			Help:      "Battle record transitions by kind",
		}, []string{"kind"}),
		ChatMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_messages_total",
			Help:      "World chat messages posted",
		}),
		ChatClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chat_websocket_clients",
			Help:      "Connected world chat websocket clients",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.BackendCalls,
		m.BackendLatency,
		m.Battles,
		m.ChatMessages,
		m.ChatClients,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveBackendCall records one backend attempt
func (m *Metrics) ObserveBackendCall(tier, operation string, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.BackendCalls.WithLabelValues(tier, operation, outcome).Inc()
	m.BackendLatency.WithLabelValues(tier, operation).Observe(elapsed.Seconds())
}

// BattleTransition counts one stored battle transition
func (m *Metrics) BattleTransition(kind string) {
	m.Battles.WithLabelValues(kind).Inc()
}

// ChatPosted counts one world chat message
func (m *Metrics) ChatPosted() {
	m.ChatMessages.Inc()
}

// ClientConnected tracks a websocket client joining
func (m *Metrics) ClientConnected() {
	m.ChatClients.Inc()
}

// ClientDisconnected tracks a websocket client leaving
func (m *Metrics) ClientDisconnected() {
	m.ChatClients.Dec()
}
