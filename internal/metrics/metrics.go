// Package metrics exposes relay counters through Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Drop reasons.
const (
	DropUnknownTarget = "unknown_target"
	DropMalformed     = "malformed"
	DropUnknownEvent  = "unknown_event"
	DropRateLimited   = "rate_limited"
	DropBackpressure  = "backpressure"
	DropAuthRequired  = "auth_required"
)

// Metrics is safe for concurrent use. A nil *Metrics records nothing.
type Metrics struct {
	events      *prometheus.CounterVec
	deliveries  *prometheus.CounterVec
	drops       *prometheus.CounterVec
	connections *prometheus.GaugeVec
	rooms       *prometheus.GaugeVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coedit",
			Name:      "events_total",
			Help:      "Inbound relay events by mode and type.",
		}, []string{"mode", "event"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coedit",
			Name:      "deliveries_total",
			Help:      "Outbound frames queued to connections.",
		}, []string{"mode", "event"}),
		drops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coedit",
			Name:      "drops_total",
			Help:      "Inbound events or outbound frames that were discarded.",
		}, []string{"mode", "reason"}),
		connections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "coedit",
			Name:      "connections",
			Help:      "Live connections per relay mode.",
		}, []string{"mode"}),
		rooms: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "coedit",
			Name:      "rooms",
			Help:      "Non-empty rooms per relay mode.",
		}, []string{"mode"}),
	}
	if reg != nil {
		reg.MustRegister(m.events, m.deliveries, m.drops, m.connections, m.rooms)
	}
	return m
}

func (m *Metrics) Event(mode, event string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(mode, event).Inc()
}

func (m *Metrics) Delivered(mode, event string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.deliveries.WithLabelValues(mode, event).Add(float64(n))
}

func (m *Metrics) Drop(mode, reason string) {
	if m == nil {
		return
	}
	m.drops.WithLabelValues(mode, reason).Inc()
}

func (m *Metrics) SetConnections(mode string, n int) {
	if m == nil {
		return
	}
	m.connections.WithLabelValues(mode).Set(float64(n))
}

func (m *Metrics) SetRooms(mode string, n int) {
	if m == nil {
		return
	}
	m.rooms.WithLabelValues(mode).Set(float64(n))
}
