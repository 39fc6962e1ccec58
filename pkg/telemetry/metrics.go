package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"go.minekube.com/mcwire/pkg/proto"
)

const namespace = "mcwire"

// Metrics are the prometheus collectors of mcwire.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ConnectionsTotal  *prometheus.CounterVec
	ActiveConnections prometheus.Gauge
	HandshakesTotal   *prometheus.CounterVec
	PacketsTotal      *prometheus.CounterVec
	BytesTotal        *prometheus.CounterVec
	PingsTotal        *prometheus.CounterVec
	PingDuration      prometheus.Histogram
}

// NewMetrics creates and registers the collectors with reg.
// Use prometheus.DefaultRegisterer for the process wide registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ConnectionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Total number of accepted connections by result",
		}, []string{"result"}), // accepted, rejected, timeout, error
		ActiveConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Number of currently open connections",
		}),
		HandshakesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handshakes_total",
			Help:      "Total number of received handshakes by requested state",
		}, []string{"next_state"}),
		PacketsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_total",
			Help:      "Total number of packets by state and direction",
		}, []string{"state", "direction"}),
		BytesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_total",
			Help:      "Total number of transport bytes by direction",
		}, []string{"direction"}), // read, written
		PingsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pings_total",
			Help:      "Total number of outgoing status pings by result",
		}, []string{"result"}), // success, error
		PingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ping_duration_seconds",
			Help:      "Duration of outgoing status pings in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) Connection(result string) {
	if m == nil {
		return
	}
	m.ConnectionsTotal.WithLabelValues(result).Inc()
}

// Open tracks an open connection and returns the func to call on close.
func (m *Metrics) Open() (closed func()) {
	if m == nil {
		return func() {}
	}
	m.ActiveConnections.Inc()
	return m.ActiveConnections.Dec
}

func (m *Metrics) Handshake(next proto.State) {
	if m == nil {
		return
	}
	m.HandshakesTotal.WithLabelValues(next.String()).Inc()
}

func (m *Metrics) Packet(s proto.State, d proto.Direction) {
	if m == nil {
		return
	}
	m.PacketsTotal.WithLabelValues(s.String(), d.String()).Inc()
}

func (m *Metrics) Ping(start time.Time, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.PingsTotal.WithLabelValues(result).Inc()
	m.PingDuration.Observe(time.Since(start).Seconds())
}
