package app

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors that report broadcaster activity.
type Metrics struct {
	framesSent        prometheus.Counter
	framesDropped     prometheus.Counter
	connectionsTotal  prometheus.Counter
	connectionsActive prometheus.Gauge
}

var (
	defaultMetricsOnce sync.Once
	sharedMetrics      *Metrics
)

// defaultMetrics returns the package-level metrics instance registered with
// the global Prometheus registry. The collectors are created only once to
// avoid duplicate registration panics when several broadcasters are
// instantiated (e.g. in unit tests).
func defaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		sharedMetrics = MustNewMetrics(prometheus.DefaultRegisterer)
	})
	return sharedMetrics
}

// MustNewMetrics constructs a Metrics instance using the provided registerer.
// The caller is responsible for supplying a fresh registry when isolated
// counters are required (for example in tests). Any registration error will
// panic, which mirrors the semantics of the promauto helpers.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	framesSent := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "skillstream",
		Subsystem: "broadcaster",
		Name:      "frames_sent_total",
		Help:      "Frames delivered to subscribed clients.",
	})
	framesDropped := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "skillstream",
		Subsystem: "broadcaster",
		Name:      "frames_dropped_total",
		Help:      "Frames dropped because a client buffer was full.",
	})
	connectionsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "skillstream",
		Subsystem: "broadcaster",
		Name:      "connections_total",
		Help:      "Client connections accepted since startup.",
	})
	connectionsActive := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "skillstream",
		Subsystem: "broadcaster",
		Name:      "connections_active",
		Help:      "Client connections currently subscribed.",
	})

	collectors := []prometheus.Collector{framesSent, framesDropped, connectionsTotal, connectionsActive}
	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
				// Reuse the existing collector when it matches.
				switch collector {
				case framesSent:
					framesSent = already.ExistingCollector.(prometheus.Counter)
				case framesDropped:
					framesDropped = already.ExistingCollector.(prometheus.Counter)
				case connectionsTotal:
					connectionsTotal = already.ExistingCollector.(prometheus.Counter)
				case connectionsActive:
					connectionsActive = already.ExistingCollector.(prometheus.Gauge)
				}
				continue
			}
			panic(err)
		}
	}

	return &Metrics{
		framesSent:        framesSent,
		framesDropped:     framesDropped,
		connectionsTotal:  connectionsTotal,
		connectionsActive: connectionsActive,
	}
}

// FrameSent records a frame delivered to a client buffer.
func (m *Metrics) FrameSent() {
	if m == nil || m.framesSent == nil {
		return
	}
	m.framesSent.Inc()
}

// FrameDropped records a frame dropped because a client buffer was full.
func (m *Metrics) FrameDropped() {
	if m == nil || m.framesDropped == nil {
		return
	}
	m.framesDropped.Inc()
}

// Connected records a new client subscription.
func (m *Metrics) Connected() {
	if m == nil || m.connectionsTotal == nil {
		return
	}
	m.connectionsTotal.Inc()
	m.connectionsActive.Inc()
}

// Disconnected records a client unsubscribing.
func (m *Metrics) Disconnected() {
	if m == nil || m.connectionsActive == nil {
		return
	}
	m.connectionsActive.Dec()
}
