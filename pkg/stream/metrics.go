package stream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the stream server collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	subscribers prometheus.Gauge
	frames      prometheus.Counter
	bytes       prometheus.Counter
	dropped     prometheus.Counter
	events      *prometheus.CounterVec
}

// NewMetrics registers the stream collectors with reg under namespace.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		subscribers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "subscribers",
			Help:      "Number of connected websocket subscribers",
		}),
		frames: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "frames_total",
			Help:      "Total number of frames broadcast",
		}),
		bytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "bytes_total",
			Help:      "Total number of frame bytes broadcast",
		}),
		dropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "dropped_subscribers_total",
			Help:      "Total number of subscribers dropped for falling behind",
		}),
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "events_total",
			Help:      "Total number of posted events by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) setSubscribers(n int) {
	if m == nil {
		return
	}
	m.subscribers.Set(float64(n))
}

func (m *Metrics) recordBroadcast(size, dropped int) {
	if m == nil {
		return
	}
	m.frames.Inc()
	m.bytes.Add(float64(size))
	m.dropped.Add(float64(dropped))
}

func (m *Metrics) recordEvent(result string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(result).Inc()
}
