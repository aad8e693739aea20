package fiber

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures reconciler metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "vfiber").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for commit duration.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures reconciler metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the commit duration buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "vfiber",
		Buckets:   []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05, .1},
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors of one or more reconcilers.
// A nil *Metrics records nothing.
type Metrics struct {
	units          prometheus.Counter
	slices         *prometheus.CounterVec
	commits        prometheus.Counter
	tags           *prometheus.CounterVec
	hostOps        prometheus.Counter
	effects        *prometheus.CounterVec
	commitDuration prometheus.Histogram
	liveFibers     prometheus.Gauge
}

// NewMetrics registers the reconciler collectors.
//
// Metrics collected:
//   - vfiber_units_total: fibers processed
//   - vfiber_slices_total: slices by result (yielded, committed, error)
//   - vfiber_commits_total: committed generations
//   - vfiber_effect_tags_total: diff outcomes by tag
//   - vfiber_host_ops_total: host adapter calls made during commit
//   - vfiber_effects_total: effect and cleanup invocations by phase
//   - vfiber_commit_duration_seconds: commit latency
//   - vfiber_live_fibers: fibers held in the arena
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		units: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "units_total",
			Help:        "Total number of units of work processed",
			ConstLabels: config.ConstLabels,
		}),

		slices: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "slices_total",
			Help:        "Total number of scheduler slices by result",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		commits: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "commits_total",
			Help:        "Total number of committed generations",
			ConstLabels: config.ConstLabels,
		}),

		tags: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_tags_total",
			Help:        "Total number of diff outcomes by effect tag",
			ConstLabels: config.ConstLabels,
		}, []string{"tag"}),

		hostOps: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "host_ops_total",
			Help:        "Total number of host adapter operations issued by commits",
			ConstLabels: config.ConstLabels,
		}),

		effects: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effects_total",
			Help:        "Total number of effect and cleanup invocations",
			ConstLabels: config.ConstLabels,
		}, []string{"phase"}),

		commitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "commit_duration_seconds",
			Help:        "Commit duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		liveFibers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "live_fibers",
			Help:        "Number of fibers held by the reconciler arena",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (m *Metrics) recordUnits(n int) {
	if m == nil || n == 0 {
		return
	}
	m.units.Add(float64(n))
}

func (m *Metrics) recordSlice(result string) {
	if m == nil {
		return
	}
	m.slices.WithLabelValues(result).Inc()
}

func (m *Metrics) recordCommit(s CommitStats) {
	if m == nil {
		return
	}
	m.commits.Inc()
	m.tags.WithLabelValues(Placement.String()).Add(float64(s.Placements))
	m.tags.WithLabelValues(Update.String()).Add(float64(s.Updates))
	m.tags.WithLabelValues(Deletion.String()).Add(float64(s.Deletions))
	m.hostOps.Add(float64(s.HostOps))
	m.commitDuration.Observe(s.Duration.Seconds())
}

func (m *Metrics) recordEffect(phase string) {
	if m == nil {
		return
	}
	m.effects.WithLabelValues(phase).Inc()
}

func (m *Metrics) setLive(n int) {
	if m == nil {
		return
	}
	m.liveFibers.Set(float64(n))
}
