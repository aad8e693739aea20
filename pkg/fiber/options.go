package fiber

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMinBudget is the remaining time below which a slice yields.
const DefaultMinBudget = time.Millisecond

// defaultTracerName names the tracer used when none is configured.
const defaultTracerName = "vfiber"

type options struct {
	logger         *slog.Logger
	metrics        *Metrics
	tracer         trace.Tracer
	minBudget      time.Duration
	hookOrderCheck bool
	flushLimit     int
}

// Option configures a Reconciler.
type Option func(*options)

func defaultOptions() options {
	return options{
		logger:    slog.Default(),
		tracer:    otel.Tracer(defaultTracerName),
		minBudget: DefaultMinBudget,
	}
}

// WithLogger sets the logger. Generation lifecycle records are logged at
// debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records scheduler and commit metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithTracer sets the tracer for slice and commit spans.
// Default: the global provider's "vfiber" tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithMinBudget sets the remaining slice time below which RunSlice yields.
func WithMinBudget(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.minBudget = d
		}
	}
}

// WithHookOrderCheck makes a render fail when a component calls its hooks in
// a different order than in its previous render.
func WithHookOrderCheck(enabled bool) Option {
	return func(o *options) {
		o.hookOrderCheck = enabled
	}
}

// WithFlushLimit bounds the number of commits a single Flush may perform.
// Zero means unlimited.
func WithFlushLimit(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.flushLimit = n
		}
	}
}
