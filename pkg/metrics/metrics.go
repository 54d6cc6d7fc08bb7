// Package metrics exports application runtime statistics to Prometheus.
//
// A Collector implements app.Observer, so it plugs straight into
// app.Builder.Observer. Live-tree mutations are counted by subscribing
// ObserveOps to a dom.Recorder.
//
// Metrics collected (default namespace "canopy"):
//   - canopy_messages_total: messages handled by update
//   - canopy_renders_total: render passes
//   - canopy_renders_skipped_total: update cycles that asked for no render
//   - canopy_commands_total{result}: finished commands by result
//   - canopy_commands_inflight: commands still running
//   - canopy_dom_ops_total{op}: live-tree mutations by kind
//   - canopy_panics_total{where}: recovered panics by phase
//   - canopy_render_duration_seconds: view plus reconcile time
//   - canopy_frame_delta_seconds: time between consecutive render frames
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vango-dev/canopy/pkg/app"
	"github.com/vango-dev/canopy/pkg/dom"
)

// Config configures a Collector.
type Config struct {
	// Namespace is the metrics namespace (default: "canopy").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures a Collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the render duration buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "canopy",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// frameBuckets cover 240 fps down to a stalled second.
var frameBuckets = []float64{0.004, 0.008, 0.016, 0.033, 0.05, 0.1, 0.25, 0.5, 1}

// Collector records runtime events as Prometheus metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	messages       prometheus.Counter
	renders        prometheus.Counter
	skipped        prometheus.Counter
	commands       *prometheus.CounterVec
	inflight       prometheus.Gauge
	domOps         *prometheus.CounterVec
	panics         *prometheus.CounterVec
	renderDuration prometheus.Histogram
	frameDelta     prometheus.Histogram
}

var _ app.Observer = (*Collector)(nil)

// New creates a Collector and registers its metrics. Registering two
// Collectors with the same namespace on one registry panics, as promauto
// does.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(config.Registry)

	gatherer := prometheus.DefaultGatherer
	if g, ok := config.Registry.(prometheus.Gatherer); ok {
		gatherer = g
	}

	return &Collector{
		gatherer: gatherer,

		messages: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "messages_total",
			Help:        "Total number of messages handled by update",
			ConstLabels: config.ConstLabels,
		}),

		renders: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of render passes",
			ConstLabels: config.ConstLabels,
		}),

		skipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_skipped_total",
			Help:        "Total number of update cycles that skipped rendering",
			ConstLabels: config.ConstLabels,
		}),

		commands: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "commands_total",
			Help:        "Total number of finished commands by result",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		inflight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "commands_inflight",
			Help:        "Number of commands still running",
			ConstLabels: config.ConstLabels,
		}),

		domOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dom_ops_total",
			Help:        "Total number of live-tree mutations by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		panics: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "panics_total",
			Help:        "Total number of recovered panics by phase",
			ConstLabels: config.ConstLabels,
		}, []string{"where"}),

		renderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Render pass duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		frameDelta: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frame_delta_seconds",
			Help:        "Time between consecutive render frames in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     frameBuckets,
		}),
	}
}

// MessageHandled implements app.Observer.
func (c *Collector) MessageHandled() {
	c.messages.Inc()
}

// RenderSkipped implements app.Observer.
func (c *Collector) RenderSkipped() {
	c.skipped.Inc()
}

// Rendered implements app.Observer.
func (c *Collector) Rendered(info app.RenderInfo, took time.Duration) {
	c.renders.Inc()
	c.renderDuration.Observe(took.Seconds())
	if info.Delta > 0 {
		c.frameDelta.Observe(info.Delta.Seconds())
	}
}

// CommandStarted implements app.Observer.
func (c *Collector) CommandStarted() {
	c.inflight.Inc()
}

// CommandFinished implements app.Observer.
func (c *Collector) CommandFinished(result app.CommandResult) {
	c.inflight.Dec()
	c.commands.WithLabelValues(string(result)).Inc()
}

// Panicked implements app.Observer.
func (c *Collector) Panicked(where string) {
	c.panics.WithLabelValues(where).Inc()
}

// ObserveOps counts a batch of live-tree mutations. Pass it to
// dom.Recorder.Subscribe.
func (c *Collector) ObserveOps(ops []dom.Op) {
	for _, op := range ops {
		c.domOps.WithLabelValues(op.Kind.String()).Inc()
	}
}

// Handler serves the metrics of the Collector's registry, or of the
// default gatherer when the registry cannot be gathered.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
