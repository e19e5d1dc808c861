package client

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus collectors of a client.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "whistle").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for join duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures NewMetrics.
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

// WithBuckets sets the histogram buckets.
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
		Namespace: "whistle",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the client's Prometheus collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	messagesReceived prometheus.Counter
	patchesApplied   *prometheus.CounterVec
	patchErrors      *prometheus.CounterVec
	eventsSent       prometheus.Counter
	eventsDropped    prometheus.Counter
	reconnects       prometheus.Counter
	programs         *prometheus.GaugeVec
	joinDuration     prometheus.Histogram
}

// NewMetrics creates and registers the client collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		messagesReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "messages_received_total",
			Help:        "Total number of messages received from the server",
			ConstLabels: config.ConstLabels,
		}),

		patchesApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patches_applied_total",
			Help:        "Total number of patches applied, by op",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		patchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patch_errors_total",
			Help:        "Total number of patches skipped, by reason",
			ConstLabels: config.ConstLabels,
		}, []string{"reason"}),

		eventsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_sent_total",
			Help:        "Total number of events sent to the server",
			ConstLabels: config.ConstLabels,
		}),

		eventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_dropped_total",
			Help:        "Total number of events dropped while not joined or disconnected",
			ConstLabels: config.ConstLabels,
		}),

		reconnects: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "reconnects_total",
			Help:        "Total number of scheduled reconnect attempts",
			ConstLabels: config.ConstLabels,
		}),

		programs: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "programs",
			Help:        "Number of tracked programs, by state",
			ConstLabels: config.ConstLabels,
		}, []string{"state"}),

		joinDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "join_duration_seconds",
			Help:        "Time from sending a join to receiving its ack",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
	}
}

func (m *Metrics) messageReceived() {
	if m == nil {
		return
	}
	m.messagesReceived.Inc()
}

func (m *Metrics) patchApplied(op string) {
	if m == nil {
		return
	}
	m.patchesApplied.WithLabelValues(op).Inc()
}

func (m *Metrics) patchError(reason string) {
	if m == nil {
		return
	}
	m.patchErrors.WithLabelValues(reason).Inc()
}

func (m *Metrics) eventSent() {
	if m == nil {
		return
	}
	m.eventsSent.Inc()
}

func (m *Metrics) eventDropped() {
	if m == nil {
		return
	}
	m.eventsDropped.Inc()
}

func (m *Metrics) reconnect() {
	if m == nil {
		return
	}
	m.reconnects.Inc()
}

func (m *Metrics) programCreated() {
	if m == nil {
		return
	}
	m.programs.WithLabelValues(StateNone.String()).Inc()
}

// programState moves one program between state gauges. Left programs are
// no longer counted.
func (m *Metrics) programState(from, to State) {
	if m == nil {
		return
	}
	m.programs.WithLabelValues(from.String()).Dec()
	if to != StateLeft {
		m.programs.WithLabelValues(to.String()).Inc()
	}
}

func (m *Metrics) joinObserved(d time.Duration) {
	if m == nil {
		return
	}
	m.joinDuration.Observe(d.Seconds())
}
