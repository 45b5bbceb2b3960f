package feed

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricFeedSlotsTotal      = "feed_slots_total"
	MetricFeedFallbacksTotal  = "feed_slot_fallbacks_total"
	MetricFeedShortfallsTotal = "feed_shortfalls_total"
	MetricFeedEmptyTotal      = "feed_empty_results_total"
	MetricFeedDurationSeconds = "feed_request_duration_seconds"
)

// Requester state label values.
const (
	StateAuthenticated = "authenticated"
	StateAnonymous     = "anonymous"
)

// Metrics contains Prometheus metrics for feed generation. The per-pool
// slot counter makes the realized pool distribution observable against the
// roll table's target shares. All operations are thread-safe; a nil
// *Metrics is a no-op so the service can run unmetered in tests.
type Metrics struct {
	slotsTotal      *prometheus.CounterVec
	fallbacksTotal  *prometheus.CounterVec
	shortfallsTotal prometheus.Counter
	emptyTotal      prometheus.Counter
	duration        *prometheus.HistogramVec
}

// NewMetrics creates and returns a new Metrics instance with all collectors
// initialized. The metrics are not registered; call Register to register
// them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		slotsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricFeedSlotsTotal,
				Help: "Total feed slots served by pool and requester state",
			},
			[]string{"pool", "requester_state"},
		),
		fallbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricFeedFallbacksTotal,
				Help: "Total slot fallbacks by the pool that was exhausted",
			},
			[]string{"pool"},
		),
		shortfallsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricFeedShortfallsTotal,
				Help: "Total feed responses shorter than the requested slot count",
			},
		),
		emptyTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricFeedEmptyTotal,
				Help: "Total empty feed responses served due to candidate store unavailability",
			},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricFeedDurationSeconds,
				Help:    "Histogram of feed generation duration in seconds by requester state",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
			[]string{"requester_state"},
		),
	}
}

// Register registers all collectors with the given registry.
func (m *Metrics) Register(registry *prometheus.Registry) error {
	collectors := []prometheus.Collector{
		m.slotsTotal,
		m.fallbacksTotal,
		m.shortfallsTotal,
		m.emptyTotal,
		m.duration,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func requesterState(authenticated bool) string {
	if authenticated {
		return StateAuthenticated
	}
	return StateAnonymous
}

// ObserveSlot records one served slot.
func (m *Metrics) ObserveSlot(pool Pool, authenticated bool) {
	if m == nil {
		return
	}
	m.slotsTotal.WithLabelValues(string(pool), requesterState(authenticated)).Inc()
}

// ObserveFallback records a pool exhaustion that triggered the cascade.
func (m *Metrics) ObserveFallback(exhausted Pool) {
	if m == nil {
		return
	}
	m.fallbacksTotal.WithLabelValues(string(exhausted)).Inc()
}

// ObserveShortfall records a response shorter than requested.
func (m *Metrics) ObserveShortfall() {
	if m == nil {
		return
	}
	m.shortfallsTotal.Inc()
}

// ObserveEmpty records an empty response served on candidate-store failure.
func (m *Metrics) ObserveEmpty() {
	if m == nil {
		return
	}
	m.emptyTotal.Inc()
}

// ObserveDuration records a completed feed generation.
func (m *Metrics) ObserveDuration(authenticated bool, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(requesterState(authenticated)).Observe(d.Seconds())
}
