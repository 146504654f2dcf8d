// Package prometheus exposes the interpreter's operational metrics: oracle
// call outcomes and latency, verification pipeline stage resolution, batch
// sizes, cache effectiveness, and chat guardrail activity.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Default histogram buckets. Oracle calls are network-bound LLM requests,
// so buckets skew toward seconds rather than milliseconds.
var (
	oracleDurationBuckets = []float64{.25, .5, 1, 2, 5, 10, 30, 60}
	batchSizeBuckets      = []float64{1, 2, 5, 10, 20, 50, 100}
)

// Metrics holds all registered collectors. Construct once per process via
// NewMetrics and inject where needed.
type Metrics struct {
	registry *prometheus.Registry

	OracleRequestsTotal  *prometheus.CounterVec
	OracleDuration       *prometheus.HistogramVec
	VerificationsTotal   *prometheus.CounterVec
	BatchSize            prometheus.Histogram
	BatchDuration        prometheus.Histogram
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	GuardrailTriggsTotal *prometheus.CounterVec
}

// NewMetrics registers all interpreter metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())

	m := &Metrics{registry: reg}

	m.OracleRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "k12check_oracle_requests_total",
		Help: "Oracle calls by oracle name and outcome (found|not_found|error).",
	}, []string{"oracle", "outcome"})

	m.OracleDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "k12check_oracle_duration_seconds",
		Help:    "Oracle call latency by oracle name.",
		Buckets: oracleDurationBuckets,
	}, []string{"oracle"})

	m.VerificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "k12check_verifications_total",
		Help: "Verification pipeline results by resolving source.",
	}, []string{"source"})

	m.BatchSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "k12check_batch_size_codes",
		Help:    "Number of codes per analyze batch.",
		Buckets: batchSizeBuckets,
	})

	m.BatchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "k12check_batch_duration_seconds",
		Help:    "Wall time of a full analyze batch.",
		Buckets: oracleDurationBuckets,
	})

	m.CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "k12check_verification_cache_hits_total",
		Help: "Verification results served from cache.",
	})

	m.CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "k12check_verification_cache_misses_total",
		Help: "Verification cache misses.",
	})

	m.GuardrailTriggsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "k12check_guardrail_triggers_total",
		Help: "Chat guardrail activations by kind (off_topic|pii_refused|pii_redacted|disclaimer_appended).",
	}, []string{"kind"})

	reg.MustRegister(
		m.OracleRequestsTotal,
		m.OracleDuration,
		m.VerificationsTotal,
		m.BatchSize,
		m.BatchDuration,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.GuardrailTriggsTotal,
	)

	return m
}

// ObserveOracle records one oracle call.
func (m *Metrics) ObserveOracle(oracle, outcome string, elapsed time.Duration) {
	m.OracleRequestsTotal.WithLabelValues(oracle, outcome).Inc()
	m.OracleDuration.WithLabelValues(oracle).Observe(elapsed.Seconds())
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
