package observability

import (
	"time"

	"github.com/granaflow/grana-assistant-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the assistant.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	handlerDuration *prometheus.HistogramVec
	intentsTotal    *prometheus.CounterVec
	handlerErrors   *prometheus.CounterVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	repliesTotal    *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		handlerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "assistant_handler_duration_seconds",
				Help:    "Duration of intent handlers by action.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"action"},
		),
		intentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assistant_intents_total",
				Help: "Total classified intents by action.",
			},
			[]string{"action"},
		),
		handlerErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assistant_handler_errors_total",
				Help: "Total handler failures by action.",
			},
			[]string{"action"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assistant_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assistant_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assistant_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		repliesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assistant_replies_total",
				Help: "Total replies produced, by outcome.",
			},
			[]string{"status"},
		),
	}
}

// RecordHandlerDuration records how long one intent handler took.
func (m *Metrics) RecordHandlerDuration(action string, d time.Duration) {
	m.handlerDuration.WithLabelValues(action).Observe(d.Seconds())
}

// RecordIntent counts one classified intent.
func (m *Metrics) RecordIntent(action string) {
	m.intentsTotal.WithLabelValues(action).Inc()
}

// IncrHandlerError increments the handler failure counter.
func (m *Metrics) IncrHandlerError(action string) {
	m.handlerErrors.WithLabelValues(action).Inc()
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrReply increments the reply counter with a status label.
func (m *Metrics) IncrReply(status string) {
	m.repliesTotal.WithLabelValues(status).Inc()
}

// GetAssistantSnapshot returns a snapshot of assistant metrics suitable
// for the GET /v1/metrics/assistant endpoint.
func (m *Metrics) GetAssistantSnapshot() *domain.AssistantMetrics {
	// Prometheus counters expose cumulative values.
	totalReplies := getCounterValue(m.repliesTotal, "success") +
		getCounterValue(m.repliesTotal, "error")
	errorCount := getCounterValue(m.repliesTotal, "error")
	cacheHits := getCounterValue(m.cacheHits, "accounts")
	cacheMisses := getCounterValue(m.cacheMisses, "accounts")

	errorRate := float64(0)
	cacheHitRate := float64(0)
	if totalReplies > 0 {
		errorRate = errorCount / totalReplies
	}
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = cacheHits / (cacheHits + cacheMisses)
	}

	return &domain.AssistantMetrics{
		TotalReplies: int64(totalReplies),
		ErrorRate:    errorRate,
		CacheHitRate: cacheHitRate,
		Period:       "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
