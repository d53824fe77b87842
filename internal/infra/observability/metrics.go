package observability

import (
	"time"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Load outcome labels for the dashboard load counter.
const (
	LoadSuccess    = "success"
	LoadError      = "error"
	LoadSuperseded = "superseded"
)

// Metrics holds all Prometheus metrics for the BFA.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration   *prometheus.HistogramVec
	externalErrors    *prometheus.CounterVec
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
	dashboardLoads    *prometheus.CounterVec
	optimisticReverts prometheus.Counter
	notices           *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "budgetwise_request_duration_seconds",
				Help:    "Duration of orchestrator operations and backend calls.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetwise_external_errors_total",
				Help: "Total errors returned by the BudgetWise backend.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetwise_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetwise_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		dashboardLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetwise_dashboard_loads_total",
				Help: "Dashboard snapshot loads by outcome.",
			},
			[]string{"status"},
		),
		optimisticReverts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "budgetwise_optimistic_reverts_total",
				Help: "Optimistic category edits reverted after a failed backend update.",
			},
		),
		notices: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetwise_notices_total",
				Help: "User-visible notices emitted, by level.",
			},
			[]string{"level"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
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

// IncrLoad counts a dashboard load with one of the Load* outcome labels.
func (m *Metrics) IncrLoad(status string) {
	m.dashboardLoads.WithLabelValues(status).Inc()
}

// IncrOptimisticRevert counts a reverted optimistic edit.
func (m *Metrics) IncrOptimisticRevert() {
	m.optimisticReverts.Inc()
}

// IncrNotice counts an emitted notice.
func (m *Metrics) IncrNotice(level domain.NoticeLevel) {
	m.notices.WithLabelValues(string(level)).Inc()
}

// GetClientSnapshot returns the counters behind GET /v1/metrics/client.
func (m *Metrics) GetClientSnapshot() *domain.ClientMetrics {
	success := getCounterValue(m.dashboardLoads, LoadSuccess)
	failed := getCounterValue(m.dashboardLoads, LoadError)
	superseded := getCounterValue(m.dashboardLoads, LoadSuperseded)
	hits := getCounterValue(m.cacheHits, "snapshot")
	misses := getCounterValue(m.cacheMisses, "snapshot")

	total := success + failed + superseded
	errorRate := float64(0)
	cacheHitRate := float64(0)
	if total > 0 {
		errorRate = failed / total
	}
	if hits+misses > 0 {
		cacheHitRate = hits / (hits + misses)
	}

	return &domain.ClientMetrics{
		TotalLoads:        int64(total),
		FailedLoads:       int64(failed),
		SupersededLoads:   int64(superseded),
		OptimisticReverts: int64(readCounter(m.optimisticReverts)),
		CacheHitRate:      cacheHitRate,
		ErrorRate:         errorRate,
		Period:            "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	return readCounter(cv.WithLabelValues(label))
}

func readCounter(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
