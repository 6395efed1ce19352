package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"github.com/jayPrakash10/expense-backend/internal/domain"
)

// Metrics holds all Prometheus metrics for the expense API.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	expensesCreated prometheus.Counter
	otpsIssued      prometheus.Counter
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
				Name:    "expense_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expense_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expense_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expense_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expense_requests_total",
				Help: "Total requests processed.",
			},
			[]string{"status"},
		),
		expensesCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "expense_records_created_total",
				Help: "Total expense records created.",
			},
		),
		otpsIssued: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "expense_otps_issued_total",
				Help: "Total one-time login codes issued.",
			},
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

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// IncrExpenseCreated increments the created-expense counter.
func (m *Metrics) IncrExpenseCreated() {
	m.expensesCreated.Inc()
}

// IncrOTPIssued increments the issued-OTP counter.
func (m *Metrics) IncrOTPIssued() {
	m.otpsIssued.Inc()
}

// Snapshot returns current counter values for the GET /v1/metrics/summary
// endpoint. Prometheus counters are cumulative, so these are all-time totals.
func (m *Metrics) Snapshot() *domain.MetricsSnapshot {
	success := getCounterValue(m.requestsTotal, "success")
	errs := getCounterValue(m.requestsTotal, "error")
	hits := getCounterValue(m.cacheHits, "settings")
	misses := getCounterValue(m.cacheMisses, "settings")

	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &domain.MetricsSnapshot{
		RequestsTotal:   success + errs,
		ErrorsTotal:     errs,
		CacheHits:       hits,
		CacheMisses:     misses,
		CacheHitRate:    hitRate,
		ExpensesCreated: getPlainCounterValue(m.expensesCreated),
		OTPsIssued:      getPlainCounterValue(m.otpsIssued),
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

func getPlainCounterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
