package providers

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"ecometrics/internal/storage"
	"ecometrics/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	IncMetricsIngested()
	IncIngestConflicts()
	IncCertificatesIssued(badge string)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	metricsIngested     prometheus.Counter
	ingestConflicts     prometheus.Counter
	certificatesIssued  *prometheus.CounterVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncMetricsIngested() {
	m.metricsIngested.Inc()
}

func (m *MetricsProvider) IncIngestConflicts() {
	m.ingestConflicts.Inc()
}

func (m *MetricsProvider) IncCertificatesIssued(badge string) {
	m.certificatesIssued.WithLabelValues(badge).Inc()
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config, store storage.Store) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ecometrics_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ecometrics_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ecometrics_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ecometrics_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ecometrics_persistence_duration_seconds",
			Help:    "Duration of snapshot persistence in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		metricsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ecometrics_metrics_ingested_total",
			Help: "Total number of daily metrics ingested",
		}),

		ingestConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ecometrics_ingest_conflicts_total",
			Help: "Total number of ingests rejected because the day already had a metric",
		}),

		certificatesIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ecometrics_certificates_issued_total",
			Help: "Total number of certificates issued by badge level",
		}, []string{"badge"}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "ecometrics_applications_total",
		Help: "Number of registered applications",
	}, func() float64 {
		count, err := store.CountApplications(context.Background())
		if err != nil {
			return 0
		}
		return float64(count)
	})

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) IncMetricsIngested()                              {}
func (n *noopMetrics) IncIngestConflicts()                              {}
func (n *noopMetrics) IncCertificatesIssued(_ string)                   {}
