package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for SDK distribution.
type Metrics struct {
	Downloads         *prometheus.CounterVec
	VersionsPublished *prometheus.CounterVec
	AnalyticsCache    *prometheus.CounterVec
	AnalyticsLatency  prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		Downloads: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "paam_sdk_downloads_total",
			Help: "Total number of SDK downloads recorded, labeled by platform",
		}, []string{"platform"}),
		VersionsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "paam_sdk_versions_published_total",
			Help: "Total number of SDK versions published, labeled by platform",
		}, []string{"platform"}),
		AnalyticsCache: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "paam_sdk_analytics_cache_total",
			Help: "Analytics cache lookups, labeled by result (hit, miss, error)",
		}, []string{"result"}),
		AnalyticsLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "paam_sdk_analytics_compute_seconds",
			Help:    "Time spent computing download analytics on a cache miss",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

func (m *Metrics) IncrementDownloads(platform string) {
	m.Downloads.WithLabelValues(platform).Inc()
}

func (m *Metrics) IncrementVersionsPublished(platform string) {
	m.VersionsPublished.WithLabelValues(platform).Inc()
}

func (m *Metrics) RecordCacheResult(result string) {
	m.AnalyticsCache.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveAnalyticsLatency(seconds float64) {
	m.AnalyticsLatency.Observe(seconds)
}
