// Package metrics exports the outbox relay's Prometheus series. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Failure stages.
const (
	StageFetch   = "fetch"
	StagePublish = "publish"
	StageMark    = "mark"
)

var latencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

type Metrics struct {
	pending     prometheus.Gauge
	published   prometheus.Counter
	failures    *prometheus.CounterVec
	publishTime prometheus.Histogram
	batchSize   prometheus.Histogram
	pollTime    prometheus.Histogram
	purged      prometheus.Counter
	circuitOpen prometheus.Gauge
}

// New registers on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

func NewWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		pending: f.NewGauge(prometheus.GaugeOpts{
			Name: "paam_outbox_pending",
			Help: "Outbox entries waiting to be published.",
		}),
		published: f.NewCounter(prometheus.CounterOpts{
			Name: "paam_outbox_published_total",
			Help: "Outbox entries published and marked.",
		}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "paam_outbox_failures_total",
			Help: "Outbox relay failures by stage.",
		}, []string{"stage"}),
		publishTime: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "paam_outbox_publish_duration_seconds",
			Help:    "Latency of a single publish call.",
			Buckets: latencyBuckets,
		}),
		batchSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "paam_outbox_batch_size",
			Help:    "Entries fetched per poll.",
			Buckets: []float64{1, 5, 10, 25, 50, 100},
		}),
		pollTime: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "paam_outbox_poll_duration_seconds",
			Help:    "Wall time of one poll.",
			Buckets: latencyBuckets,
		}),
		purged: f.NewCounter(prometheus.CounterOpts{
			Name: "paam_outbox_purged_total",
			Help: "Published entries removed after the retention period.",
		}),
		circuitOpen: f.NewGauge(prometheus.GaugeOpts{
			Name: "paam_outbox_circuit_open",
			Help: "1 while the publisher circuit is open.",
		}),
	}
}

func (m *Metrics) SetPending(n int64) {
	if m != nil {
		m.pending.Set(float64(n))
	}
}

func (m *Metrics) IncPublished() {
	if m != nil {
		m.published.Inc()
	}
}

func (m *Metrics) IncFailure(stage string) {
	if m != nil {
		m.failures.WithLabelValues(stage).Inc()
	}
}

func (m *Metrics) ObservePublish(seconds float64) {
	if m != nil {
		m.publishTime.Observe(seconds)
	}
}

func (m *Metrics) ObserveBatch(size int) {
	if m != nil {
		m.batchSize.Observe(float64(size))
	}
}

func (m *Metrics) ObservePoll(seconds float64) {
	if m != nil {
		m.pollTime.Observe(seconds)
	}
}

func (m *Metrics) AddPurged(n int64) {
	if m != nil && n > 0 {
		m.purged.Add(float64(n))
	}
}

func (m *Metrics) SetCircuitOpen(open bool) {
	if m == nil {
		return
	}
	v := 0.0
	if open {
		v = 1
	}
	m.circuitOpen.Set(v)
}
