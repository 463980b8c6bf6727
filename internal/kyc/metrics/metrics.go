package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for KYC profile operations.
type Metrics struct {
	ProfilesCreated   *prometheus.CounterVec
	StatusTransitions *prometheus.CounterVec
	ProfilesDeleted   prometheus.Counter
	ListLatency       prometheus.Histogram
	OperationFailures *prometheus.CounterVec
}

// New registers and returns KYC metrics collectors.
func New() *Metrics {
	return &Metrics{
		ProfilesCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "paam_kyc_profiles_created_total",
			Help: "Total number of KYC profiles created, labeled by initial status",
		}, []string{"status"}),
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "paam_kyc_status_transitions_total",
			Help: "Total number of KYC status changes, labeled by from and to status",
		}, []string{"from", "to"}),
		ProfilesDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "paam_kyc_profiles_deleted_total",
			Help: "Total number of KYC profiles deleted",
		}),
		ListLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "paam_kyc_list_latency_seconds",
			Help:    "Latency of KYC profile listing in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		OperationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "paam_kyc_operation_failures_total",
			Help: "Total number of failed KYC operations, labeled by operation and error code",
		}, []string{"operation", "code"}),
	}
}

func (m *Metrics) IncrementProfilesCreated(status string) {
	m.ProfilesCreated.WithLabelValues(status).Inc()
}

func (m *Metrics) IncrementStatusTransition(from, to string) {
	m.StatusTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) IncrementProfilesDeleted() {
	m.ProfilesDeleted.Inc()
}

func (m *Metrics) ObserveListLatency(seconds float64) {
	m.ListLatency.Observe(seconds)
}

func (m *Metrics) IncrementFailure(operation, code string) {
	m.OperationFailures.WithLabelValues(operation, code).Inc()
}
