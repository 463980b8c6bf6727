package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the customer registry.
type Metrics struct {
	CustomersCreated *prometheus.CounterVec
	RiskLevelChanges *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		CustomersCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "paam_customers_created_total",
			Help: "Total number of customers registered, labeled by risk level",
		}, []string{"risk_level"}),
		RiskLevelChanges: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "paam_customer_risk_level_changes_total",
			Help: "Total number of customer risk level changes, labeled by from and to level",
		}, []string{"from", "to"}),
	}
}

func (m *Metrics) IncrementCustomersCreated(riskLevel string) {
	m.CustomersCreated.WithLabelValues(riskLevel).Inc()
}

func (m *Metrics) IncrementRiskLevelChange(from, to string) {
	m.RiskLevelChanges.WithLabelValues(from, to).Inc()
}
