package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for projects, builds and deployments.
type Metrics struct {
	BuildTransitions   *prometheus.CounterVec
	DeploymentsCreated *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		BuildTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "paam_build_status_transitions_total",
			Help: "Total number of build status changes, labeled by target status",
		}, []string{"status"}),
		DeploymentsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "paam_deployments_created_total",
			Help: "Total number of deployments requested, labeled by environment",
		}, []string{"environment"}),
	}
}

func (m *Metrics) IncrementBuildTransition(status string) {
	m.BuildTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) IncrementDeployments(environment string) {
	m.DeploymentsCreated.WithLabelValues(environment).Inc()
}
