package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for users and API keys.
type Metrics struct {
	KeysIssued      prometheus.Counter
	KeysRevoked     prometheus.Counter
	Authentications *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		KeysIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "paam_api_keys_issued_total",
			Help: "Total number of API keys issued",
		}),
		KeysRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "paam_api_keys_revoked_total",
			Help: "Total number of API keys revoked",
		}),
		Authentications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "paam_api_key_authentications_total",
			Help: "Total number of API key authentication attempts, labeled by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) IncrementKeysIssued() {
	m.KeysIssued.Inc()
}

func (m *Metrics) IncrementKeysRevoked() {
	m.KeysRevoked.Inc()
}

func (m *Metrics) IncrementAuthentication(result string) {
	m.Authentications.WithLabelValues(result).Inc()
}
