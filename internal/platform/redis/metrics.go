package redis

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// poolCollector reads PoolStats at scrape time, so no background loop is needed.
type poolCollector struct {
	stats func() *redis.PoolStats

	hits     *prometheus.Desc
	misses   *prometheus.Desc
	timeouts *prometheus.Desc
	total    *prometheus.Desc
	idle     *prometheus.Desc
	stale    *prometheus.Desc
}

func newPoolCollector(stats func() *redis.PoolStats) *poolCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc("paam_redis_pool_"+name, help, nil, nil)
	}
	return &poolCollector{
		stats:    stats,
		hits:     desc("hits_total", "Connections reused from the pool."),
		misses:   desc("misses_total", "Connection requests the pool could not serve from idle."),
		timeouts: desc("timeouts_total", "Connection requests that timed out waiting on the pool."),
		total:    desc("conns", "Open connections."),
		idle:     desc("idle_conns", "Idle connections."),
		stale:    desc("stale_conns_total", "Connections closed as stale."),
	}
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{c.hits, c.misses, c.timeouts, c.total, c.idle, c.stale} {
		ch <- d
	}
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats()
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(c.timeouts, prometheus.CounterValue, float64(s.Timeouts))
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.GaugeValue, float64(s.TotalConns))
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(s.IdleConns))
	ch <- prometheus.MustNewConstMetric(c.stale, prometheus.CounterValue, float64(s.StaleConns))
}

// RegisterMetrics exports the connection pool statistics on reg.
func (c *Client) RegisterMetrics(reg prometheus.Registerer) error {
	return reg.Register(newPoolCollector(c.PoolStats))
}
