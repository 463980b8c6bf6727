package redis

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestPoolCollectorReadsStatsAtScrape(t *testing.T) {
	stats := &redis.PoolStats{Hits: 7, Misses: 2, Timeouts: 1, TotalConns: 4, IdleConns: 3}
	c := newPoolCollector(func() *redis.PoolStats { return stats })

	expected := `
# HELP paam_redis_pool_hits_total Connections reused from the pool.
# TYPE paam_redis_pool_hits_total counter
paam_redis_pool_hits_total 7
# HELP paam_redis_pool_idle_conns Idle connections.
# TYPE paam_redis_pool_idle_conns gauge
paam_redis_pool_idle_conns 3
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected),
		"paam_redis_pool_hits_total", "paam_redis_pool_idle_conns"))

	stats.Hits = 9
	require.Equal(t, 6, testutil.CollectAndCount(c))
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(strings.ReplaceAll(expected, "total 7", "total 9")),
		"paam_redis_pool_hits_total", "paam_redis_pool_idle_conns"))
}
