//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"paam/internal/ratelimit/models"
	"paam/internal/ratelimit/store"
	"paam/pkg/testutil"
	"paam/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *store.Redis
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = store.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestDeniesOnceWindowIsFull() {
	ctx := context.Background()
	limit := models.Limit{Requests: 2, Window: time.Minute}

	first, err := s.store.Allow(ctx, "public:ip:a", limit)
	s.Require().NoError(err)
	s.True(first.Allowed)
	s.Equal(1, first.Remaining)

	second, err := s.store.Allow(ctx, "public:ip:a", limit)
	s.Require().NoError(err)
	s.True(second.Allowed)
	s.Equal(0, second.Remaining)

	third, err := s.store.Allow(ctx, "public:ip:a", limit)
	s.Require().NoError(err)
	s.False(third.Allowed)
	s.GreaterOrEqual(third.RetryAfter, time.Second)

	ttl, err := s.redis.Client.PTTL(ctx, "paam:ratelimit:public:ip:a").Result()
	s.Require().NoError(err)
	s.Positive(ttl, "keys expire with the window")
}

func (s *RedisStoreSuite) TestConcurrentCallersShareOneBudget() {
	limit := models.Limit{Requests: 5, Window: time.Minute}
	out := testutil.RunConcurrent(20, func(int) error {
		res, err := s.store.Allow(context.Background(), "api:user:u1", limit)
		if err != nil {
			return err
		}
		if !res.Allowed {
			return errDenied
		}
		return nil
	})
	s.Equal(int32(5), out.Successes)
	s.Equal(int32(15), out.Errors)
}

var errDenied = errors.New("denied")
