// Package cache stores computed download analytics in Redis so dashboard
// refreshes do not rerun the aggregate queries.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"paam/internal/sdk/models"
)

const keyPrefix = "paam:sdk:analytics:"

// ErrMiss is returned by Get when no fresh entry exists.
var ErrMiss = errors.New("analytics cache miss")

// Redis caches analytics by date range with TTL eviction.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedis(client redis.UniversalClient, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Key identifies the analytics of one window.
func Key(rng models.DateRange) string {
	return keyPrefix + rng.From.UTC().Format(time.RFC3339) + ":" + rng.To.UTC().Format(time.RFC3339)
}

func (c *Redis) Get(ctx context.Context, rng models.DateRange) (*models.Analytics, error) {
	data, err := c.client.Get(ctx, Key(rng)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("read analytics cache: %w", err)
	}
	var a models.Analytics
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode analytics cache: %w", err)
	}
	return &a, nil
}

func (c *Redis) Set(ctx context.Context, rng models.DateRange, a *models.Analytics) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode analytics cache: %w", err)
	}
	if err := c.client.Set(ctx, Key(rng), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("write analytics cache: %w", err)
	}
	return nil
}
