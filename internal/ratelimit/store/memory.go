// Package store keeps sliding-window request counters, in process or in Redis.
package store

import (
	"context"
	"sync"
	"time"

	"paam/internal/ratelimit/models"
)

// Memory is a per-process sliding window store. Counters are not shared
// between replicas.
type Memory struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{windows: make(map[string][]time.Time), now: time.Now}
}

// NewMemoryWithClock is NewMemory with an injected clock for tests.
func NewMemoryWithClock(now func() time.Time) *Memory {
	m := NewMemory()
	m.now = now
	return m
}

// Allow records one request against key if the window still has room.
func (m *Memory) Allow(_ context.Context, key string, limit models.Limit) (*models.Result, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	hits := prune(m.windows[key], now.Add(-limit.Window))
	if len(hits) >= limit.Requests {
		m.windows[key] = hits
		resetAt := now.Add(limit.Window)
		if len(hits) > 0 {
			resetAt = hits[0].Add(limit.Window)
		}
		return denied(limit, now, resetAt), nil
	}

	hits = append(hits, now)
	m.windows[key] = hits
	return &models.Result{
		Allowed:   true,
		Limit:     limit.Requests,
		Remaining: limit.Requests - len(hits),
		ResetAt:   hits[0].Add(limit.Window),
	}, nil
}

// Sweep drops keys whose windows are empty. Call it periodically to bound memory.
func (m *Memory) Sweep(window time.Duration) int {
	cutoff := m.now().Add(-window)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, hits := range m.windows {
		if hits = prune(hits, cutoff); len(hits) == 0 {
			delete(m.windows, key)
			removed++
			continue
		}
		m.windows[key] = hits
	}
	return removed
}

// prune drops timestamps at or before cutoff. hits is ordered oldest first.
func prune(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}

func denied(limit models.Limit, now, resetAt time.Time) *models.Result {
	retry := resetAt.Sub(now)
	if retry < time.Second {
		retry = time.Second
	}
	return &models.Result{
		Allowed:    false,
		Limit:      limit.Requests,
		ResetAt:    resetAt,
		RetryAfter: retry.Truncate(time.Second),
	}
}
