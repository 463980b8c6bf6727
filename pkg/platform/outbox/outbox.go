// Package outbox implements the transactional outbox: events are written in
// the same transaction as the state change and published asynchronously.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entry is a pending event in the outbox table.
type Entry struct {
	ID            uuid.UUID
	AggregateType string // e.g. "kyc_profile"
	AggregateID   string
	EventType     string // e.g. "kyc_status_changed"
	Payload       []byte // JSON
	CreatedAt     time.Time
	ProcessedAt   *time.Time // nil while pending
}

// IsPending reports whether the entry has not been published yet.
func (e *Entry) IsPending() bool {
	return e.ProcessedAt == nil
}

// NewEntry JSON-encodes payload into a new entry.
func NewEntry(aggregateType, aggregateID, eventType string, payload any, now time.Time) (*Entry, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return &Entry{
		ID:            uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       body,
		CreatedAt:     now,
	}, nil
}

// Appender is the write side used by services inside their transactions.
type Appender interface {
	Append(ctx context.Context, entry *Entry) error
}

// Store defines the outbox persistence operations.
// Implementations must be safe for concurrent use.
type Store interface {
	Appender

	// FetchUnprocessed returns up to limit pending entries, oldest first.
	// Inside a transaction the Postgres store locks them with SKIP LOCKED.
	FetchUnprocessed(ctx context.Context, limit int) ([]*Entry, error)

	MarkProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time) error

	CountPending(ctx context.Context) (int64, error)

	// DeleteProcessedBefore removes published entries older than before.
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}
