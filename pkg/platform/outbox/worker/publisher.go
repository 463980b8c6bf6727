package worker

import (
	"context"
	"log/slog"

	"paam/internal/platform/kafka/producer"
	"paam/pkg/platform/outbox"
)

// Publisher delivers one outbox entry to its destination.
type Publisher interface {
	Publish(ctx context.Context, entry *outbox.Entry) error
}

// KafkaPublisher sends entries to a single topic keyed by aggregate id, so
// events for one profile stay ordered within a partition.
type KafkaPublisher struct {
	producer *producer.Producer
	topic    string
}

func NewKafkaPublisher(p *producer.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: p, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, entry *outbox.Entry) error {
	return p.producer.Produce(ctx, &producer.Message{
		Topic: p.topic,
		Key:   []byte(entry.AggregateID),
		Value: entry.Payload,
		Headers: map[string]string{
			"event_id":       entry.ID.String(),
			"aggregate_type": entry.AggregateType,
			"aggregate_id":   entry.AggregateID,
			"event_type":     entry.EventType,
		},
	})
}

// LogPublisher writes entries to the logger. Used when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, entry *outbox.Entry) error {
	p.logger.InfoContext(ctx, "outbox event",
		"event_id", entry.ID,
		"event_type", entry.EventType,
		"aggregate_type", entry.AggregateType,
		"aggregate_id", entry.AggregateID,
	)
	return nil
}
