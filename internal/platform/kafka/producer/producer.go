// Package producer publishes records to Kafka with synchronous acknowledgement.
package producer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// ErrClosed is returned by Produce after Close.
var ErrClosed = errors.New("producer is closed")

const closeFlushTimeout = 30 * time.Second

// Message is a single record bound for a topic.
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Acks selects how many replicas must confirm a write.
type Acks string

const (
	AcksNone   Acks = "0"
	AcksLeader Acks = "1"
	AcksAll    Acks = "all"
)

type settings struct {
	clientID        string
	acks            Acks
	retries         int
	linger          time.Duration
	deliveryTimeout time.Duration
	logger          *slog.Logger
}

// Option tunes a Producer.
type Option func(*settings)

func WithClientID(id string) Option { return func(s *settings) { s.clientID = id } }

func WithAcks(a Acks) Option { return func(s *settings) { s.acks = a } }

func WithRetries(n int) Option { return func(s *settings) { s.retries = n } }

func WithLinger(d time.Duration) Option { return func(s *settings) { s.linger = d } }

// WithDeliveryTimeout bounds how long a record may wait for acknowledgement, retries included.
func WithDeliveryTimeout(d time.Duration) Option {
	return func(s *settings) { s.deliveryTimeout = d }
}

func WithLogger(l *slog.Logger) Option { return func(s *settings) { s.logger = l } }

// Producer is a thin synchronous facade over a franz-go client.
type Producer struct {
	client *kgo.Client
	log    *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// New connects to brokers. Defaults are acks=all, three retries and a 30s delivery timeout.
func New(brokers []string, opts ...Option) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers not configured")
	}
	s := settings{
		clientID:        "paam",
		acks:            AcksAll,
		retries:         3,
		linger:          5 * time.Millisecond,
		deliveryTimeout: 30 * time.Second,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	client, err := kgo.NewClient(s.clientOpts(brokers)...)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return &Producer{client: client, log: s.logger}, nil
}

func (s settings) clientOpts(brokers []string) []kgo.Opt {
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(s.clientID),
		kgo.RecordRetries(s.retries),
		kgo.ProducerLinger(s.linger),
		kgo.AllowAutoTopicCreation(),
	}
	switch s.acks {
	case AcksNone:
		opts = append(opts, kgo.RequiredAcks(kgo.NoAck()), kgo.DisableIdempotentWrite())
	case AcksLeader:
		opts = append(opts, kgo.RequiredAcks(kgo.LeaderAck()), kgo.DisableIdempotentWrite())
	default:
		opts = append(opts, kgo.RequiredAcks(kgo.AllISRAcks()))
	}
	if s.deliveryTimeout > 0 {
		opts = append(opts, kgo.RecordDeliveryTimeout(s.deliveryTimeout))
	}
	return opts
}

// Produce writes msg and blocks until the broker acknowledges it or ctx ends.
func (p *Producer) Produce(ctx context.Context, msg *Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	if err := p.client.ProduceSync(ctx, toRecord(msg)).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", msg.Topic, err)
	}
	return nil
}

func toRecord(msg *Message) *kgo.Record {
	rec := &kgo.Record{Topic: msg.Topic, Key: msg.Key, Value: msg.Value}
	if len(msg.Headers) > 0 {
		rec.Headers = make([]kgo.RecordHeader, 0, len(msg.Headers))
		for k, v := range msg.Headers {
			rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
		}
	}
	return rec
}

// Client returns the underlying client for admin calls and health probes.
func (p *Producer) Client() *kgo.Client {
	return p.client
}

// Close flushes what is buffered and releases the client. It is safe to call twice.
func (p *Producer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), closeFlushTimeout)
	defer cancel()
	if err := p.client.Flush(ctx); err != nil {
		p.log.Warn("kafka producer closed with unflushed records", "error", err)
	}
	p.client.Close()
	return nil
}
