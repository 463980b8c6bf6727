// Package worker relays outbox entries to a Publisher. Entries are published
// in insertion order and marked only after the publisher accepts them, so a
// crash between the two produces a duplicate rather than a loss.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"paam/pkg/platform/circuit"
	"paam/pkg/platform/outbox"
	"paam/pkg/platform/outbox/metrics"
	txcontext "paam/pkg/platform/tx"
)

const (
	defaultBatchSize    = 50
	defaultPollInterval = 250 * time.Millisecond
	drainTimeout        = 10 * time.Second
)

type Worker struct {
	store     outbox.Store
	publisher Publisher

	batchSize int
	interval  time.Duration
	retention time.Duration
	tx        txcontext.Runner
	breaker   *circuit.Breaker
	metrics   *metrics.Metrics
	log       *slog.Logger

	stop chan struct{}
	once sync.Once
	done sync.WaitGroup
}

type Option func(*Worker)

// WithBatchSize caps the entries fetched per poll.
func WithBatchSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithRetention removes entries published more than d ago after each poll.
// Zero keeps them.
func WithRetention(d time.Duration) Option {
	return func(w *Worker) { w.retention = d }
}

// WithTxRunner wraps each batch in a transaction so the row locks taken by
// FetchUnprocessed are held until the batch is marked.
func WithTxRunner(r txcontext.Runner) Option {
	return func(w *Worker) { w.tx = r }
}

// WithCircuitBreaker sends a single probe entry per poll while b is open.
func WithCircuitBreaker(b *circuit.Breaker) Option {
	return func(w *Worker) { w.breaker = b }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) { w.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Worker) { w.log = l }
}

func New(store outbox.Store, publisher Publisher, opts ...Option) *Worker {
	w := &Worker{
		store:     store,
		publisher: publisher,
		batchSize: defaultBatchSize,
		interval:  defaultPollInterval,
		log:       slog.New(slog.DiscardHandler),
		stop:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start runs the poll loop until Stop is called.
func (w *Worker) Start() {
	w.done.Add(1)
	go func() {
		defer w.done.Done()
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		ctx := context.Background()
		for {
			select {
			case <-w.stop:
				w.drain()
				return
			case <-ticker.C:
				w.Poll(ctx)
			}
		}
	}()
}

// Stop ends the loop after a final drain. It returns ctx.Err() if the loop
// has not exited by then.
func (w *Worker) Stop(ctx context.Context) error {
	w.once.Do(func() { close(w.stop) })

	exited := make(chan struct{})
	go func() {
		w.done.Wait()
		close(exited)
	}()
	select {
	case <-exited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Poll relays one batch and returns the number of entries published and marked.
func (w *Worker) Poll(ctx context.Context) int {
	began := time.Now()
	var sent int

	err := w.withinTx(ctx, func(ctx context.Context) error {
		batch, err := w.store.FetchUnprocessed(ctx, w.batchSize)
		if err != nil || len(batch) == 0 {
			return err
		}
		w.metrics.ObserveBatch(len(batch))
		sent = w.relay(ctx, batch)
		return nil
	})
	if err != nil {
		w.log.ErrorContext(ctx, "outbox fetch failed", "error", err)
		w.metrics.IncFailure(metrics.StageFetch)
		return sent
	}

	if w.retention > 0 {
		w.purge(ctx)
	}
	w.metrics.ObservePoll(time.Since(began).Seconds())
	return sent
}

func (w *Worker) relay(ctx context.Context, batch []*outbox.Entry) int {
	sent := 0
	for i, e := range batch {
		// Only the first entry of a batch may probe an open breaker.
		if i > 0 && w.breaker != nil && w.breaker.IsOpen() {
			break
		}
		t0 := time.Now()
		if err := w.publisher.Publish(ctx, e); err != nil {
			w.log.ErrorContext(ctx, "outbox publish failed",
				"id", e.ID, "event_type", e.EventType, "error", err)
			w.metrics.IncFailure(metrics.StagePublish)
			w.tripped(ctx, err)
			continue
		}
		w.metrics.ObservePublish(time.Since(t0).Seconds())
		w.recovered(ctx)

		if err := w.store.MarkProcessed(ctx, e.ID, time.Now()); err != nil {
			// The record is out; the next poll republishes it with the same event_id.
			w.log.ErrorContext(ctx, "outbox mark failed", "id", e.ID, "error", err)
			w.metrics.IncFailure(metrics.StageMark)
			continue
		}
		w.metrics.IncPublished()
		sent++
	}
	return sent
}

func (w *Worker) tripped(ctx context.Context, cause error) {
	if w.breaker == nil || !w.breaker.RecordFailure().Opened {
		return
	}
	w.log.ErrorContext(ctx, "circuit breaker opened", "circuit", w.breaker.Name(), "error", cause)
	w.metrics.SetCircuitOpen(true)
}

func (w *Worker) recovered(ctx context.Context) {
	if w.breaker == nil || !w.breaker.RecordSuccess().Closed {
		return
	}
	w.log.InfoContext(ctx, "circuit breaker closed", "circuit", w.breaker.Name())
	w.metrics.SetCircuitOpen(false)
}

func (w *Worker) purge(ctx context.Context) {
	n, err := w.store.DeleteProcessedBefore(ctx, time.Now().Add(-w.retention))
	if err != nil {
		w.log.WarnContext(ctx, "outbox purge failed", "error", err)
		return
	}
	w.metrics.AddPurged(n)
}

func (w *Worker) withinTx(ctx context.Context, fn func(context.Context) error) error {
	if w.tx == nil {
		return fn(ctx)
	}
	return w.tx.RunInTx(ctx, fn)
}

// drain flushes the backlog on shutdown, giving up once a poll makes no
// progress or the drain timeout passes.
func (w *Worker) drain() {
	w.log.Info("draining outbox")
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for ctx.Err() == nil {
		if w.Poll(ctx) == 0 {
			return
		}
	}
}

// UpdateMetrics refreshes the pending gauge.
func (w *Worker) UpdateMetrics(ctx context.Context) error {
	if w.metrics == nil {
		return nil
	}
	n, err := w.store.CountPending(ctx)
	if err != nil {
		return err
	}
	w.metrics.SetPending(n)
	return nil
}
