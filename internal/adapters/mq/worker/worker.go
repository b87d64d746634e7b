// Package worker drains the write queue into a key-value sink.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/admitcalc/internal/adapters/mq/queue"
	"github.com/okian/admitcalc/pkg/logger"
	"github.com/okian/admitcalc/pkg/metrics"
)

// Sink receives record writes.
type Sink interface {
	Put(ctx context.Context, key string, value []byte) error
}

// Queue defines how the flusher receives writes and inserts barriers.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Write
	EnqueueWait(ctx context.Context, w queue.Write) error
	Close() error
}

// Flusher is the single consumer of the write queue. Writes are applied in
// enqueue order, so the last write to a key wins.
type Flusher struct {
	queue   Queue
	sink    Sink
	name    string
	timeout time.Duration

	done   chan struct{}
	logger logger.Logger
}

const defaultWriteTimeout = 5 * time.Second

// NewFlusher creates a flusher with configuration options.
func NewFlusher(q Queue, sink Sink, opts ...Option) *Flusher {
	f := &Flusher{
		queue:   q,
		sink:    sink,
		name:    "flusher",
		timeout: defaultWriteTimeout,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = logger.Get().Named(f.name)
	}
	return f
}

// Run applies writes until the queue is closed and drained or ctx ends.
func (f *Flusher) Run(ctx context.Context) {
	defer close(f.done)

	writes := f.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case w, ok := <-writes:
			if !ok {
				return
			}
			if w.IsBarrier() {
				close(w.Done)
				continue
			}
			if err := f.apply(ctx, w); err != nil {
				f.logger.Error(ctx, "record write failed",
					logger.String("key", w.Key),
					logger.String("record", w.Record),
					logger.Error(err),
				)
			}
		}
	}
}

func (f *Flusher) apply(ctx context.Context, w queue.Write) error {
	putCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if err := f.sink.Put(putCtx, w.Key, w.Value); err != nil {
		metrics.RecordPersistenceFailure(w.Record)
		metrics.RecordErrorByComponent("flusher", "put_failed")
		if w.Done != nil {
			close(w.Done)
		}
		return fmt.Errorf("put %s: %w", w.Key, err)
	}
	metrics.RecordPersistenceWrite(w.Record)
	f.logger.Debug(ctx, "record written",
		logger.String("key", w.Key),
		logger.Int("bytes", len(w.Value)),
	)
	if w.Done != nil {
		close(w.Done)
	}
	return nil
}

// Flush waits until every write enqueued before the call has been applied.
func (f *Flusher) Flush(ctx context.Context) error {
	b := queue.Barrier()
	if err := f.queue.EnqueueWait(ctx, b); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	select {
	case <-b.Done:
		return nil
	case <-f.done:
		return fmt.Errorf("flush: %w", queue.ErrClosed)
	case <-ctx.Done():
		return fmt.Errorf("flush: %w", ctx.Err())
	}
}

// Shutdown closes the queue and waits for the remaining writes to drain.
func (f *Flusher) Shutdown(ctx context.Context) error {
	if err := f.queue.Close(); err != nil {
		f.logger.Error(ctx, "error closing queue", logger.Error(err))
	}
	select {
	case <-f.done:
		return nil
	case <-ctx.Done():
		f.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}
