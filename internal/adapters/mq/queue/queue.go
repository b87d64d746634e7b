// Package queue defines the contract for enqueuing and consuming pending
// record writes.
//
// The in-memory implementation is a bounded FIFO; a single consumer draining
// it gives last-write-wins per key.
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/admitcalc/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 1024
)

// Write is one pending record write. A Write with a non-nil Done channel and
// no Key is a barrier: the consumer closes Done once everything enqueued
// before it has been handled.
type Write struct {
	Key    string
	Record string
	Value  []byte
	Done   chan struct{}
}

// IsBarrier reports whether w only marks a position in the queue.
func (w Write) IsBarrier() bool { return w.Done != nil && w.Key == "" }

// Barrier returns a new barrier write.
func Barrier() Write { return Write{Done: make(chan struct{})} }

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a write to the queue.
	// Returns false if the queue is full or closed and the write was not enqueued.
	Enqueue(ctx context.Context, w Write) bool

	// EnqueueWait blocks until there is room, the queue closes or ctx ends.
	EnqueueWait(ctx context.Context, w Write) error

	// Dequeue returns a channel that will receive writes as they become available.
	// The channel will be closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Write

	// Len returns the current number of queued writes.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue.
	// After closing, no new writes can be enqueued and the dequeue channel will be closed.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	writes   chan Write
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.writes = make(chan Write, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue adds a write to the queue without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, w Write) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	select {
	case q.writes <- w:
		metrics.UpdateQueueSize(len(q.writes))
		return true
	case <-ctx.Done():
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// EnqueueWait adds a write, waiting for room.
func (q *InMemoryQueue) EnqueueWait(ctx context.Context, w Write) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrClosed
	}
	select {
	case q.writes <- w:
		metrics.UpdateQueueSize(len(q.writes))
		return nil
	case <-ctx.Done():
		return fmt.Errorf("enqueue: %w", ctx.Err())
	}
}

// Dequeue returns a channel that will receive writes as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Write {
	out := make(chan Write)
	go func() {
		defer close(out)
		for w := range q.writes {
			select {
			case out <- w:
				metrics.UpdateQueueSize(len(q.writes))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued writes.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	size := len(q.writes)
	metrics.UpdateQueueSize(size)
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.writes)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
