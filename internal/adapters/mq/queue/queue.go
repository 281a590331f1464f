// Package queue buffers activity records between the domain services and
// the publishers that deliver them.
//
// Enqueue never blocks: when the buffer is full the record is dropped and
// the caller is told so.
package queue

import (
	"context"
	"sync"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/pkg/metrics"
)

const defaultCapacity = 10_000

// Activity is the payload flowing through the queue.
type Activity = model.Activity

// Queue provides non-blocking enqueue and channel-based dequeue.
type Queue interface {
	// Enqueue returns false when the queue is full, closed, or ctx is done.
	Enqueue(ctx context.Context, a Activity) bool

	// Dequeue returns the receive side. It is closed after Close once drained.
	Dequeue() <-chan Activity

	Len() int
	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue with a buffered channel.
type InMemoryQueue struct {
	items    chan Activity
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a bounded queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.items = make(chan Activity, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)
	return q
}

// Enqueue adds a record without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, a Activity) bool { //nolint:gocritic // hugeParam: passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.reject("closed")
		return false
	}
	if ctx.Err() != nil {
		q.reject("context_cancelled")
		return false
	}

	select {
	case q.items <- a:
		metrics.RecordQueueEnqueue()
		q.observe()
		return true
	default:
		q.reject("queue_full")
		return false
	}
}

// Dequeue returns the receive side of the queue.
func (q *InMemoryQueue) Dequeue() <-chan Activity {
	return q.items
}

// Len returns the number of buffered records.
func (q *InMemoryQueue) Len() int {
	return len(q.items)
}

// Close stops accepting records. Buffered records remain readable.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.items)
	q.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

// Observe refreshes the size gauges; consumers call it after a receive.
func (q *InMemoryQueue) Observe() {
	metrics.RecordQueueDequeue()
	q.observe()
}

func (q *InMemoryQueue) observe() {
	size := len(q.items)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}

func (q *InMemoryQueue) reject(reason string) {
	metrics.RecordQueueEnqueueError()
	metrics.RecordErrorByComponent("queue", reason)
}
