// Package worker drains the activity queue and hands each record to a publisher.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/adapters/mq/queue"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/pkg/logger"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/pkg/metrics"
)

const (
	defaultPublishTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Publisher delivers an activity record downstream.
type Publisher interface {
	Publish(ctx context.Context, a queue.Activity) error
}

// Queue defines how workers receive records.
type Queue interface {
	Dequeue() <-chan queue.Activity
}

// observer is implemented by queues that track dequeue metrics.
type observer interface {
	Observe()
}

// Worker publishes records until its queue is drained or it is stopped.
type Worker struct {
	queue     Queue
	publisher Publisher
	name      string
	timeout   time.Duration

	shutdown chan struct{}
	done     chan struct{}
	once     sync.Once

	logger logger.Logger
}

// New creates a worker.
func New(q Queue, p Publisher, opts ...Option) *Worker {
	w := &Worker{
		queue:     q,
		publisher: p,
		name:      "worker",
		timeout:   defaultPublishTimeout,
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run processes records until the queue closes, ctx is done, or Stop is called.
// After the queue closes, buffered records are still published.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	items := w.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case a, ok := <-items:
			if !ok {
				return
			}
			if o, ok := w.queue.(observer); ok {
				o.Observe()
			}
			if err := w.process(ctx, a); err != nil {
				w.logger.Error(ctx, "publish failed", logger.String("activity_id", a.ID), logger.Error(err))
			}
		}
	}
}

// Stop signals the worker and waits for it to finish or ctx to expire.
func (w *Worker) Stop(ctx context.Context) error {
	w.once.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once Run returns.
func (w *Worker) Done() <-chan struct{} { return w.done }

func (w *Worker) process(ctx context.Context, a queue.Activity) error { //nolint:gocritic // hugeParam: passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	pctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	if err := w.publisher.Publish(pctx, a); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "publish_error")
		return fmt.Errorf("publish %s %s: %w", a.Kind, a.ID, err)
	}
	metrics.RecordActivityPublished(string(a.Kind))
	return nil
}

// Pool runs several workers over one queue.
type Pool struct {
	workers []*Worker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates count workers. count < 1 means runtime.NumCPU().
func NewPool(count int, q Queue, p Publisher, opts ...Option) *Pool {
	if count < 1 {
		count = runtime.NumCPU()
	}
	pool := &Pool{
		workers: make([]*Worker, count),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range pool.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = New(q, p, wopts...)
	}
	metrics.UpdateWorkerCount(count)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and lets workers drain what is buffered.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut int
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut++
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerCount(0)
	if timedOut > 0 {
		return fmt.Errorf("%d workers did not drain: %w", timedOut, shutdownCtx.Err())
	}
	return nil
}
