// Package worker defines the pool that applies queued CRM records to the
// store.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/armandov/sellerpulse/internal/domain/model"
	"github.com/armandov/sellerpulse/pkg/logger"
	"github.com/armandov/sellerpulse/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 4 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Event is what workers read off the queue.
type Event = model.Event

// Sink applies one ingestion event to durable-for-the-process state.
type Sink interface {
	Apply(ctx context.Context, e Event) error
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Worker processes events until stopped.
type Worker struct {
	queue Queue
	sink  Sink
	name  string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewWorker creates a worker with configuration options.
func NewWorker(queue Queue, sink Sink, opts ...Option) *Worker {
	w := &Worker{
		queue:    queue,
		sink:     sink,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop until ctx is cancelled, Shutdown is called, or
// the queue closes.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := w.process(ctx, e); err != nil {
				w.logger.Error(ctx, "record ingestion failed",
					logger.String("recordID", e.ID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the worker and waits for it to finish.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("worker shutdown: %w", ctx.Err())
	}
}

func (w *Worker) process(ctx context.Context, e Event) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := w.sink.Apply(ctx, e); err != nil {
		metrics.RecordWorkerError()
		return fmt.Errorf("apply %s record %s: %w", e.Kind, e.ID, err)
	}
	metrics.RecordIngested(string(e.Kind))
	return nil
}

// Pool manages a fixed set of workers over one queue.
type Pool struct {
	workers []*Worker
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers. A non-positive count falls
// back to a CPU-based default.
func NewPool(workerCount int, q Queue, sink Sink) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}
	p := &Pool{
		workers: make([]*Worker, workerCount),
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewWorker(q, sink, WithName("worker-"+strconv.Itoa(i)))
	}
	return p
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerCount(len(p.workers))
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Stop shuts every worker down, bounded by a timeout.
func (p *Pool) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), poolShutdownTimeout)
	defer cancel()

	for _, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil {
			p.logger.Warn(ctx, "worker did not stop cleanly", logger.Error(err))
		}
	}
	metrics.UpdateWorkerCount(0)
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return len(p.workers)
}
