package analysis

import (
	"context"
	"errors"
	"sync"

	"review-dashboard/internal/logger"
	"review-dashboard/models"
)

// ErrQueueFull is returned when the analysis queue cannot accept another
// batch; the submitter gets an explicit rejection instead of an unbounded
// goroutine pile-up.
var ErrQueueFull = errors.New("analysis queue is full")

type job struct {
	batchID string
	reviews []models.Review
}

// Dispatcher runs batch analyses on a fixed pool of workers fed by a bounded
// queue. Batches run concurrently with no ordering or fairness guarantees
// between them; within one batch, chunks stay strictly sequential.
type Dispatcher struct {
	pipeline *Pipeline
	jobs     chan job
	wg       sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewDispatcher starts the worker pool. workers and queueSize must be
// positive; zero values fall back to 1.
func NewDispatcher(p *Pipeline, workers, queueSize int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	d := &Dispatcher{
		pipeline: p,
		jobs:     make(chan job, queueSize),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.jobs {
		// No cancellation: once started, a batch runs to a terminal state.
		d.pipeline.AnalyzeBatch(context.Background(), j.batchID, j.reviews)
	}
}

// Enqueue hands a persisted batch to the worker pool. It never blocks:
// a full queue rejects with ErrQueueFull.
func (d *Dispatcher) Enqueue(batchID string, reviews []models.Review) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return errors.New("dispatcher closed")
	}
	select {
	case d.jobs <- job{batchID: batchID, reviews: reviews}:
		logger.DebugWithFields("batch enqueued for analysis", logger.Fields{
			"batch_id": batchID,
			"reviews":  len(reviews),
		})
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting work and waits for in-flight batches to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()
	d.wg.Wait()
}
