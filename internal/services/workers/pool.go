// Package workers provides the bounded worker pool that drives scan
// processing. Submissions block once the buffer fills, so a burst of uploads
// backpressures callers instead of growing an unbounded queue.
package workers

import (
	"context"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"
)

// Job is one queued unit of scan work.
type Job func(ctx context.Context) error

// Pool runs jobs on a fixed number of workers. Job errors are logged here;
// domain state (scan status, per-document errors) lives on the job records
// themselves, not in the pool.
type Pool struct {
	jobs    chan Job
	workers int
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	logger  arbor.ILogger
}

// NewPool creates a pool with the given worker count and queue buffer.
// Non-positive values fall back to two workers and twice the worker count.
func NewPool(workers int, queueSize int, logger arbor.ILogger) *Pool {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = workers * 2
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		jobs:    make(chan Job, queueSize),
		workers: workers,
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger,
	}
}

// Start launches the workers
func (p *Pool) Start() {
	p.logger.Info().
		Int("workers", p.workers).
		Int("queue_size", cap(p.jobs)).
		Msg("Starting scan worker pool")

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Submit queues a job for processing. It blocks while the buffer is full and
// fails once the pool is shutting down.
func (p *Pool) Submit(job Job) error {
	select {
	case p.jobs <- job:
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	}
}

// Shutdown stops the workers. Jobs still queued are dropped; their scan
// records stay pending and are picked up on the next start.
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
	p.logger.Info().Msg("Scan worker pool stopped")
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug().
		Int("worker_id", id).
		Msg("Scan worker started")

	for {
		select {
		case job := <-p.jobs:
			if err := job(p.ctx); err != nil {
				p.logger.Error().
					Err(err).
					Int("worker_id", id).
					Msg("Scan job failed")
			}

		case <-p.ctx.Done():
			p.logger.Debug().
				Int("worker_id", id).
				Msg("Scan worker stopping")
			return
		}
	}
}
