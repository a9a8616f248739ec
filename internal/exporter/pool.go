package exporter

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"sqlgate/internal/storage"
)

// Pool runs export jobs on a fixed number of workers. All jobs share one
// Streamer, so their statements are serialized on its connection; the pool
// overlaps encoding and upload with the next query.
type Pool struct {
	// jobQueue buffers submitted jobs until a worker picks them up.
	jobQueue chan *Job
	workers  int
	timeout  time.Duration
	wg       sync.WaitGroup
	quit     chan struct{}
	stopOnce sync.Once

	streamer *Streamer
	storage  storage.Provider
}

// NewPool initializes a worker pool. Each job is bounded by timeout.
// A Streamer that exports inside transactions gets a single worker, since
// its connection holds one transaction at a time.
// It does not start the workers; call Start to begin processing.
func NewPool(workers int, timeout time.Duration, s *Streamer, store storage.Provider) *Pool {
	if workers < 1 || s.txOpts != nil {
		workers = 1
	}
	return &Pool{
		jobQueue: make(chan *Job, 100),
		workers:  workers,
		timeout:  timeout,
		quit:     make(chan struct{}),
		streamer: s,
		storage:  store,
	}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.workerLoop(ctx, i)
	}
	slog.Info("Worker pool started", "workers", p.workers)
}

// Submit queues job. It reports false when the pool is stopping or the
// queue is full.
func (p *Pool) Submit(job *Job) bool {
	select {
	case <-p.quit:
		return false
	default:
	}
	select {
	case p.jobQueue <- job:
		return true
	default:
		return false
	}
}

// Stop drains the queue and waits for running jobs.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		close(p.quit)
	})
	p.wg.Wait()
	slog.Info("Worker pool stopped")
}

func (p *Pool) workerLoop(ctx context.Context, id int) {
	defer p.wg.Done()
	slog.Debug("Worker started", "worker_id", id)

	for {
		select {
		case job := <-p.jobQueue:
			p.processJob(ctx, id, job)
		case <-p.quit:
			// Finish whatever is still queued.
			for {
				select {
				case job := <-p.jobQueue:
					p.processJob(ctx, id, job)
				default:
					return
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

func (p *Pool) processJob(ctx context.Context, workerID int, job *Job) {
	slog.Info("Processing job", "worker_id", workerID, "job_id", job.ID)

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	// Run records the outcome on the job.
	_ = job.Run(ctx, p.streamer, p.storage)
}
