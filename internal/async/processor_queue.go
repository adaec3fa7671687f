package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/apl-diff/internal/pipeline"
)

// ProcessorQueue is a bounded channel of jobs served by a fixed set of workers.
// Enqueue never blocks: a full buffer is refused with ErrQueueFull.
type ProcessorQueue struct {
	proc    Runner
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan pipeline.Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan pipeline.Job, n)
		}
	}
}

// WithJobTimeout bounds one whole run; 0 keeps the default.
func WithJobTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewProcessorQueue(proc Runner, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 20 * time.Minute,
		ch:      make(chan pipeline.Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("queue.worker.started", "worker_id", workerID)

				for job := range q.ch {
					q.run(workerID, job)
				}

				q.logger.Debug("queue.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) run(workerID int, job pipeline.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("queue.job.panic", "worker_id", workerID, "task_id", job.TaskID, "panic", r)
		}
	}()

	start := time.Now()
	if err := q.proc.Run(ctx, job); err != nil {
		q.logger.Warn("queue.job.failed", "worker_id", workerID, "task_id", job.TaskID, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return
	}
	q.logger.Info("queue.job.done", "worker_id", workerID, "task_id", job.TaskID,
		"elapsed_ms", time.Since(start).Milliseconds())
}

func (q *ProcessorQueue) Enqueue(_ context.Context, job pipeline.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("queue.enqueue.closed", "task_id", job.TaskID)
		return ErrClosed
	}
	select {
	case q.ch <- job:
		q.logger.Info("queue.job.queued", "task_id", job.TaskID, "mode", job.Mode, "depth", len(q.ch))
		return nil
	default:
		q.logger.Warn("queue.job.rejected", "task_id", job.TaskID, "capacity", cap(q.ch))
		return ErrQueueFull
	}
}

// Shutdown stops accepting jobs and waits for queued ones to drain or ctx to end.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown.interrupted")
	case <-done:
		q.logger.Info("queue.shutdown.drained")
	}
}
