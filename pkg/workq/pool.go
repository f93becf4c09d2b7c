package workq

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pool runs a fixed set of workers that drain tasks from a shared Queue.
// Task errors are logged and never stop the pool.
type Pool struct {
	queue   *Queue
	logger  *zap.Logger
	workers int

	cancel context.CancelFunc
	group  *errgroup.Group
}

// NewPool validates cfg and constructs a stopped pool with its own queue.
// A nil logger is replaced with a no-op one.
func NewPool(cfg Config, logger *zap.Logger) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		queue:   NewQueue(cfg.Capacity),
		logger:  logger,
		workers: cfg.Workers,
	}, nil
}

// Queue exposes the pool's task queue for direct use.
func (p *Pool) Queue() *Queue {
	return p.queue
}

// Submit enqueues task without blocking, see Queue.Submit.
func (p *Pool) Submit(task Task) error {
	return p.queue.Submit(task)
}

// SubmitWait enqueues task, blocking while the queue is full, see
// Queue.SubmitWait.
func (p *Pool) SubmitWait(ctx context.Context, task Task) error {
	return p.queue.SubmitWait(ctx, task)
}

// Start launches the workers. Tasks run with a context derived from ctx;
// canceling it stops the pool as Stop does.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.group, ctx = errgroup.WithContext(ctx)
	for i := 0; i < p.workers; i++ {
		id := i
		p.group.Go(func() error {
			return p.worker(ctx, id)
		})
	}
	p.logger.Info("worker pool started",
		zap.Int("workers", p.workers),
		zap.Int("queue_capacity", p.queue.Cap()))
}

func (p *Pool) worker(ctx context.Context, id int) error {
	for {
		task, err := p.queue.Take(ctx)
		if err != nil {
			if errors.Is(err, ErrClosed) || errors.Is(err, context.Canceled) ||
				errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return errors.Wrapf(err, "worker %d", id)
		}
		if err := task(ctx); err != nil {
			p.logger.Error("task failed",
				zap.Int("worker", id),
				zap.Error(err))
		}
	}
}

// Drain closes the queue, lets the workers finish every queued task, and
// waits for them to exit.
func (p *Pool) Drain() error {
	p.queue.Close()
	err := p.group.Wait()
	p.logger.Info("worker pool drained")
	return err
}

// Stop cancels the workers without waiting for queued tasks and waits for
// them to exit. Tasks still queued are abandoned.
func (p *Pool) Stop() error {
	p.cancel()
	err := p.group.Wait()
	p.logger.Info("worker pool stopped")
	return err
}
