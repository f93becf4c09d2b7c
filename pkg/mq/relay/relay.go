// Package relay drains handles from a ring queue into external sinks in
// FIFO order.
package relay

import (
	"context"
	"errors"
	"sync"

	pkgerrors "github.com/pkg/errors"

	"github.com/howerj/fifo/pkg/fifo"
)

// DefaultBatchSize is used when Config.BatchSize is zero.
const DefaultBatchSize = 64

// errBatchFull stops the batch-collecting traversal early.
var errBatchFull = errors.New("relay: batch full")

// Relay moves handles from a bounded queue to a Sink. It serializes all
// access to the queue with its own mutex, so producers may Push from any
// goroutine while another drains.
//
// Delivery is write-then-pop: a batch leaves the queue only after the sink
// accepted it, so a failed write keeps every handle queued, in order. The
// trade-off is at-least-once delivery; a sink that partially applied a
// failed batch will see those handles again.
type Relay[T any] struct {
	mu        sync.Mutex
	queue     *fifo.RingQueue[T]
	sink      Sink[T]
	batchSize int
}

// New creates a Relay draining queue into sink. Both must be non-nil or
// New panics. Zero config fields fall back to defaults.
func New[T any](queue *fifo.RingQueue[T], sink Sink[T], cfg Config) *Relay[T] {
	if queue == nil {
		panic("relay: nil queue")
	}
	if sink == nil {
		panic("relay: nil sink")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &Relay[T]{
		queue:     queue,
		sink:      sink,
		batchSize: cfg.BatchSize,
	}
}

// Push enqueues a handle for later delivery. It returns fifo.ErrFull
// unchanged when the queue is saturated.
func (r *Relay[T]) Push(handle T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queue.Push(handle)
}

// Depth returns the number of handles waiting for delivery.
func (r *Relay[T]) Depth() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queue.Depth()
}

// Drain delivers everything currently queued, oldest first, in batches of
// at most the configured size. It returns the number of handles the sink
// accepted. On a sink error the failed batch and everything behind it stay
// queued and the error is returned; a done ctx stops between batches.
func (r *Relay[T]) Drain(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	moved := 0
	for !r.queue.IsEmpty() {
		if err := ctx.Err(); err != nil {
			return moved, err
		}
		batch := r.peekBatch()
		if err := r.sink.Write(ctx, batch); err != nil {
			return moved, pkgerrors.Wrap(err, "failed to deliver batch")
		}
		for range batch {
			r.queue.Pop()
		}
		moved += len(batch)
	}
	return moved, nil
}

// peekBatch copies up to batchSize of the oldest handles without removing
// them from the queue.
func (r *Relay[T]) peekBatch() []T {
	batch := make([]T, 0, r.batchSize)
	r.queue.ForEach(func(handle T) error {
		if len(batch) == r.batchSize {
			return errBatchFull
		}
		batch = append(batch, handle)
		return nil
	}, false)
	return batch
}
