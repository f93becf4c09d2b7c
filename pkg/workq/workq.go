// Package workq layers mutual exclusion and a worker pool on top of the
// core ring queue, for callers that share one queue between goroutines.
package workq

import (
	"context"
	"errors"
	"sync"

	"github.com/howerj/fifo/pkg/fifo"
)

// ErrClosed is returned once a queue has been closed: immediately by
// submissions, and by Take after the remaining tasks have been drained.
var ErrClosed = errors.New("workq: queue is closed")

// Task is the unit of work queued for the pool.
type Task = func(ctx context.Context) error

// Queue is a bounded task queue safe for concurrent use. It serializes
// every operation on an underlying ring queue with a single mutex; two
// condition variables carry the not-empty and not-full transitions to
// blocked callers.
type Queue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	ring     *fifo.RingQueue[Task]
	closed   bool
}

// NewQueue creates a Queue over a fresh ring of the given capacity.
// Capacity must be at least 1 or the constructor panics; as with the ring
// itself, one slot is sacrificed, so at most capacity-1 tasks are held.
func NewQueue(capacity int) *Queue {
	q := &Queue{
		ring: fifo.New[Task](capacity),
	}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	return q
}

// Submit enqueues task without blocking. It returns fifo.ErrFull unchanged
// when no slot is free, and ErrClosed after Close. A nil task panics.
func (q *Queue) Submit(task Task) error {
	if task == nil {
		panic("workq: nil task")
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	if err := q.ring.Push(task); err != nil {
		return err
	}
	q.notEmpty.Signal()
	return nil
}

// SubmitWait enqueues task, blocking while the queue is full until a slot
// frees, the queue closes, or ctx is done.
func (q *Queue) SubmitWait(ctx context.Context, task Task) error {
	if task == nil {
		panic("workq: nil task")
	}
	// Wake the cond wait below when ctx fires.
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		q.notFull.Broadcast()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if q.closed {
			return ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := q.ring.Push(task); err == nil {
			q.notEmpty.Signal()
			return nil
		}
		q.notFull.Wait()
	}
}

// Take removes and returns the oldest task, blocking while the queue is
// empty. After Close it keeps returning queued tasks until none remain,
// then ErrClosed; a done ctx ends the wait with ctx's error.
func (q *Queue) Take(ctx context.Context) (Task, error) {
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		q.notEmpty.Broadcast()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		// Cancellation wins over queued work.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if task, err := q.ring.Pop(); err == nil {
			q.notFull.Signal()
			return task, nil
		}
		if q.closed {
			return nil, ErrClosed
		}
		q.notEmpty.Wait()
	}
}

// Close marks the queue closed and wakes every blocked caller. Queued
// tasks remain takeable; further submissions fail with ErrClosed. Closing
// twice is a no-op.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}

// Depth returns the number of queued tasks.
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ring.Depth()
}

// Cap returns the total slot count of the underlying ring.
func (q *Queue) Cap() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ring.Cap()
}
