// Package fifo provides a fixed-capacity, array-backed circular FIFO queue
// of opaque handles.
//
// The queue stores references only; it never inspects, copies, or frees
// whatever a handle points at. Capacity is set once at construction and
// never changes: there is no growth, no overwrite-on-full, and no internal
// locking. Callers that share a queue between goroutines must serialize
// every operation externally (see the workq package for a ready-made
// mutex-wrapped layer).
package fifo

import "errors"

var (
	// ErrFull is returned by Push when no free slot remains.
	ErrFull = errors.New("fifo: queue is full")

	// ErrEmpty is returned by Pop and Peek when no handle is queued.
	ErrEmpty = errors.New("fifo: queue is empty")
)

// RingQueue is a bounded FIFO over a circular backing array.
//
// head is the index of the next slot to write, tail the index of the oldest
// occupied slot. The queue is empty when head == tail and full when head+1
// wraps onto tail, so one slot is always sacrificed: a RingQueue built with
// capacity c holds at most c-1 handles. Depth derives purely from the two
// indices; no separate counter exists to drift out of sync with them.
type RingQueue[T any] struct {
	head    int
	tail    int
	storage []T
}

// New creates a RingQueue with the given capacity. The backing array is
// allocated here and never reallocated. Capacity must be at least 1;
// anything smaller panics. Note that a capacity-1 queue has zero usable
// slots and reports both empty and full.
func New[T any](capacity int) *RingQueue[T] {
	if capacity < 1 {
		panic("fifo: capacity must be at least 1")
	}
	return &RingQueue[T]{
		storage: make([]T, capacity),
	}
}

// assert panics when the queue's structural invariants do not hold.
// A violation is a programming error (zero-value RingQueue, or corrupted
// state) and is never reported as a recoverable error: continuing would
// read out of bounds.
func (q *RingQueue[T]) assert() {
	if q == nil || q.storage == nil {
		panic("fifo: use of uninitialized RingQueue, allocate with New")
	}
	if q.head < 0 || q.head >= len(q.storage) || q.tail < 0 || q.tail >= len(q.storage) {
		panic("fifo: head/tail index out of range")
	}
}

// Cap returns the total slot count the queue was constructed with.
// Usable capacity is Cap()-1.
func (q *RingQueue[T]) Cap() int {
	q.assert()
	return len(q.storage)
}

// IsEmpty reports whether no handle is queued.
func (q *RingQueue[T]) IsEmpty() bool {
	q.assert()
	return q.head == q.tail
}

// IsFull reports whether a further Push would fail.
func (q *RingQueue[T]) IsFull() bool {
	q.assert()
	next := q.head + 1
	if next == len(q.storage) {
		next = 0
	}
	return next == q.tail
}

// Depth returns the number of occupied slots, always in [0, Cap()-1].
func (q *RingQueue[T]) Depth() int {
	q.assert()
	// Modular subtraction: head may already have wrapped past tail.
	d := q.head - q.tail
	if d < 0 {
		d += len(q.storage)
	}
	return d
}

// Push stores handle at the head of the queue. It returns ErrFull, with no
// state change, when no free slot remains.
func (q *RingQueue[T]) Push(handle T) error {
	q.assert()
	if q.IsFull() {
		return ErrFull
	}
	q.storage[q.head] = handle
	q.head++
	if q.head == len(q.storage) {
		q.head = 0
	}
	return nil
}

// Pop removes and returns the oldest handle. It returns the zero value of T
// and ErrEmpty, with no state change, when the queue is empty. The vacated
// slot is cleared immediately so the queue never pins a handle the caller
// has already consumed.
func (q *RingQueue[T]) Pop() (T, error) {
	q.assert()
	var zero T
	if q.head == q.tail {
		return zero, ErrEmpty
	}
	handle := q.storage[q.tail]
	q.storage[q.tail] = zero
	q.tail++
	if q.tail == len(q.storage) {
		q.tail = 0
	}
	return handle, nil
}

// Peek returns the oldest handle without removing it. Like Pop it returns
// ErrEmpty when nothing is queued; unlike Pop it mutates nothing, so an
// immediately following Pop returns the same handle.
func (q *RingQueue[T]) Peek() (T, error) {
	q.assert()
	var zero T
	if q.head == q.tail {
		return zero, ErrEmpty
	}
	return q.storage[q.tail], nil
}

// Reset discards all queued handles and clears every slot, returning the
// queue to its freshly constructed state. Capacity is unchanged.
func (q *RingQueue[T]) Reset() {
	q.assert()
	var zero T
	for i := range q.storage {
		q.storage[i] = zero
	}
	q.head, q.tail = 0, 0
}
