package fifo

import "github.com/pkg/errors"

// Project metadata, exported so embedders can surface it (the fifo command
// prints it as a banner).
const (
	Project = "A simple multipurpose FIFO"
	Version = "v1.0.0"
	Author  = "Richard James Howe"
	Email   = "howe.r.j.89@gmail.com"
	License = "The Unlicense / Public Domain"
	Repo    = "https://github.com/howerj/fifo"
)

const selfTestCapacity = 16

// SelfTest runs a built-in end-to-end check over a capacity-16 queue of
// integer handles and returns a descriptive error on the first deviation.
// It fills the queue to its 15 usable slots, verifies the traversal sum,
// drains it with peek/pop agreement checks, then cycles four full
// wraparounds. It is cheap enough to run at program start.
func SelfTest() error {
	q := New[int](selfTestCapacity)

	if !q.IsEmpty() {
		return errors.New("fresh queue is not empty")
	}
	if q.IsFull() {
		return errors.New("fresh queue claims to be full")
	}
	if _, err := q.Pop(); !errors.Is(err, ErrEmpty) {
		return errors.Errorf("pop on empty queue: got %v, want ErrEmpty", err)
	}

	pushed, popped := 0, 0
	for i := 0; i < selfTestCapacity; i++ {
		if err := q.Push(i + 1); err != nil {
			// Only the final push may fail: one slot is sacrificed.
			if i == selfTestCapacity-1 && errors.Is(err, ErrFull) {
				break
			}
			return errors.Wrapf(err, "push %d", i+1)
		}
		if q.IsEmpty() {
			return errors.Errorf("queue empty after pushing %d handles", i+1)
		}
		pushed++
	}
	if !q.IsFull() {
		return errors.Errorf("queue not full after %d pushes", pushed)
	}

	expect := selfTestCapacity * (selfTestCapacity - 1) / 2
	for _, reverse := range []bool{false, true} {
		sum := 0
		if err := q.ForEach(func(handle int) error {
			sum += handle
			return nil
		}, reverse); err != nil {
			return errors.Wrap(err, "traversal")
		}
		if sum != expect {
			return errors.Errorf("traversal sum = %d, want %d", sum, expect)
		}
	}

	for i := 0; i < selfTestCapacity; i++ {
		peeked, peekErr := q.Peek()
		handle, popErr := q.Pop()
		if peeked != handle || !errors.Is(popErr, peekErr) {
			return errors.Errorf("peek (%d, %v) disagrees with pop (%d, %v)",
				peeked, peekErr, handle, popErr)
		}
		if popErr != nil {
			if errors.Is(popErr, ErrEmpty) {
				break
			}
			return errors.Wrap(popErr, "drain")
		}
		if handle != i+1 {
			return errors.Errorf("pop %d returned %d, want %d", i, handle, i+1)
		}
		if q.IsFull() {
			return errors.New("queue still full after a pop")
		}
		popped++
	}
	if !q.IsEmpty() {
		return errors.Errorf("queue not empty after draining, depth %d", q.Depth())
	}
	if q.IsFull() {
		return errors.New("drained queue claims to be full")
	}
	if pushed != popped {
		return errors.Errorf("pushed %d handles but popped %d", pushed, popped)
	}

	// Push/pop pairs over four wraparounds of the backing array.
	for i := 0; i < selfTestCapacity*4; i++ {
		if err := q.Push(i + 1); err != nil {
			return errors.Wrapf(err, "wraparound push %d", i+1)
		}
		handle, err := q.Pop()
		if err != nil {
			return errors.Wrapf(err, "wraparound pop %d", i+1)
		}
		if handle != i+1 {
			return errors.Errorf("wraparound pop returned %d, want %d", handle, i+1)
		}
	}
	return nil
}
