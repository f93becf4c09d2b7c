package fifo

// ForEach visits every queued handle in order without mutating the queue.
// With reverse false the visit runs oldest to newest, with reverse true
// newest to oldest. The first non-nil error from visit stops the traversal
// and is returned verbatim; remaining handles are not visited. A nil visit
// panics.
func (q *RingQueue[T]) ForEach(visit func(handle T) error, reverse bool) error {
	q.assert()
	if visit == nil {
		panic("fifo: nil visit callback")
	}
	n := q.Depth()
	size := len(q.storage)
	for i := 0; i < n; i++ {
		var idx int
		if reverse {
			// Newest handle sits one slot behind head.
			idx = q.head - i - 1
			if idx < 0 {
				idx += size
			}
		} else {
			idx = q.tail + i
			if idx >= size {
				idx -= size
			}
		}
		if err := visit(q.storage[idx]); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot copies the queued handles, oldest first, into a freshly
// allocated slice. It returns nil when the queue is empty. Mutating the
// returned slice does not touch the queue.
func (q *RingQueue[T]) Snapshot() []T {
	q.assert()
	n := q.Depth()
	if n == 0 {
		return nil
	}
	size := len(q.storage)
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		idx := q.tail + i
		if idx >= size {
			idx -= size
		}
		out = append(out, q.storage[idx])
	}
	return out
}
