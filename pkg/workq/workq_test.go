package workq

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/howerj/fifo/pkg/fifo"
)

// taskRecorder builds tasks that record their id in submission order.
type taskRecorder struct {
	mu  sync.Mutex
	ids []int
}

func (r *taskRecorder) task(id int) Task {
	return func(context.Context) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.ids = append(r.ids, id)
		return nil
	}
}

func (r *taskRecorder) snapshot() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.ids...)
}

// =============================================================================
// Constructor Tests
// =============================================================================

func TestNewQueue(t *testing.T) {
	q := NewQueue(8)
	if got := q.Cap(); got != 8 {
		t.Errorf("Cap() = %d, want 8", got)
	}
	if got := q.Depth(); got != 0 {
		t.Errorf("Depth() = %d, want 0", got)
	}
}

func TestNewQueue_PanicsOnInvalidCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewQueue(0) did not panic")
		}
	}()
	NewQueue(0)
}

// =============================================================================
// Submit Tests
// =============================================================================

func TestSubmit(t *testing.T) {
	q := NewQueue(4)
	noop := func(context.Context) error { return nil }

	// Three slots are usable, the fourth submission must be rejected.
	for i := 0; i < 3; i++ {
		if err := q.Submit(noop); err != nil {
			t.Fatalf("Submit %d = %v, want nil", i, err)
		}
	}
	if err := q.Submit(noop); !errors.Is(err, fifo.ErrFull) {
		t.Errorf("Submit on full queue = %v, want fifo.ErrFull", err)
	}
	if got := q.Depth(); got != 3 {
		t.Errorf("Depth() = %d, want 3", got)
	}
}

func TestSubmit_NilTaskPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Submit(nil) did not panic")
		}
	}()
	NewQueue(4).Submit(nil)
}

func TestSubmit_AfterClose(t *testing.T) {
	q := NewQueue(4)
	q.Close()
	err := q.Submit(func(context.Context) error { return nil })
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Submit after Close = %v, want ErrClosed", err)
	}
}

// =============================================================================
// Take Tests
// =============================================================================

func TestTake_FIFOOrder(t *testing.T) {
	q := NewQueue(8)
	rec := &taskRecorder{}

	for i := 1; i <= 5; i++ {
		if err := q.Submit(rec.task(i)); err != nil {
			t.Fatalf("Submit(%d) failed: %v", i, err)
		}
	}

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		task, err := q.Take(ctx)
		if err != nil {
			t.Fatalf("Take %d failed: %v", i, err)
		}
		task(ctx)
	}

	got := rec.snapshot()
	for i, want := range []int{1, 2, 3, 4, 5} {
		if got[i] != want {
			t.Errorf("executed[%d] = %d, want %d (FIFO order)", i, got[i], want)
		}
	}
}

func TestTake_BlocksUntilSubmit(t *testing.T) {
	q := NewQueue(4)
	rec := &taskRecorder{}

	done := make(chan error, 1)
	go func() {
		task, err := q.Take(context.Background())
		if err == nil {
			task(context.Background())
		}
		done <- err
	}()

	// Give the taker time to block, then feed it.
	time.Sleep(50 * time.Millisecond)
	if err := q.Submit(rec.task(7)); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Take returned %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Take did not return after Submit")
	}

	if got := rec.snapshot(); len(got) != 1 || got[0] != 7 {
		t.Errorf("executed tasks = %v, want [7]", got)
	}
}

func TestTake_ContextCanceled(t *testing.T) {
	q := NewQueue(4)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := q.Take(ctx)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Take = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Take did not return after cancel")
	}
}

func TestTake_DrainsAfterClose(t *testing.T) {
	q := NewQueue(8)
	rec := &taskRecorder{}

	q.Submit(rec.task(1))
	q.Submit(rec.task(2))
	q.Close()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		task, err := q.Take(ctx)
		if err != nil {
			t.Fatalf("Take %d after Close = %v, want nil", i, err)
		}
		task(ctx)
	}

	if _, err := q.Take(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("Take on drained closed queue = %v, want ErrClosed", err)
	}

	got := rec.snapshot()
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("executed tasks = %v, want [1 2]", got)
	}
}

// =============================================================================
// SubmitWait Tests
// =============================================================================

func TestSubmitWait_BlocksUntilSlotFrees(t *testing.T) {
	q := NewQueue(2)
	noop := func(context.Context) error { return nil }

	if err := q.Submit(noop); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- q.SubmitWait(context.Background(), noop)
	}()

	time.Sleep(50 * time.Millisecond)
	select {
	case err := <-done:
		t.Fatalf("SubmitWait returned early with %v", err)
	default:
	}

	// Free the single slot; the waiter must complete.
	if _, err := q.Take(context.Background()); err != nil {
		t.Fatalf("Take failed: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("SubmitWait = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("SubmitWait did not return after a slot freed")
	}
}

func TestSubmitWait_ContextCanceled(t *testing.T) {
	q := NewQueue(2)
	noop := func(context.Context) error { return nil }
	q.Submit(noop)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- q.SubmitWait(ctx, noop)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("SubmitWait = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("SubmitWait did not return after cancel")
	}
}

func TestSubmitWait_QueueClosed(t *testing.T) {
	q := NewQueue(2)
	noop := func(context.Context) error { return nil }
	q.Submit(noop)

	done := make(chan error, 1)
	go func() {
		done <- q.SubmitWait(context.Background(), noop)
	}()

	time.Sleep(50 * time.Millisecond)
	q.Close()

	select {
	case err := <-done:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("SubmitWait = %v, want ErrClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("SubmitWait did not return after Close")
	}
}

// =============================================================================
// Concurrency Tests
// =============================================================================

func TestConcurrency_SubmitTake(t *testing.T) {
	q := NewQueue(64)

	const producers = 4
	const tasksPerProducer = 200
	total := producers * tasksPerProducer

	var executed atomic.Int64
	task := func(context.Context) error {
		executed.Add(1)
		return nil
	}

	var wg sync.WaitGroup
	ctx := context.Background()

	// Producers block when the queue saturates, consumers unblock them.
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func() {
			defer wg.Done()
			for i := 0; i < tasksPerProducer; i++ {
				if err := q.SubmitWait(ctx, task); err != nil {
					t.Errorf("SubmitWait failed: %v", err)
					return
				}
			}
		}()
	}

	consumers := 2
	var cwg sync.WaitGroup
	cwg.Add(consumers)
	for c := 0; c < consumers; c++ {
		go func() {
			defer cwg.Done()
			for {
				task, err := q.Take(ctx)
				if err != nil {
					return
				}
				task(ctx)
			}
		}()
	}

	wg.Wait()
	q.Close()
	cwg.Wait()

	if got := executed.Load(); got != int64(total) {
		t.Errorf("executed %d tasks, want %d", got, total)
	}
	if got := q.Depth(); got != 0 {
		t.Errorf("Depth() after drain = %d, want 0", got)
	}
}
