package manager

import (
	"context"
	"sync"
)

// Task is the pending result of an asynchronous Fetch or Apply
type Task[T any] struct {
	done      chan struct{}
	cancelled chan struct{}
	once      sync.Once
	cancel    context.CancelFunc

	result T
	err    error
}

// start runs fn in its own goroutine under a context that Cancel cancels
func start[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Task[T] {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task[T]{
		done:      make(chan struct{}),
		cancelled: make(chan struct{}),
		cancel:    cancel,
	}

	go func() {
		defer close(t.done)
		defer cancel()
		t.result, t.err = fn(ctx)
	}()
	return t
}

// failed returns a task that has already completed with err
func failed[T any](err error) *Task[T] {
	t := &Task[T]{
		done:      make(chan struct{}),
		cancelled: make(chan struct{}),
		cancel:    func() {},
		err:       err,
	}
	close(t.done)
	return t
}

// Done is closed once the task has completed
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task completes, ctx ends or the task is cancelled.
// A completed result always wins over a concurrent cancellation.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.result, t.err
	default:
	}

	var zero T
	select {
	case <-t.done:
		return t.result, t.err
	case <-t.cancelled:
		return zero, context.Canceled
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Cancel releases waiting callers and cancels the task's context. Work
// already in progress finishes its current step.
func (t *Task[T]) Cancel() {
	t.once.Do(func() {
		close(t.cancelled)
		t.cancel()
	})
}
