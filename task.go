package coke

import (
	"context"
	"sync"
)

// Task is the Go shape of a coke coroutine: work that does not start
// running until something actually awaits or detaches it. coke's
// co_await-based coroutines are compiled with `initial_suspend` always
// suspending, so a Task object that is merely constructed and dropped never
// runs at all — this type reproduces that by gating the underlying
// goroutine's launch behind a sync.Once, fired by the first call to Wait
// or Detach.
type Task[T any] struct {
	fn   func(ctx context.Context) (T, error)
	once sync.Once
	done chan struct{}

	result T
	err    error

	keepAlive any
}

// NewTask constructs a Task that, once started, runs fn to completion.
func NewTask[T any](fn func(ctx context.Context) (T, error)) *Task[T] {
	return &Task[T]{fn: fn, done: make(chan struct{})}
}

// MakeTask adapts a plain function into a Task, mirroring coke::make_task.
func MakeTask[T any](fn func(ctx context.Context) (T, error)) *Task[T] {
	return NewTask(fn)
}

func (t *Task[T]) start(ctx context.Context) {
	t.once.Do(func() {
		go func() {
			defer close(t.done)
			t.result, t.err = t.fn(ctx)
		}()
	})
}

// Wait starts the task if it has not already started, then blocks until it
// completes or ctx is done, whichever happens first. Calling Wait again
// after the task has already completed returns its stored result
// immediately, matching coke's awaiter semantics of resuming instantly once
// the awaited work is done.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	t.start(ctx)
	select {
	case <-t.done:
		return t.result, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Detach starts the task without waiting for it, the Go analogue of
// detaching a coke coroutine so it runs to completion unobserved.
func (t *Task[T]) Detach(ctx context.Context) {
	t.start(ctx)
}

// DetachOnSeries starts the task attributed to series s, so any tracing
// emitted while it runs nests under the series' span.
func (t *Task[T]) DetachOnSeries(s *Series) {
	t.start(s.Context())
}

// SetContext ties obj's lifetime to the task: the task holds a reference
// to obj until the task itself becomes unreachable, so state captured by
// reference in fn (e.g. a closure built from a temporary) cannot be
// collected out from under a detached run — coke's Task::set_context,
// which parks the moved-in callable on the coroutine frame. Call it
// before Wait or Detach.
func (t *Task[T]) SetContext(obj any) {
	t.keepAlive = obj
}

// Done returns a channel that is closed once the task has completed. It is
// nil-safe to select on before the task has ever been started: the
// returned channel will simply never close until Wait or Detach is called
// from some other goroutine.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}
