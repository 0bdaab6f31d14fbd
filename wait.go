package coke

import "context"

// SyncWait starts t if needed and blocks the calling goroutine until it
// completes, the Go shape of coke::sync_wait(Task<T>&&).
func SyncWait[T any](ctx context.Context, t *Task[T]) (T, error) {
	return t.Wait(ctx)
}

// SyncWaitAll starts every task in tasks and blocks until all of them have
// completed, returning their results in the same order — coke::sync_wait's
// variadic/vector overloads. Every task is waited for; the first error
// encountered (in task order) is returned alongside all the results.
func SyncWaitAll[T any](ctx context.Context, tasks ...*Task[T]) ([]T, error) {
	for _, t := range tasks {
		t.Detach(ctx)
	}
	results := make([]T, len(tasks))
	var firstErr error
	for i, t := range tasks {
		r, err := t.Wait(ctx)
		results[i] = r
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return results, firstErr
}

// SyncCall runs fn to completion on its own goroutine and blocks until it
// returns, coke::sync_call(func, args...)'s Go shape.
func SyncCall[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	return SyncWait(ctx, MakeTask(fn))
}

// AsyncWait returns a Task that completes once every task in tasks has
// completed, yielding their results in order — coke::async_wait's Go shape
// (coke::async_wait returns Task<vector<T>> rather than blocking).
func AsyncWait[T any](tasks ...*Task[T]) *Task[[]T] {
	return NewTask(func(ctx context.Context) ([]T, error) {
		return SyncWaitAll(ctx, tasks...)
	})
}
