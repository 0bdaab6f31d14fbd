package future

import (
	"context"
	"sync"

	coke "github.com/kedixa/coke-go"
)

// CreateFuture detaches t and returns a Future that resolves with its
// result (or its error, as an Exception) once it completes — coke's
// create_future(Task<T>&&), which "detaches the task with a hook that
// feeds the promise, returning the future immediately."
func CreateFuture[T any](ctx context.Context, t *coke.Task[T]) *Future[T] {
	p, f := NewPromise[T]()
	go func() {
		v, err := t.Wait(ctx)
		if err != nil {
			p.SetException(err)
		} else {
			p.SetValue(v)
		}
	}()
	return f
}

// WaitFutures blocks until at least k of futures have left NotSet, or ctx
// is done, coke's wait_futures(vec, k): "built by installing a latch-
// counting callback on each, waiting, then removing callbacks."
func WaitFutures[T any](ctx context.Context, futures []*Future[T], k int) coke.Status {
	if k <= 0 {
		return coke.Success
	}
	if k > len(futures) {
		k = len(futures)
	}

	var mu sync.Mutex
	fired := 0
	done := make(chan struct{})
	var closeOnce sync.Once

	for _, f := range futures {
		f.SetCallback(func() {
			mu.Lock()
			fired++
			n := fired
			mu.Unlock()
			if n >= k {
				closeOnce.Do(func() { close(done) })
			}
		})
	}
	defer func() {
		for _, f := range futures {
			f.RemoveCallback()
		}
	}()

	select {
	case <-done:
		return coke.Success
	case <-ctx.Done():
		return coke.Aborted
	}
}
