// Package future ports coke's Future<T>/Promise<T> pair
// (include/coke/future.h): a shared-state handle a producer fulfills
// exactly once — with a value, an exception, or by being abandoned — and a
// consumer waits on, optionally registering a completion callback instead
// of blocking.
package future

import (
	"context"
	"sync"
	"time"

	coke "github.com/kedixa/coke-go"
)

// Status is the state of a Future's shared record, coke's
// NOTSET/READY/BROKEN/EXCEPTION taxonomy (include/coke/detail/future.h).
type Status int

const (
	// NotSet means the Promise has not yet been fulfilled.
	NotSet Status = iota
	// Ready means SetValue was called; Future.Get returns the value.
	Ready
	// Broken means the Promise was abandoned (Break called) without ever
	// being set.
	Broken
	// Exception means SetException was called; Future.Get rethrows it.
	Exception
)

func (s Status) String() string {
	switch s {
	case NotSet:
		return "not-set"
	case Ready:
		return "ready"
	case Broken:
		return "broken"
	case Exception:
		return "exception"
	default:
		return "unknown"
	}
}

type state[T any] struct {
	mu       sync.Mutex
	status   Status
	value    T
	err      error
	done     chan struct{}
	callback func()
}

// Future observes the result a matching Promise eventually produces.
type Future[T any] struct {
	s *state[T]
}

// Promise fulfills a Future exactly once. Further SetValue/SetException/
// Break calls after the first are no-ops, coke's Promise::set_value single-
// shot contract.
type Promise[T any] struct {
	s    *state[T]
	once sync.Once
}

// NewPromise creates a linked Promise/Future pair, coke::Promise<T>{}'s Go
// shape (the C++ type constructs both ends implicitly via get_future()).
func NewPromise[T any]() (*Promise[T], *Future[T]) {
	s := &state[T]{done: make(chan struct{})}
	return &Promise[T]{s: s}, &Future[T]{s: s}
}

func (p *Promise[T]) complete(st Status, v T, err error) {
	p.once.Do(func() {
		s := p.s
		s.mu.Lock()
		s.status = st
		s.value = v
		s.err = err
		cb := s.callback
		s.mu.Unlock()
		close(s.done)
		if cb != nil {
			cb()
		}
	})
}

// SetValue fulfills the promise with v.
func (p *Promise[T]) SetValue(v T) {
	p.complete(Ready, v, nil)
}

// SetException fulfills the promise with an error Future.Get rethrows.
func (p *Promise[T]) SetException(err error) {
	var zero T
	p.complete(Exception, zero, err)
}

// Break marks the promise broken without a value, as if it were destroyed
// unset. coke-go has no destructors, so a Promise a caller may abandon
// should have Break deferred so its Future doesn't hang forever.
func (p *Promise[T]) Break() {
	var zero T
	p.complete(Broken, zero, nil)
}

// Status reports the current state of the shared record.
func (f *Future[T]) Status() Status {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return f.s.status
}

// Wait blocks until the promise is fulfilled or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) coke.Status {
	select {
	case <-f.s.done:
		return coke.Success
	case <-ctx.Done():
		return coke.Aborted
	}
}

// WaitFor blocks until the promise is fulfilled, d elapses, or ctx is done.
func (f *Future[T]) WaitFor(ctx context.Context, d time.Duration) coke.Status {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-f.s.done:
		return coke.Success
	case <-ctx.Done():
		return coke.Aborted
	case <-timer.C:
		return coke.Timeout
	}
}

// Get returns the value set by SetValue, or rethrows the error passed to
// SetException. It is only legal to call once Status is Ready or
// Exception; calling it earlier returns ErrFutureNotReady, and calling it
// against a broken promise returns ErrPromiseBroken, coke's Future::get()
// contract (include/coke/future.h).
func (f *Future[T]) Get() (T, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var zero T
	switch f.s.status {
	case Ready:
		return f.s.value, nil
	case Exception:
		return zero, f.s.err
	case Broken:
		return zero, coke.ErrPromiseBroken
	default:
		return zero, coke.ErrFutureNotReady
	}
}

// SetCallback installs cb to run once the promise is fulfilled: inline,
// immediately, if it already is; otherwise on whichever goroutine
// eventually fulfills it. cb runs at most once, coke's set_callback.
func (f *Future[T]) SetCallback(cb func()) {
	s := f.s
	s.mu.Lock()
	if s.status != NotSet {
		s.mu.Unlock()
		cb()
		return
	}
	s.callback = cb
	s.mu.Unlock()
}

// RemoveCallback clears any callback installed by SetCallback. It is safe
// to call whether or not the callback has already fired — if it already
// fired, this is a no-op, coke's remove_callback contract.
func (f *Future[T]) RemoveCallback() {
	s := f.s
	s.mu.Lock()
	s.callback = nil
	s.mu.Unlock()
}
