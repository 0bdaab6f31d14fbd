package queue

import (
	"context"
	"sync"
	"time"

	"github.com/kedixa/coke-go/internal/deadline"
	"github.com/kedixa/coke-go/internal/timer"

	coke "github.com/kedixa/coke-go"
)

// Queue is a bounded, FIFO, concurrent queue, ported from coke's
// TimedQueue (include/coke/queue.h). Producers blocked on a full queue and
// consumers blocked on an empty one wait on disjoint registry keys, so a
// push wakes exactly one consumer and a pop wakes exactly one producer.
type Queue[T any] struct {
	mu sync.Mutex
	c  core
	q  []T
}

// NewQueue creates a Queue bounded to capacity elements. capacity must be
// at least 1.
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue[T]{c: core{capacity: capacity}}
}

// Cap returns the queue's configured capacity.
func (q *Queue[T]) Cap() int { return q.c.capacity }

// Len returns the number of elements currently buffered.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.q)
}

// Closed reports whether Close has been called.
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.c.closed
}

// Close marks the queue closed and wakes every waiting producer and
// consumer. Already-buffered elements remain poppable afterward; Push on
// a closed queue fails with coke.Closed and TryPush reports false.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	already := q.c.closed
	q.c.closed = true
	q.mu.Unlock()
	if already {
		return
	}
	q.c.wakeProducers(broadcastAll)
	q.c.wakeConsumers(broadcastAll)
}

// TryPush pushes x without blocking. It fails if the queue is closed or at
// capacity.
func (q *Queue[T]) TryPush(x T) bool {
	q.mu.Lock()
	if q.c.closed || len(q.q) >= q.c.capacity {
		q.mu.Unlock()
		return false
	}
	q.q = append(q.q, x)
	q.mu.Unlock()
	q.c.wakeConsumers(1)
	return true
}

// ForcePush pushes x even past capacity; it never blocks and fails only
// when the queue is closed, coke's force_push.
func (q *Queue[T]) ForcePush(x T) bool {
	q.mu.Lock()
	if q.c.closed {
		q.mu.Unlock()
		return false
	}
	q.q = append(q.q, x)
	q.mu.Unlock()
	q.c.wakeConsumers(1)
	return true
}

// Push blocks until x is pushed, the queue is closed, or ctx is done.
func (q *Queue[T]) Push(ctx context.Context, x T) coke.Status {
	return q.push(ctx, x, deadline.None())
}

// TryPushFor blocks until x is pushed, d elapses, the queue is closed, or
// ctx is done.
func (q *Queue[T]) TryPushFor(ctx context.Context, d time.Duration, x T) coke.Status {
	return q.push(ctx, x, deadline.After(d))
}

func (q *Queue[T]) push(ctx context.Context, x T, dl deadline.Helper) coke.Status {
	insertHead := false
	q.mu.Lock()
	for {
		if q.c.closed {
			q.mu.Unlock()
			return coke.Closed
		}
		if len(q.q) < q.c.capacity {
			q.q = append(q.q, x)
			q.mu.Unlock()
			q.c.wakeConsumers(1)
			return coke.Success
		}
		if dl.Expired() {
			q.mu.Unlock()
			return coke.Timeout
		}

		st := waitSlot(ctx, &q.mu, q.c.prodAddr(), dl, insertHead)
		insertHead = true
		if st == timer.WakeAborted {
			q.mu.Unlock()
			return coke.Aborted
		}
	}
}

// TryPop pops the oldest element without blocking. It fails only if the
// queue is currently empty (closed-and-empty also reports false; see Pop
// for the CLOSED distinction).
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	var zero T
	if len(q.q) == 0 {
		q.mu.Unlock()
		return zero, false
	}
	v := q.q[0]
	q.q = q.q[1:]
	q.mu.Unlock()
	q.c.wakeProducers(1)
	return v, true
}

// Pop blocks until an element is popped, ctx is done, or the queue is both
// closed and empty.
func (q *Queue[T]) Pop(ctx context.Context) (T, coke.Status) {
	return q.pop(ctx, deadline.None())
}

// TryPopFor blocks until an element is popped, d elapses, ctx is done, or
// the queue is both closed and empty.
func (q *Queue[T]) TryPopFor(ctx context.Context, d time.Duration) (T, coke.Status) {
	return q.pop(ctx, deadline.After(d))
}

func (q *Queue[T]) pop(ctx context.Context, dl deadline.Helper) (T, coke.Status) {
	var zero T
	insertHead := false
	q.mu.Lock()
	for {
		if len(q.q) > 0 {
			v := q.q[0]
			q.q = q.q[1:]
			q.mu.Unlock()
			q.c.wakeProducers(1)
			return v, coke.Success
		}
		if q.c.closed {
			q.mu.Unlock()
			return zero, coke.Closed
		}
		if dl.Expired() {
			q.mu.Unlock()
			return zero, coke.Timeout
		}

		st := waitSlot(ctx, &q.mu, q.c.consAddr(), dl, insertHead)
		insertHead = true
		if st == timer.WakeAborted {
			q.mu.Unlock()
			return zero, coke.Aborted
		}
	}
}

// TryPushRange pushes as many of items as fit without blocking, returning
// the count actually pushed — coke's try_push_range, which "returns the
// first not-pushed iterator."
func (q *Queue[T]) TryPushRange(items []T) int {
	q.mu.Lock()
	if q.c.closed {
		q.mu.Unlock()
		return 0
	}
	room := q.c.capacity - len(q.q)
	if room <= 0 {
		q.mu.Unlock()
		return 0
	}
	n := len(items)
	if n > room {
		n = room
	}
	q.q = append(q.q, items[:n]...)
	q.mu.Unlock()
	if n > 0 {
		q.c.wakeConsumers(n)
	}
	return n
}

// TryPopRange fills out with up to len(out) popped elements without
// blocking, returning the count actually filled — coke's try_pop_range.
func (q *Queue[T]) TryPopRange(out []T) int {
	q.mu.Lock()
	n := len(out)
	if n > len(q.q) {
		n = len(q.q)
	}
	copy(out[:n], q.q[:n])
	q.q = q.q[n:]
	q.mu.Unlock()
	if n > 0 {
		q.c.wakeProducers(n)
	}
	return n
}

// TryPopN pops up to n elements without blocking, returning them along
// with the count — coke's try_pop_n.
func (q *Queue[T]) TryPopN(n int) ([]T, int) {
	q.mu.Lock()
	if n > len(q.q) {
		n = len(q.q)
	}
	out := make([]T, n)
	copy(out, q.q[:n])
	q.q = q.q[n:]
	q.mu.Unlock()
	if n > 0 {
		q.c.wakeProducers(n)
	}
	return out, n
}
