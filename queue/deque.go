package queue

import (
	"context"
	"sync"
	"time"

	"github.com/kedixa/coke-go/internal/deadline"
	"github.com/kedixa/coke-go/internal/timer"

	coke "github.com/kedixa/coke-go"
)

// Deque is a bounded, concurrent double-ended queue, ported from coke's
// TimedQueue<T> instantiated as a deque (include/coke/queue.h's Deque
// extension): every operation has a Front and a Back variant, both
// contending for the same capacity and the same producer/consumer wait
// keys.
type Deque[T any] struct {
	mu sync.Mutex
	c  core
	d  []T
}

// NewDeque creates a Deque bounded to capacity elements. capacity must be
// at least 1.
func NewDeque[T any](capacity int) *Deque[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Deque[T]{c: core{capacity: capacity}}
}

// Cap returns the deque's configured capacity.
func (d *Deque[T]) Cap() int { return d.c.capacity }

// Len returns the number of elements currently buffered.
func (d *Deque[T]) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.d)
}

// Closed reports whether Close has been called.
func (d *Deque[T]) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.c.closed
}

// Close marks the deque closed and wakes every waiting producer and
// consumer.
func (d *Deque[T]) Close() {
	d.mu.Lock()
	already := d.c.closed
	d.c.closed = true
	d.mu.Unlock()
	if already {
		return
	}
	d.c.wakeProducers(broadcastAll)
	d.c.wakeConsumers(broadcastAll)
}

// TryPushBack pushes x onto the back without blocking. It fails if the
// deque is closed or at capacity.
func (d *Deque[T]) TryPushBack(x T) bool {
	d.mu.Lock()
	if d.c.closed || len(d.d) >= d.c.capacity {
		d.mu.Unlock()
		return false
	}
	d.d = append(d.d, x)
	d.mu.Unlock()
	d.c.wakeConsumers(1)
	return true
}

// TryPushFront pushes x onto the front without blocking. It fails if the
// deque is closed or at capacity.
func (d *Deque[T]) TryPushFront(x T) bool {
	d.mu.Lock()
	if d.c.closed || len(d.d) >= d.c.capacity {
		d.mu.Unlock()
		return false
	}
	d.d = append([]T{x}, d.d...)
	d.mu.Unlock()
	d.c.wakeConsumers(1)
	return true
}

// ForcePushBack pushes x onto the back even past capacity; it never blocks
// and fails only when the deque is closed.
func (d *Deque[T]) ForcePushBack(x T) bool {
	d.mu.Lock()
	if d.c.closed {
		d.mu.Unlock()
		return false
	}
	d.d = append(d.d, x)
	d.mu.Unlock()
	d.c.wakeConsumers(1)
	return true
}

// ForcePushFront pushes x onto the front even past capacity; it never
// blocks and fails only when the deque is closed.
func (d *Deque[T]) ForcePushFront(x T) bool {
	d.mu.Lock()
	if d.c.closed {
		d.mu.Unlock()
		return false
	}
	d.d = append([]T{x}, d.d...)
	d.mu.Unlock()
	d.c.wakeConsumers(1)
	return true
}

// PushBack blocks until x is pushed onto the back, the deque is closed, or
// ctx is done.
func (d *Deque[T]) PushBack(ctx context.Context, x T) coke.Status {
	return d.push(ctx, x, deadline.None(), true)
}

// PushFront blocks until x is pushed onto the front, the deque is closed,
// or ctx is done.
func (d *Deque[T]) PushFront(ctx context.Context, x T) coke.Status {
	return d.push(ctx, x, deadline.None(), false)
}

// TryPushBackFor blocks until x is pushed onto the back, d elapses, the
// deque is closed, or ctx is done.
func (d *Deque[T]) TryPushBackFor(ctx context.Context, dur time.Duration, x T) coke.Status {
	return d.push(ctx, x, deadline.After(dur), true)
}

// TryPushFrontFor blocks until x is pushed onto the front, d elapses, the
// deque is closed, or ctx is done.
func (d *Deque[T]) TryPushFrontFor(ctx context.Context, dur time.Duration, x T) coke.Status {
	return d.push(ctx, x, deadline.After(dur), false)
}

func (d *Deque[T]) push(ctx context.Context, x T, dl deadline.Helper, back bool) coke.Status {
	insertHead := false
	d.mu.Lock()
	for {
		if d.c.closed {
			d.mu.Unlock()
			return coke.Closed
		}
		if len(d.d) < d.c.capacity {
			if back {
				d.d = append(d.d, x)
			} else {
				d.d = append([]T{x}, d.d...)
			}
			d.mu.Unlock()
			d.c.wakeConsumers(1)
			return coke.Success
		}
		if dl.Expired() {
			d.mu.Unlock()
			return coke.Timeout
		}

		st := waitSlot(ctx, &d.mu, d.c.prodAddr(), dl, insertHead)
		insertHead = true
		if st == timer.WakeAborted {
			d.mu.Unlock()
			return coke.Aborted
		}
	}
}

// TryPopFront pops the front element without blocking. It fails only if
// the deque is currently empty.
func (d *Deque[T]) TryPopFront() (T, bool) {
	d.mu.Lock()
	var zero T
	if len(d.d) == 0 {
		d.mu.Unlock()
		return zero, false
	}
	v := d.d[0]
	d.d = d.d[1:]
	d.mu.Unlock()
	d.c.wakeProducers(1)
	return v, true
}

// TryPopBack pops the back element without blocking. It fails only if the
// deque is currently empty.
func (d *Deque[T]) TryPopBack() (T, bool) {
	d.mu.Lock()
	var zero T
	n := len(d.d)
	if n == 0 {
		d.mu.Unlock()
		return zero, false
	}
	v := d.d[n-1]
	d.d = d.d[:n-1]
	d.mu.Unlock()
	d.c.wakeProducers(1)
	return v, true
}

// PopFront blocks until the front element is popped, ctx is done, or the
// deque is both closed and empty.
func (d *Deque[T]) PopFront(ctx context.Context) (T, coke.Status) {
	return d.pop(ctx, deadline.None(), false)
}

// PopBack blocks until the back element is popped, ctx is done, or the
// deque is both closed and empty.
func (d *Deque[T]) PopBack(ctx context.Context) (T, coke.Status) {
	return d.pop(ctx, deadline.None(), true)
}

// TryPopFrontFor blocks until the front element is popped, d elapses, ctx
// is done, or the deque is both closed and empty.
func (d *Deque[T]) TryPopFrontFor(ctx context.Context, dur time.Duration) (T, coke.Status) {
	return d.pop(ctx, deadline.After(dur), false)
}

// TryPopBackFor blocks until the back element is popped, d elapses, ctx is
// done, or the deque is both closed and empty.
func (d *Deque[T]) TryPopBackFor(ctx context.Context, dur time.Duration) (T, coke.Status) {
	return d.pop(ctx, deadline.After(dur), true)
}

func (d *Deque[T]) pop(ctx context.Context, dl deadline.Helper, back bool) (T, coke.Status) {
	var zero T
	insertHead := false
	d.mu.Lock()
	for {
		if len(d.d) > 0 {
			var v T
			if back {
				n := len(d.d)
				v = d.d[n-1]
				d.d = d.d[:n-1]
			} else {
				v = d.d[0]
				d.d = d.d[1:]
			}
			d.mu.Unlock()
			d.c.wakeProducers(1)
			return v, coke.Success
		}
		if d.c.closed {
			d.mu.Unlock()
			return zero, coke.Closed
		}
		if dl.Expired() {
			d.mu.Unlock()
			return zero, coke.Timeout
		}

		st := waitSlot(ctx, &d.mu, d.c.consAddr(), dl, insertHead)
		insertHead = true
		if st == timer.WakeAborted {
			d.mu.Unlock()
			return zero, coke.Aborted
		}
	}
}

// TryPushBackRange pushes as many of items as fit onto the back without
// blocking, returning the count actually pushed.
func (d *Deque[T]) TryPushBackRange(items []T) int {
	d.mu.Lock()
	if d.c.closed {
		d.mu.Unlock()
		return 0
	}
	room := d.c.capacity - len(d.d)
	if room <= 0 {
		d.mu.Unlock()
		return 0
	}
	n := len(items)
	if n > room {
		n = room
	}
	d.d = append(d.d, items[:n]...)
	d.mu.Unlock()
	if n > 0 {
		d.c.wakeConsumers(n)
	}
	return n
}

// TryPushFrontRange pushes as many of items as fit onto the front without
// blocking; items[0] ends up frontmost. Returns the count actually pushed.
func (d *Deque[T]) TryPushFrontRange(items []T) int {
	d.mu.Lock()
	if d.c.closed {
		d.mu.Unlock()
		return 0
	}
	room := d.c.capacity - len(d.d)
	if room <= 0 {
		d.mu.Unlock()
		return 0
	}
	n := len(items)
	if n > room {
		n = room
	}
	d.d = append(append([]T{}, items[:n]...), d.d...)
	d.mu.Unlock()
	if n > 0 {
		d.c.wakeConsumers(n)
	}
	return n
}

// TryPopFrontRange fills out with up to len(out) elements popped from the
// front without blocking, returning the count filled.
func (d *Deque[T]) TryPopFrontRange(out []T) int {
	d.mu.Lock()
	n := len(out)
	if n > len(d.d) {
		n = len(d.d)
	}
	copy(out[:n], d.d[:n])
	d.d = d.d[n:]
	d.mu.Unlock()
	if n > 0 {
		d.c.wakeProducers(n)
	}
	return n
}

// TryPopBackRange fills out with up to len(out) elements popped from the
// back without blocking, backmost first, returning the count filled.
func (d *Deque[T]) TryPopBackRange(out []T) int {
	d.mu.Lock()
	n := len(out)
	if n > len(d.d) {
		n = len(d.d)
	}
	for i := 0; i < n; i++ {
		out[i] = d.d[len(d.d)-1]
		d.d = d.d[:len(d.d)-1]
	}
	d.mu.Unlock()
	if n > 0 {
		d.c.wakeProducers(n)
	}
	return n
}
