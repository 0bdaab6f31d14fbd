package queue

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/kedixa/coke-go/internal/deadline"
	"github.com/kedixa/coke-go/internal/timer"

	coke "github.com/kedixa/coke-go"
)

// pqHeap is a container/heap.Interface over a user comparator, max-rooted
// (Pop removes the greatest element per Less), coke's default
// PriorityQueue ordering (include/coke/priority_queue.h).
type pqHeap[T any] struct {
	items []T
	less  func(a, b T) bool
}

func (h *pqHeap[T]) Len() int { return len(h.items) }
func (h *pqHeap[T]) Less(i, j int) bool {
	// container/heap is min-rooted; a max-priority queue simply inverts
	// the caller's comparator at this one point.
	return h.less(h.items[j], h.items[i])
}
func (h *pqHeap[T]) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *pqHeap[T]) Push(x any)    { h.items = append(h.items, x.(T)) }
func (h *pqHeap[T]) Pop() any {
	n := len(h.items)
	v := h.items[n-1]
	var zero T
	h.items[n-1] = zero
	h.items = h.items[:n-1]
	return v
}

// PriorityQueue is a bounded, concurrent binary heap, ported from coke's
// TimedPriorityQueue (include/coke/priority_queue.h). Pop always removes
// the greatest element according to the comparator supplied to
// NewPriorityQueue.
type PriorityQueue[T any] struct {
	mu sync.Mutex
	c  core
	h  pqHeap[T]
}

// NewPriorityQueue creates a PriorityQueue bounded to capacity elements,
// ordered by less (Pop removes an element c for which less(c, other) is
// false for every other element, i.e. the greatest). capacity must be at
// least 1.
func NewPriorityQueue[T any](capacity int, less func(a, b T) bool) *PriorityQueue[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &PriorityQueue[T]{c: core{capacity: capacity}, h: pqHeap[T]{less: less}}
}

// Cap returns the queue's configured capacity.
func (p *PriorityQueue[T]) Cap() int { return p.c.capacity }

// Len returns the number of elements currently buffered.
func (p *PriorityQueue[T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.h.Len()
}

// Closed reports whether Close has been called.
func (p *PriorityQueue[T]) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.c.closed
}

// Close marks the queue closed and wakes every waiting producer and
// consumer.
func (p *PriorityQueue[T]) Close() {
	p.mu.Lock()
	already := p.c.closed
	p.c.closed = true
	p.mu.Unlock()
	if already {
		return
	}
	p.c.wakeProducers(broadcastAll)
	p.c.wakeConsumers(broadcastAll)
}

// TryPush pushes x without blocking. It fails if the queue is closed or at
// capacity.
func (p *PriorityQueue[T]) TryPush(x T) bool {
	p.mu.Lock()
	if p.c.closed || p.h.Len() >= p.c.capacity {
		p.mu.Unlock()
		return false
	}
	heap.Push(&p.h, x)
	p.mu.Unlock()
	p.c.wakeConsumers(1)
	return true
}

// ForcePush pushes x even past capacity; it never blocks and fails only
// when the queue is closed.
func (p *PriorityQueue[T]) ForcePush(x T) bool {
	p.mu.Lock()
	if p.c.closed {
		p.mu.Unlock()
		return false
	}
	heap.Push(&p.h, x)
	p.mu.Unlock()
	p.c.wakeConsumers(1)
	return true
}

// Push blocks until x is pushed, the queue is closed, or ctx is done.
func (p *PriorityQueue[T]) Push(ctx context.Context, x T) coke.Status {
	return p.push(ctx, x, deadline.None())
}

// TryPushFor blocks until x is pushed, d elapses, the queue is closed, or
// ctx is done.
func (p *PriorityQueue[T]) TryPushFor(ctx context.Context, d time.Duration, x T) coke.Status {
	return p.push(ctx, x, deadline.After(d))
}

func (p *PriorityQueue[T]) push(ctx context.Context, x T, dl deadline.Helper) coke.Status {
	insertHead := false
	p.mu.Lock()
	for {
		if p.c.closed {
			p.mu.Unlock()
			return coke.Closed
		}
		if p.h.Len() < p.c.capacity {
			heap.Push(&p.h, x)
			p.mu.Unlock()
			p.c.wakeConsumers(1)
			return coke.Success
		}
		if dl.Expired() {
			p.mu.Unlock()
			return coke.Timeout
		}

		st := waitSlot(ctx, &p.mu, p.c.prodAddr(), dl, insertHead)
		insertHead = true
		if st == timer.WakeAborted {
			p.mu.Unlock()
			return coke.Aborted
		}
	}
}

// TryPop pops the greatest element without blocking. It fails only if the
// queue is currently empty.
func (p *PriorityQueue[T]) TryPop() (T, bool) {
	p.mu.Lock()
	var zero T
	if p.h.Len() == 0 {
		p.mu.Unlock()
		return zero, false
	}
	v := heap.Pop(&p.h).(T)
	p.mu.Unlock()
	p.c.wakeProducers(1)
	return v, true
}

// Pop blocks until an element is popped, ctx is done, or the queue is both
// closed and empty.
func (p *PriorityQueue[T]) Pop(ctx context.Context) (T, coke.Status) {
	return p.pop(ctx, deadline.None())
}

// TryPopFor blocks until an element is popped, d elapses, ctx is done, or
// the queue is both closed and empty.
func (p *PriorityQueue[T]) TryPopFor(ctx context.Context, d time.Duration) (T, coke.Status) {
	return p.pop(ctx, deadline.After(d))
}

func (p *PriorityQueue[T]) pop(ctx context.Context, dl deadline.Helper) (T, coke.Status) {
	var zero T
	insertHead := false
	p.mu.Lock()
	for {
		if p.h.Len() > 0 {
			v := heap.Pop(&p.h).(T)
			p.mu.Unlock()
			p.c.wakeProducers(1)
			return v, coke.Success
		}
		if p.c.closed {
			p.mu.Unlock()
			return zero, coke.Closed
		}
		if dl.Expired() {
			p.mu.Unlock()
			return zero, coke.Timeout
		}

		st := waitSlot(ctx, &p.mu, p.c.consAddr(), dl, insertHead)
		insertHead = true
		if st == timer.WakeAborted {
			p.mu.Unlock()
			return zero, coke.Aborted
		}
	}
}

// TryPushRange pushes as many of items as fit without blocking, returning
// the count actually pushed.
func (p *PriorityQueue[T]) TryPushRange(items []T) int {
	p.mu.Lock()
	if p.c.closed {
		p.mu.Unlock()
		return 0
	}
	room := p.c.capacity - p.h.Len()
	if room <= 0 {
		p.mu.Unlock()
		return 0
	}
	n := len(items)
	if n > room {
		n = room
	}
	for _, v := range items[:n] {
		heap.Push(&p.h, v)
	}
	p.mu.Unlock()
	if n > 0 {
		p.c.wakeConsumers(n)
	}
	return n
}

// TryPopRange fills out with up to len(out) popped elements without
// blocking, greatest first, returning the count filled.
func (p *PriorityQueue[T]) TryPopRange(out []T) int {
	p.mu.Lock()
	n := len(out)
	if n > p.h.Len() {
		n = p.h.Len()
	}
	for i := 0; i < n; i++ {
		out[i] = heap.Pop(&p.h).(T)
	}
	p.mu.Unlock()
	if n > 0 {
		p.c.wakeProducers(n)
	}
	return n
}

// TryPopN pops up to n elements without blocking, greatest first,
// returning them along with the count.
func (p *PriorityQueue[T]) TryPopN(n int) ([]T, int) {
	p.mu.Lock()
	if n > p.h.Len() {
		n = p.h.Len()
	}
	out := make([]T, n)
	for i := 0; i < n; i++ {
		out[i] = heap.Pop(&p.h).(T)
	}
	p.mu.Unlock()
	if n > 0 {
		p.c.wakeProducers(n)
	}
	return out, n
}
