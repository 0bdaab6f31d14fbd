package queue

import (
	"context"
	"sync"
	"time"

	"github.com/kedixa/coke-go/internal/deadline"
	"github.com/kedixa/coke-go/internal/timer"

	coke "github.com/kedixa/coke-go"
)

// Stack is a bounded, LIFO, concurrent stack, ported from coke's
// TimedStack (include/coke/stack.h). Its contract is identical to Queue's
// except Pop removes the most recently pushed element rather than the
// oldest.
type Stack[T any] struct {
	mu sync.Mutex
	c  core
	s  []T
}

// NewStack creates a Stack bounded to capacity elements. capacity must be
// at least 1.
func NewStack[T any](capacity int) *Stack[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Stack[T]{c: core{capacity: capacity}}
}

// Cap returns the stack's configured capacity.
func (s *Stack[T]) Cap() int { return s.c.capacity }

// Len returns the number of elements currently buffered.
func (s *Stack[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.s)
}

// Closed reports whether Close has been called.
func (s *Stack[T]) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.closed
}

// Close marks the stack closed and wakes every waiting producer and
// consumer.
func (s *Stack[T]) Close() {
	s.mu.Lock()
	already := s.c.closed
	s.c.closed = true
	s.mu.Unlock()
	if already {
		return
	}
	s.c.wakeProducers(broadcastAll)
	s.c.wakeConsumers(broadcastAll)
}

// TryPush pushes x without blocking. It fails if the stack is closed or at
// capacity.
func (s *Stack[T]) TryPush(x T) bool {
	s.mu.Lock()
	if s.c.closed || len(s.s) >= s.c.capacity {
		s.mu.Unlock()
		return false
	}
	s.s = append(s.s, x)
	s.mu.Unlock()
	s.c.wakeConsumers(1)
	return true
}

// ForcePush pushes x even past capacity; it never blocks and fails only
// when the stack is closed.
func (s *Stack[T]) ForcePush(x T) bool {
	s.mu.Lock()
	if s.c.closed {
		s.mu.Unlock()
		return false
	}
	s.s = append(s.s, x)
	s.mu.Unlock()
	s.c.wakeConsumers(1)
	return true
}

// Push blocks until x is pushed, the stack is closed, or ctx is done.
func (s *Stack[T]) Push(ctx context.Context, x T) coke.Status {
	return s.push(ctx, x, deadline.None())
}

// TryPushFor blocks until x is pushed, d elapses, the stack is closed, or
// ctx is done.
func (s *Stack[T]) TryPushFor(ctx context.Context, d time.Duration, x T) coke.Status {
	return s.push(ctx, x, deadline.After(d))
}

func (s *Stack[T]) push(ctx context.Context, x T, dl deadline.Helper) coke.Status {
	insertHead := false
	s.mu.Lock()
	for {
		if s.c.closed {
			s.mu.Unlock()
			return coke.Closed
		}
		if len(s.s) < s.c.capacity {
			s.s = append(s.s, x)
			s.mu.Unlock()
			s.c.wakeConsumers(1)
			return coke.Success
		}
		if dl.Expired() {
			s.mu.Unlock()
			return coke.Timeout
		}

		st := waitSlot(ctx, &s.mu, s.c.prodAddr(), dl, insertHead)
		insertHead = true
		if st == timer.WakeAborted {
			s.mu.Unlock()
			return coke.Aborted
		}
	}
}

// TryPop pops the most recently pushed element without blocking. It fails
// only if the stack is currently empty.
func (s *Stack[T]) TryPop() (T, bool) {
	s.mu.Lock()
	var zero T
	n := len(s.s)
	if n == 0 {
		s.mu.Unlock()
		return zero, false
	}
	v := s.s[n-1]
	s.s = s.s[:n-1]
	s.mu.Unlock()
	s.c.wakeProducers(1)
	return v, true
}

// Pop blocks until an element is popped, ctx is done, or the stack is both
// closed and empty.
func (s *Stack[T]) Pop(ctx context.Context) (T, coke.Status) {
	return s.pop(ctx, deadline.None())
}

// TryPopFor blocks until an element is popped, d elapses, ctx is done, or
// the stack is both closed and empty.
func (s *Stack[T]) TryPopFor(ctx context.Context, d time.Duration) (T, coke.Status) {
	return s.pop(ctx, deadline.After(d))
}

func (s *Stack[T]) pop(ctx context.Context, dl deadline.Helper) (T, coke.Status) {
	var zero T
	insertHead := false
	s.mu.Lock()
	for {
		if n := len(s.s); n > 0 {
			v := s.s[n-1]
			s.s = s.s[:n-1]
			s.mu.Unlock()
			s.c.wakeProducers(1)
			return v, coke.Success
		}
		if s.c.closed {
			s.mu.Unlock()
			return zero, coke.Closed
		}
		if dl.Expired() {
			s.mu.Unlock()
			return zero, coke.Timeout
		}

		st := waitSlot(ctx, &s.mu, s.c.consAddr(), dl, insertHead)
		insertHead = true
		if st == timer.WakeAborted {
			s.mu.Unlock()
			return zero, coke.Aborted
		}
	}
}

// TryPushRange pushes as many of items as fit without blocking, in order,
// returning the count actually pushed.
func (s *Stack[T]) TryPushRange(items []T) int {
	s.mu.Lock()
	if s.c.closed {
		s.mu.Unlock()
		return 0
	}
	room := s.c.capacity - len(s.s)
	if room <= 0 {
		s.mu.Unlock()
		return 0
	}
	n := len(items)
	if n > room {
		n = room
	}
	s.s = append(s.s, items[:n]...)
	s.mu.Unlock()
	if n > 0 {
		s.c.wakeConsumers(n)
	}
	return n
}

// TryPopRange fills out with up to len(out) popped elements without
// blocking, most recently pushed first, returning the count filled.
func (s *Stack[T]) TryPopRange(out []T) int {
	s.mu.Lock()
	n := len(out)
	if n > len(s.s) {
		n = len(s.s)
	}
	for i := 0; i < n; i++ {
		out[i] = s.s[len(s.s)-1]
		s.s = s.s[:len(s.s)-1]
	}
	s.mu.Unlock()
	if n > 0 {
		s.c.wakeProducers(n)
	}
	return n
}

// TryPopN pops up to n elements without blocking, most recently pushed
// first, returning them along with the count.
func (s *Stack[T]) TryPopN(n int) ([]T, int) {
	s.mu.Lock()
	if n > len(s.s) {
		n = len(s.s)
	}
	out := make([]T, n)
	for i := 0; i < n; i++ {
		out[i] = s.s[len(s.s)-1]
		s.s = s.s[:len(s.s)-1]
	}
	s.mu.Unlock()
	if n > 0 {
		s.c.wakeProducers(n)
	}
	return out, n
}
