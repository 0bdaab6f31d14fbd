package csync

import (
	"context"
	"sync"
	"time"
	"unsafe"

	"github.com/kedixa/coke-go/internal/deadline"
	"github.com/kedixa/coke-go/internal/timer"

	coke "github.com/kedixa/coke-go"
)

// Semaphore is a counting semaphore, ported from coke's TimedSemaphore
// (include/coke/semaphore.h, src/mutex.cpp). Its wait key is derived from
// the address of a dedicated marker field.
type Semaphore struct {
	mu      sync.Mutex
	count   int
	waiting int
	key     byte
}

// NewSemaphore creates a Semaphore initialized to n.
func NewSemaphore(n int) *Semaphore {
	return &Semaphore{count: n}
}

func (s *Semaphore) addr() uint64 {
	return timer.AddrKey(unsafe.Pointer(&s.key))
}

// TryAcquire acquires one permit without blocking, reporting whether it
// succeeded.
func (s *Semaphore) TryAcquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.count > 0 {
		s.count--
		return true
	}
	return false
}

// Acquire blocks until a permit is available or ctx is done.
func (s *Semaphore) Acquire(ctx context.Context) coke.Status {
	return s.acquire(ctx, deadline.None())
}

// TryAcquireFor blocks until a permit is available, d elapses, or ctx is
// done, whichever happens first.
func (s *Semaphore) TryAcquireFor(ctx context.Context, d time.Duration) coke.Status {
	return s.acquire(ctx, deadline.After(d))
}

// acquire follows TimedSemaphore::acquire_impl: a fresh arrival takes a
// permit directly only while there are more permits than registered
// waiters; otherwise it joins the wait list and keeps its place across
// spurious wakeups by re-registering at the head of the FIFO.
func (s *Semaphore) acquire(ctx context.Context, dl deadline.Helper) coke.Status {
	s.mu.Lock()
	if s.waiting < s.count {
		s.count--
		s.mu.Unlock()
		return coke.Success
	}

	insertHead := false
	for {
		if dl.Expired() {
			s.mu.Unlock()
			return coke.Timeout
		}

		w := timer.AddrRegistry.RegisterWait(s.addr(), dl, insertHead)
		s.waiting++
		insertHead = true
		s.mu.Unlock()

		st := w.WaitWake(ctx)

		s.mu.Lock()
		s.waiting--
		if s.count > 0 {
			break
		}
		if st == timer.WakeAborted {
			s.mu.Unlock()
			return coke.Aborted
		}
	}

	s.count--
	s.mu.Unlock()
	return coke.Success
}

// Release returns cnt permits to the semaphore and wakes up to cnt blocked
// acquirers to recheck, coke's TimedSemaphore::release.
func (s *Semaphore) Release(cnt int) {
	if cnt <= 0 {
		return
	}
	s.mu.Lock()
	s.count += cnt
	wake := s.waiting
	if wake > cnt {
		wake = cnt
	}
	if wake > 0 {
		timer.AddrRegistry.Cancel(s.addr(), wake)
	}
	s.mu.Unlock()
}
