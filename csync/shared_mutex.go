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

type sharedMutexState int

const (
	smIdle sharedMutexState = iota
	smReading
	smWriting
)

// SharedMutex is a writer-preferring reader/writer lock, ported from
// coke's SharedTimedMutex (include/coke/shared_mutex.h, src/mutex.cpp). It
// reserves two disjoint marker fields so its reader cohort and its writer
// cohort wait on different registry keys — the Go analogue of the original
// keying its reader/writer waiters off `this+1`/`this+2`.
type SharedMutex struct {
	mu sync.Mutex

	state        sharedMutexState
	readingCount int
	readWaiting  int
	writeWaiting int

	rkey, wkey byte
}

// NewSharedMutex creates an unlocked SharedMutex.
func NewSharedMutex() *SharedMutex {
	return &SharedMutex{}
}

func (s *SharedMutex) rAddr() uint64 { return timer.AddrKey(unsafe.Pointer(&s.rkey)) }
func (s *SharedMutex) wAddr() uint64 { return timer.AddrKey(unsafe.Pointer(&s.wkey)) }

// canLockShared is the shared-admission predicate: readers may enter while
// the lock is idle or already reading AND no writer is waiting — shared
// acquisition is writer-preferring, so a pending writer blocks new readers
// even though it hasn't acquired yet. Caller must hold s.mu.
func (s *SharedMutex) canLockShared() bool {
	return (s.state == smIdle || s.state == smReading) && s.writeWaiting == 0
}

// TryLockShared acquires the lock in shared mode without blocking.
func (s *SharedMutex) TryLockShared() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.canLockShared() {
		s.state = smReading
		s.readingCount++
		return true
	}
	return false
}

// LockShared blocks until the lock is acquired in shared mode or ctx is done.
func (s *SharedMutex) LockShared(ctx context.Context) coke.Status {
	return s.lockShared(ctx, deadline.None())
}

// TryLockSharedFor blocks until the lock is acquired in shared mode, d
// elapses, or ctx is done.
func (s *SharedMutex) TryLockSharedFor(ctx context.Context, d time.Duration) coke.Status {
	return s.lockShared(ctx, deadline.After(d))
}

func (s *SharedMutex) lockShared(ctx context.Context, dl deadline.Helper) coke.Status {
	s.mu.Lock()
	if s.canLockShared() {
		s.state = smReading
		s.readingCount++
		s.mu.Unlock()
		return coke.Success
	}

	insertHead := false
	for {
		if dl.Expired() {
			if s.writeWaiting > 0 {
				// This reader's own exit may strand siblings that were
				// counting on the same broadcast cohort; wake them so
				// every remaining reader rechecks admission for itself.
				timer.AddrRegistry.Cancel(s.rAddr(), broadcastAll)
			}
			s.mu.Unlock()
			return coke.Timeout
		}

		w := timer.AddrRegistry.RegisterWait(s.rAddr(), dl, insertHead)
		s.readWaiting++
		insertHead = true
		s.mu.Unlock()

		st := w.WaitWake(ctx)

		s.mu.Lock()
		s.readWaiting--
		if s.canLockShared() {
			break
		}
		if st == timer.WakeAborted {
			s.mu.Unlock()
			return coke.Aborted
		}
	}

	s.state = smReading
	s.readingCount++
	s.mu.Unlock()
	return coke.Success
}

// TryLock acquires the lock in exclusive mode without blocking. It needs
// only an idle lock: unlike shared admission, an exclusive attempt does
// not yield to already-waiting writers.
func (s *SharedMutex) TryLock() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == smIdle {
		s.state = smWriting
		return true
	}
	return false
}

// Lock blocks until the lock is acquired in exclusive mode or ctx is done.
func (s *SharedMutex) Lock(ctx context.Context) coke.Status {
	return s.lock(ctx, deadline.None())
}

// TryLockFor blocks until the lock is acquired in exclusive mode, d
// elapses, or ctx is done.
func (s *SharedMutex) TryLockFor(ctx context.Context, d time.Duration) coke.Status {
	return s.lock(ctx, deadline.After(d))
}

func (s *SharedMutex) lock(ctx context.Context, dl deadline.Helper) coke.Status {
	s.mu.Lock()
	if s.state == smIdle && s.writeWaiting == 0 {
		s.state = smWriting
		s.mu.Unlock()
		return coke.Success
	}

	insertHead := false
	for {
		if dl.Expired() {
			s.wakeReadersIfUnpreferred()
			s.mu.Unlock()
			return coke.Timeout
		}

		w := timer.AddrRegistry.RegisterWait(s.wAddr(), dl, insertHead)
		s.writeWaiting++
		insertHead = true
		s.mu.Unlock()

		st := w.WaitWake(ctx)

		s.mu.Lock()
		s.writeWaiting--
		if s.state == smIdle {
			break
		}
		if st == timer.WakeAborted {
			s.wakeReadersIfUnpreferred()
			s.mu.Unlock()
			return coke.Aborted
		}
	}

	s.state = smWriting
	s.mu.Unlock()
	return coke.Success
}

// wakeReadersIfUnpreferred re-broadcasts to parked readers when the last
// waiting writer gives up: those readers were being held back purely by
// writer preference, and no future unlock will wake them if the lock is
// already free or shared. Caller must hold s.mu.
func (s *SharedMutex) wakeReadersIfUnpreferred() {
	if s.writeWaiting == 0 && s.readWaiting > 0 {
		timer.AddrRegistry.Cancel(s.rAddr(), broadcastAll)
	}
}

// Unlock releases an exclusive hold. If a writer is waiting, exactly one
// is woken; otherwise every waiting reader is woken, matching coke's
// writer-preferring unlock policy.
func (s *SharedMutex) Unlock() {
	s.mu.Lock()
	if s.state == smWriting {
		s.state = smIdle
		if s.writeWaiting > 0 {
			timer.AddrRegistry.Cancel(s.wAddr(), 1)
		} else if s.readWaiting > 0 {
			timer.AddrRegistry.Cancel(s.rAddr(), broadcastAll)
		}
	}
	s.mu.Unlock()
}

// UnlockShared releases one shared hold. Once the last reader leaves, one
// waiting writer (if any) is woken.
func (s *SharedMutex) UnlockShared() {
	s.mu.Lock()
	if s.state == smReading {
		s.readingCount--
		if s.readingCount == 0 {
			s.state = smIdle
			if s.writeWaiting > 0 {
				timer.AddrRegistry.Cancel(s.wAddr(), 1)
			}
		}
	}
	s.mu.Unlock()
}

// TryUpgrade atomically promotes a held shared lock to exclusive without
// ever releasing the slot in between. It succeeds only when the caller is
// provably the sole reader — coke's shared_mutex.h try_upgrade.
func (s *SharedMutex) TryUpgrade() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == smReading && s.readingCount == 1 {
		s.state = smWriting
		s.readingCount = 0
		return true
	}
	return false
}
