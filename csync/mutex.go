package csync

import (
	"context"
	"time"

	coke "github.com/kedixa/coke-go"
)

// Mutex is a blocking, cancellable mutual exclusion lock built on a
// Semaphore with a single permit, exactly as coke's Mutex wraps a
// Semaphore{1} (include/coke/mutex.h).
type Mutex struct {
	sem *Semaphore
}

// NewMutex creates an unlocked Mutex.
func NewMutex() *Mutex {
	return &Mutex{sem: NewSemaphore(1)}
}

// TryLock attempts to acquire the lock without blocking.
func (m *Mutex) TryLock() bool {
	return m.sem.TryAcquire()
}

// Lock blocks until the lock is acquired or ctx is done.
func (m *Mutex) Lock(ctx context.Context) coke.Status {
	return m.sem.Acquire(ctx)
}

// TryLockFor blocks until the lock is acquired, d elapses, or ctx is done.
func (m *Mutex) TryLockFor(ctx context.Context, d time.Duration) coke.Status {
	return m.sem.TryAcquireFor(ctx, d)
}

// Unlock releases the lock. Unlocking a Mutex that is not held is caller
// error, exactly as in coke — use UniqueLock for an owner-tracking wrapper
// that reports this as ErrNotOwner instead.
func (m *Mutex) Unlock() {
	m.sem.Release(1)
}
