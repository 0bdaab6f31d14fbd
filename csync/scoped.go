package csync

import (
	"context"
	"sync"

	coke "github.com/kedixa/coke-go"
)

// Lockable is the exclusive-lock surface UniqueLock manages. *Mutex and
// *SharedMutex (its exclusive side) both satisfy it.
type Lockable interface {
	TryLock() bool
	Lock(ctx context.Context) coke.Status
	Unlock()
}

// UniqueLock is a scoped, owner-tracking wrapper over a Lockable, ported
// from coke's UniqueLock<Mutex> (include/coke/mutex.h). Unlike the
// underlying lock, it refuses to double-lock or double-unlock silently:
// both report an error instead of corrupting the underlying primitive's
// state, the conditions coke's UniqueLock reports as
// resource_deadlock_would_occur and operation_not_permitted.
type UniqueLock struct {
	mu   sync.Mutex
	l    Lockable
	held bool
}

// NewUniqueLock wraps l in an unlocked UniqueLock.
func NewUniqueLock(l Lockable) *UniqueLock {
	return &UniqueLock{l: l}
}

// TryLock acquires the lock without blocking. It reports ErrDeadlock if
// this UniqueLock already holds it.
func (u *UniqueLock) TryLock() (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.held {
		return false, coke.ErrDeadlock
	}
	if u.l.TryLock() {
		u.held = true
		return true, nil
	}
	return false, nil
}

// Lock blocks until the lock is acquired or ctx is done. It reports
// ErrDeadlock, without blocking, if this UniqueLock already holds it.
func (u *UniqueLock) Lock(ctx context.Context) (coke.Status, error) {
	u.mu.Lock()
	if u.held {
		u.mu.Unlock()
		return coke.Success, coke.ErrDeadlock
	}
	u.mu.Unlock()

	st := u.l.Lock(ctx)
	if st == coke.Success {
		u.mu.Lock()
		u.held = true
		u.mu.Unlock()
	}
	return st, nil
}

// Unlock releases the lock. It reports ErrNotOwner if this UniqueLock does
// not currently hold it, and leaves the underlying lock untouched in that
// case.
func (u *UniqueLock) Unlock() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.held {
		return coke.ErrNotOwner
	}
	u.held = false
	u.l.Unlock()
	return nil
}

// Held reports whether this UniqueLock currently holds its underlying lock.
func (u *UniqueLock) Held() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.held
}

// SharedLocker is the shared-mode surface SharedLock manages; *SharedMutex
// satisfies it.
type SharedLocker interface {
	TryLockShared() bool
	LockShared(ctx context.Context) coke.Status
	UnlockShared()
}

// SharedLock is SharedMutex's shared-mode counterpart to UniqueLock, ported
// from coke's SharedLock<SharedMutex>.
type SharedLock struct {
	mu   sync.Mutex
	l    SharedLocker
	held bool
}

// NewSharedLock wraps l in an unlocked SharedLock.
func NewSharedLock(l SharedLocker) *SharedLock {
	return &SharedLock{l: l}
}

// TryLock acquires the lock in shared mode without blocking. It reports
// ErrDeadlock if this SharedLock already holds it.
func (u *SharedLock) TryLock() (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.held {
		return false, coke.ErrDeadlock
	}
	if u.l.TryLockShared() {
		u.held = true
		return true, nil
	}
	return false, nil
}

// Lock blocks until the lock is acquired in shared mode or ctx is done. It
// reports ErrDeadlock, without blocking, if already held.
func (u *SharedLock) Lock(ctx context.Context) (coke.Status, error) {
	u.mu.Lock()
	if u.held {
		u.mu.Unlock()
		return coke.Success, coke.ErrDeadlock
	}
	u.mu.Unlock()

	st := u.l.LockShared(ctx)
	if st == coke.Success {
		u.mu.Lock()
		u.held = true
		u.mu.Unlock()
	}
	return st, nil
}

// Unlock releases the lock. It reports ErrNotOwner if this SharedLock does
// not currently hold it.
func (u *SharedLock) Unlock() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.held {
		return coke.ErrNotOwner
	}
	u.held = false
	u.l.UnlockShared()
	return nil
}

// Held reports whether this SharedLock currently holds its underlying lock.
func (u *SharedLock) Held() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.held
}
