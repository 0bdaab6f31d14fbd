package coke

import "errors"

// Sentinel errors returned by the synchronization primitives and
// containers, mirroring the std::system_error conditions coke's UniqueLock
// and SharedLock throw (include/coke/mutex.h, include/coke/shared_mutex.h).
var (
	// ErrDeadlock is returned by a scoped lock's Lock/TryLock methods when
	// the lock is already held by the same owner (std::errc::resource_deadlock_would_occur).
	ErrDeadlock = errors.New("coke: lock already held")

	// ErrNotOwner is returned by a scoped lock's Unlock when it does not
	// currently hold the lock (std::errc::operation_not_permitted).
	ErrNotOwner = errors.New("coke: unlock of a lock not held")

	// ErrFutureNotReady is returned by Future.Get when the future's
	// promise has not yet been fulfilled.
	ErrFutureNotReady = errors.New("coke: future is not ready")

	// ErrPromiseBroken is returned by Future.Get when the corresponding
	// Promise was explicitly broken (Promise.Break) without a value ever
	// being set.
	ErrPromiseBroken = errors.New("coke: promise broken")

	// ErrContainerClosed names the closed-container condition. The
	// Queue/Stack/PriorityQueue/Deque operations do not return it: they
	// report a closed container with the Closed status or a false result.
	ErrContainerClosed = errors.New("coke: container closed")
)
