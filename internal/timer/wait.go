package timer

import (
	"context"

	"github.com/kedixa/coke-go/internal/deadline"
)

// WakeStatus is the 3-way resolved outcome of a deadline-aware wait against
// a Registry. It folds a raw sleep Status into the shape every blocking
// primitive built on this registry actually needs: a natural registry fire
// on a *finite* sleep means the caller's own deadline elapsed, i.e. a
// Timeout, not a "success" — an infinite sleep can only ever be woken by a
// Cancel.
type WakeStatus int

const (
	// WakeWoken means a concurrent Cancel woke this wait — the caller must
	// recheck its own predicate, since the wake may be spurious or meant
	// for another waiter entirely.
	WakeWoken WakeStatus = iota
	// WakeTimeout means the registered deadline elapsed before any Cancel
	// arrived.
	WakeTimeout
	// WakeAborted means the wait's context.Context was done first.
	WakeAborted
)

// WakeWaiter is a Waiter registered through RegisterWait; WaitWake resolves
// it into a WakeStatus.
type WakeWaiter struct {
	w      *Waiter
	finite bool
}

// RegisterWait registers a waiter under key whose lifetime is bounded by
// dl, dispatching to a finite or infinite sleep depending on whether dl
// carries a deadline. Callers are expected to have rejected an
// already-expired dl before registering. This plus WaitWake is the one
// retry-loop primitive every csync and queue blocking operation is built
// from; registration is cheap enough to happen under the caller's own
// state lock, which is what makes the wakeup race-free.
func (r *Registry) RegisterWait(key uint64, dl deadline.Helper, insertHead bool) *WakeWaiter {
	if dl.Infinite() {
		return &WakeWaiter{w: r.RegisterInfinite(key, insertHead)}
	}
	return &WakeWaiter{w: r.Register(key, dl.Remaining(), insertHead), finite: true}
}

// Abandon withdraws the registration without blocking, used when the
// caller's predicate turned true between registering and blocking.
func (ww *WakeWaiter) Abandon() {
	ww.w.Abandon()
}

// WaitWake blocks until a Cancel wakes this waiter, its deadline elapses,
// or ctx is done.
func (ww *WakeWaiter) WaitWake(ctx context.Context) WakeStatus {
	switch ww.w.Block(ctx) {
	case StatusAborted:
		return WakeAborted
	case StatusCanceled:
		return WakeWoken
	default:
		if ww.finite {
			// The timer itself fired: the deadline passed.
			return WakeTimeout
		}
		return WakeWoken
	}
}

// Wait blocks on key until a Cancel wakes it, dl's deadline elapses, or
// ctx is done, in one shot. Blocking primitives that need to register
// under their own lock use RegisterWait/WaitWake instead.
func (r *Registry) Wait(ctx context.Context, key uint64, dl deadline.Helper, insertHead bool) WakeStatus {
	if !dl.Infinite() && dl.Remaining() <= 0 {
		return WakeTimeout
	}
	return r.RegisterWait(key, dl, insertHead).WaitWake(ctx)
}
