// Package csync is coke-go's time-aware synchronization primitive family —
// Semaphore, Mutex, SharedMutex, Cond, Latch, WaitGroup, StopToken — ported
// from coke's semaphore.h/mutex.h/shared_mutex.h/wait_group.h/stop_token.h.
// It is named csync, not sync, purely to avoid shadowing the standard
// library package that every file here also imports for its plain mutexes.
//
// Every primitive here follows the same shape coke's originals do: a
// plain, non-blocking predicate check guarded by an ordinary mutex, and a
// retry loop around internal/timer.AddrRegistry for the blocking case —
// `for !predicate() { sleep(addr) }`, woken by whichever state change makes
// the predicate true calling Cancel on that same address. A wakeup that
// turns out not to satisfy the predicate (a spurious StatusCanceled) is not
// a failure; the loop simply rechecks and, if still unsatisfied, goes back
// to sleep.
package csync

import (
	"context"

	"github.com/kedixa/coke-go/internal/deadline"
	"github.com/kedixa/coke-go/internal/timer"

	coke "github.com/kedixa/coke-go"
)

// broadcastAll is an n large enough that Registry.Cancel(key, broadcastAll)
// always empties key's entire wait list, the Go shape of coke's
// cancel_sleep(key, (size_t)-1) "cancel everyone" idiom (notify_all,
// request_stop, Latch/WaitGroup reaching zero).
const broadcastAll = 1 << 30

// pollPredicate retries pred in a loop, sleeping on key between attempts,
// until pred is satisfied, dl's deadline elapses, or ctx is done. This is
// the "cooperative-loop-as-condition-variable" shape every predicate-based
// primitive here shares: Latch, WaitGroup, and StopToken's wait methods are
// all exactly this loop around a different pred/key pair.
//
// The waiter registers before the final predicate check, so a broadcast
// fired between "pred observed false" and "asleep" still lands: either the
// recheck sees the new state and the registration is abandoned, or the
// broadcast's Cancel finds the registration and wakes it.
func pollPredicate(ctx context.Context, key uint64, dl deadline.Helper, pred func() bool) coke.Status {
	for {
		if pred() {
			return coke.Success
		}
		if dl.Expired() {
			return coke.Timeout
		}
		w := timer.AddrRegistry.RegisterWait(key, dl, false)
		if pred() {
			w.Abandon()
			return coke.Success
		}
		switch w.WaitWake(ctx) {
		case timer.WakeWoken, timer.WakeTimeout:
			continue
		default:
			return coke.Aborted
		}
	}
}
