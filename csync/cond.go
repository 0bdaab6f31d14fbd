package csync

import (
	"context"
	"time"
	"unsafe"

	"github.com/kedixa/coke-go/internal/deadline"
	"github.com/kedixa/coke-go/internal/timer"

	coke "github.com/kedixa/coke-go"
)

// Locker is the scoped-lock surface Cond.Wait needs: release it while
// parked, reacquire it before re-checking the predicate. *Mutex already
// satisfies this exactly, the same way std::unique_lock<std::mutex> does
// for coke's condition variable.
type Locker interface {
	Lock(ctx context.Context) coke.Status
	Unlock()
}

// Cond is a condition variable keyed by its own address, ported from
// coke's TimedCondition (include/coke/condition.h). It carries no lock of
// its own — callers pass whichever Locker guards the predicate it waits
// on, exactly like sync.Cond.
type Cond struct {
	key byte
}

// NewCond creates a Cond.
func NewCond() *Cond {
	return &Cond{}
}

func (c *Cond) addr() uint64 { return timer.AddrKey(unsafe.Pointer(&c.key)) }

// Wait releases l, blocks until NotifyOne/NotifyAll wakes it or ctx is
// done, then reacquires l before returning. It loops internally: a wakeup
// that leaves pred unsatisfied is treated as spurious. The waiter
// registers with the registry before releasing l, so a notify issued the
// instant l is dropped still lands. The predicate is always evaluated
// with l held.
func (c *Cond) Wait(ctx context.Context, l Locker, pred func() bool) coke.Status {
	return c.wait(ctx, l, deadline.None(), pred)
}

// WaitFor is Wait with a deadline shared across every spurious-wakeup
// iteration, matching coke's wait_for(lock, timeout, pred): the timeout
// counts down across the whole call, not per-iteration.
func (c *Cond) WaitFor(ctx context.Context, l Locker, d time.Duration, pred func() bool) coke.Status {
	return c.wait(ctx, l, deadline.After(d), pred)
}

func (c *Cond) wait(ctx context.Context, l Locker, dl deadline.Helper, pred func() bool) coke.Status {
	for !pred() {
		if dl.Expired() {
			return coke.Timeout
		}

		w := timer.AddrRegistry.RegisterWait(c.addr(), dl, false)
		l.Unlock()
		st := w.WaitWake(ctx)
		if relock := l.Lock(ctx); relock != coke.Success {
			return relock
		}
		if st == timer.WakeAborted {
			return coke.Aborted
		}
	}
	return coke.Success
}

// NotifyOne wakes the single oldest waiter, coke's notify_one.
func (c *Cond) NotifyOne() {
	timer.AddrRegistry.Cancel(c.addr(), 1)
}

// NotifyAll wakes every currently registered waiter, coke's notify_all.
// The caller is not required to hold the associated lock around either
// Notify call.
func (c *Cond) NotifyAll() {
	timer.AddrRegistry.Cancel(c.addr(), broadcastAll)
}
