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

// Latch is a single-use countdown gate, ported from coke's TimedLatch
// (include/coke/latch.h): CountDown decrements a fixed initial count, and
// every waiter is woken, exactly once, the instant it reaches zero.
type Latch struct {
	mu    sync.Mutex
	count int
	key   byte
}

// NewLatch creates a Latch that releases its waiters once n CountDown
// calls (of total weight n) have been issued. n <= 0 starts already
// released.
func NewLatch(n int) *Latch {
	if n < 0 {
		n = 0
	}
	return &Latch{count: n}
}

func (l *Latch) addr() uint64 { return timer.AddrKey(unsafe.Pointer(&l.key)) }

// CountDown decrements the count by n (default meaning is n=1 in coke;
// here the caller passes it explicitly). Once the count reaches zero every
// current and future Wait/WaitFor call returns immediately; CountDown past
// zero has no further effect.
func (l *Latch) CountDown(n int) {
	if n <= 0 {
		return
	}
	l.mu.Lock()
	if l.count > 0 {
		l.count -= n
		if l.count < 0 {
			l.count = 0
		}
	}
	done := l.count == 0
	l.mu.Unlock()
	if done {
		timer.AddrRegistry.Cancel(l.addr(), broadcastAll)
	}
}

// TryWait reports whether the count has already reached zero.
func (l *Latch) TryWait() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count == 0
}

// Wait blocks until the count reaches zero or ctx is done.
func (l *Latch) Wait(ctx context.Context) coke.Status {
	return pollPredicate(ctx, l.addr(), deadline.None(), l.TryWait)
}

// WaitFor blocks until the count reaches zero, d elapses, or ctx is done.
func (l *Latch) WaitFor(ctx context.Context, d time.Duration) coke.Status {
	return pollPredicate(ctx, l.addr(), deadline.After(d), l.TryWait)
}
