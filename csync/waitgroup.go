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

// WaitGroup is a reusable countdown gate whose count can grow, ported from
// coke's TimedWaitGroup (include/coke/wait_group.h): unlike Latch, Add may
// raise the count again after it has reached zero, and every waiter parked
// across such a cycle simply rechecks and goes back to sleep.
type WaitGroup struct {
	mu    sync.Mutex
	count int
	key   byte
}

// NewWaitGroup creates an empty WaitGroup.
func NewWaitGroup() *WaitGroup {
	return &WaitGroup{}
}

func (w *WaitGroup) addr() uint64 { return timer.AddrKey(unsafe.Pointer(&w.key)) }

// Add changes the count by n, which may be negative. Driving the counter
// below zero is a programmer error and panics, mirroring the same
// invariant sync.WaitGroup itself enforces.
func (w *WaitGroup) Add(n int) {
	w.mu.Lock()
	w.count += n
	c := w.count
	w.mu.Unlock()

	if c < 0 {
		panic("csync: negative WaitGroup counter")
	}
	if c == 0 && n != 0 {
		timer.AddrRegistry.Cancel(w.addr(), broadcastAll)
	}
}

// Done decrements the count by one, coke's wait_group.h count_down().
func (w *WaitGroup) Done() {
	w.Add(-1)
}

// TryWait reports whether the count is currently zero.
func (w *WaitGroup) TryWait() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count == 0
}

// Wait blocks until the count reaches zero or ctx is done.
func (w *WaitGroup) Wait(ctx context.Context) coke.Status {
	return pollPredicate(ctx, w.addr(), deadline.None(), w.TryWait)
}

// WaitFor blocks until the count reaches zero, d elapses, or ctx is done.
func (w *WaitGroup) WaitFor(ctx context.Context, d time.Duration) coke.Status {
	return pollPredicate(ctx, w.addr(), deadline.After(d), w.TryWait)
}
