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

// StopToken combines two independent predicates behind disjoint registry
// keys, ported from coke's TimedStopToken (include/coke/stop_token.h): a
// one-shot "stop requested" flag, and a countdown of outstanding workers
// that must call SetFinished before a shutdown can be declared complete.
type StopToken struct {
	mu            sync.Mutex
	stopRequested bool
	finishCount   int

	stopKey, finishKey byte
}

// NewStopToken creates a StopToken whose finish counter starts at n —
// typically the number of workers that must each call SetFinished(1)
// before WaitFinish unblocks.
func NewStopToken(n int) *StopToken {
	if n < 0 {
		n = 0
	}
	return &StopToken{finishCount: n}
}

func (s *StopToken) stopAddr() uint64   { return timer.AddrKey(unsafe.Pointer(&s.stopKey)) }
func (s *StopToken) finishAddr() uint64 { return timer.AddrKey(unsafe.Pointer(&s.finishKey)) }

// RequestStop sets the stop flag, if it is not already set, and wakes
// every current WaitStop/WaitStopFor caller.
func (s *StopToken) RequestStop() {
	s.mu.Lock()
	already := s.stopRequested
	s.stopRequested = true
	s.mu.Unlock()
	if !already {
		timer.AddrRegistry.Cancel(s.stopAddr(), broadcastAll)
	}
}

// StopRequested reports whether RequestStop has been called.
func (s *StopToken) StopRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopRequested
}

// WaitStop blocks until RequestStop is called or ctx is done. Once
// RequestStop has returned, every subsequent call returns immediately
// without sleeping.
func (s *StopToken) WaitStop(ctx context.Context) coke.Status {
	return pollPredicate(ctx, s.stopAddr(), deadline.None(), s.StopRequested)
}

// WaitStopFor blocks until RequestStop is called, d elapses, or ctx is done.
func (s *StopToken) WaitStopFor(ctx context.Context, d time.Duration) coke.Status {
	return pollPredicate(ctx, s.stopAddr(), deadline.After(d), s.StopRequested)
}

// SetFinished decrements the finish counter by n. Once it reaches zero,
// every WaitFinish/WaitFinishFor caller is woken.
func (s *StopToken) SetFinished(n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	if s.finishCount > 0 {
		s.finishCount -= n
		if s.finishCount < 0 {
			s.finishCount = 0
		}
	}
	done := s.finishCount == 0
	s.mu.Unlock()
	if done {
		timer.AddrRegistry.Cancel(s.finishAddr(), broadcastAll)
	}
}

// Finished reports whether the finish counter has reached zero.
func (s *StopToken) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finishCount == 0
}

// WaitFinish blocks until the finish counter reaches zero or ctx is done.
func (s *StopToken) WaitFinish(ctx context.Context) coke.Status {
	return pollPredicate(ctx, s.finishAddr(), deadline.None(), s.Finished)
}

// WaitFinishFor blocks until the finish counter reaches zero, d elapses,
// or ctx is done.
func (s *StopToken) WaitFinishFor(ctx context.Context, d time.Duration) coke.Status {
	return pollPredicate(ctx, s.finishAddr(), deadline.After(d), s.Finished)
}

// Reset reinitializes the token for reuse after a prior stop/finish
// cycle has completed, for a worker pool that cycles through repeated
// shutdown/restart rounds — stop_token.h's reset.
func (s *StopToken) Reset(n int) {
	if n < 0 {
		n = 0
	}
	s.mu.Lock()
	s.stopRequested = false
	s.finishCount = n
	s.mu.Unlock()
}

// FinishGuard returns a closer that calls SetFinished(1) exactly once, no
// matter how many times it is invoked — meant to be deferred at the top of
// a worker's run loop so every exit path (normal return or panic unwind)
// reports completion, coke's FinishGuard scoped helper.
func (s *StopToken) FinishGuard() func() {
	var once sync.Once
	return func() {
		once.Do(func() { s.SetFinished(1) })
	}
}
