package csync

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	coke "github.com/kedixa/coke-go"
)

func TestSemaphoreTryAcquire(t *testing.T) {
	s := NewSemaphore(2)
	if !s.TryAcquire() || !s.TryAcquire() {
		t.Fatal("expected two TryAcquire successes on Semaphore(2)")
	}
	if s.TryAcquire() {
		t.Fatal("TryAcquire succeeded with no permits left")
	}
	s.Release(1)
	if !s.TryAcquire() {
		t.Fatal("TryAcquire failed after Release")
	}
}

func TestSemaphoreAcquireBlocksUntilRelease(t *testing.T) {
	s := NewSemaphore(1)
	if !s.TryAcquire() {
		t.Fatal("initial TryAcquire failed")
	}

	done := make(chan coke.Status, 1)
	go func() {
		done <- s.Acquire(context.Background())
	}()

	select {
	case <-done:
		t.Fatal("Acquire returned while the permit was held")
	case <-time.After(30 * time.Millisecond):
	}

	s.Release(1)
	if st := <-done; st != coke.Success {
		t.Fatalf("Acquire returned %v, want Success", st)
	}
}

func TestSemaphoreTryAcquireForTimesOut(t *testing.T) {
	s := NewSemaphore(1)
	if !s.TryAcquire() {
		t.Fatal("initial TryAcquire failed")
	}

	start := time.Now()
	st := s.TryAcquireFor(context.Background(), 30*time.Millisecond)
	if st != coke.Timeout {
		t.Fatalf("got %v, want Timeout", st)
	}
	if time.Since(start) < 30*time.Millisecond {
		t.Fatal("TryAcquireFor returned before its deadline")
	}
}

func TestSemaphoreAcquireAbortsOnContext(t *testing.T) {
	s := NewSemaphore(1)
	if !s.TryAcquire() {
		t.Fatal("initial TryAcquire failed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan coke.Status, 1)
	go func() {
		done <- s.Acquire(ctx)
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	if st := <-done; st != coke.Aborted {
		t.Fatalf("got %v, want Aborted", st)
	}
}

// TestSemaphoreCycling runs 16 goroutines each doing 128 acquire/release
// cycles against a Semaphore(16) and checks that observed concurrency
// inside the held section never exceeds the permit count.
func TestSemaphoreCycling(t *testing.T) {
	const permits = 16
	const workers = 16
	const cycles = 128

	s := NewSemaphore(permits)
	var inside, maxSeen, total int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			ctx := context.Background()
			for j := 0; j < cycles; j++ {
				if st := s.Acquire(ctx); st != coke.Success {
					t.Errorf("Acquire returned %v", st)
					return
				}
				cur := atomic.AddInt64(&inside, 1)
				for {
					m := atomic.LoadInt64(&maxSeen)
					if cur <= m || atomic.CompareAndSwapInt64(&maxSeen, m, cur) {
						break
					}
				}
				atomic.AddInt64(&total, 1)
				time.Sleep(time.Microsecond)
				atomic.AddInt64(&inside, -1)
				s.Release(1)
			}
		}()
	}
	wg.Wait()

	if total != workers*cycles {
		t.Fatalf("total entries = %d, want %d", total, workers*cycles)
	}
	if m := atomic.LoadInt64(&maxSeen); m < 1 || m > permits {
		t.Fatalf("observed concurrency %d outside [1, %d]", m, permits)
	}
}

// TestSemaphoreNoStealWithWaiters checks the fairness policy: while
// waiters are registered, a fresh arrival queues behind them instead of
// grabbing a released permit directly.
func TestSemaphoreNoStealWithWaiters(t *testing.T) {
	s := NewSemaphore(1)
	if !s.TryAcquire() {
		t.Fatal("initial TryAcquire failed")
	}

	got := make(chan int, 2)
	var registered sync.WaitGroup
	registered.Add(1)
	go func() {
		registered.Done()
		if s.Acquire(context.Background()) == coke.Success {
			got <- 1
		}
	}()
	registered.Wait()
	time.Sleep(20 * time.Millisecond) // let the first waiter park

	go func() {
		if s.Acquire(context.Background()) == coke.Success {
			got <- 2
		}
	}()
	time.Sleep(20 * time.Millisecond)

	s.Release(1)
	if first := <-got; first != 1 {
		t.Fatalf("waiter %d won the permit, want the first-registered waiter", first)
	}
	s.Release(1)
	<-got
}
