package csync

import (
	"context"
	"testing"
	"time"

	coke "github.com/kedixa/coke-go"
)

func TestStopTokenRequestStop(t *testing.T) {
	st := NewStopToken(1)

	done := make(chan coke.Status, 1)
	go func() {
		done <- st.WaitStop(context.Background())
	}()
	time.Sleep(20 * time.Millisecond)

	st.RequestStop()
	if got := <-done; got != coke.Success {
		t.Fatalf("WaitStop returned %v, want Success", got)
	}

	// Once RequestStop has returned, subsequent waits must not sleep.
	start := time.Now()
	if got := st.WaitStopFor(context.Background(), time.Second); got != coke.Success {
		t.Fatalf("WaitStopFor returned %v, want Success", got)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("WaitStopFor slept after stop was already requested")
	}
}

func TestStopTokenWaitStopForTimesOut(t *testing.T) {
	st := NewStopToken(1)
	if got := st.WaitStopFor(context.Background(), 20*time.Millisecond); got != coke.Timeout {
		t.Fatalf("got %v, want Timeout", got)
	}
}

func TestStopTokenFinish(t *testing.T) {
	const workers = 3
	st := NewStopToken(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer st.FinishGuard()()
			st.WaitStop(context.Background())
		}()
	}

	if st.Finished() {
		t.Fatal("Finished true before any worker exited")
	}
	st.RequestStop()
	if got := st.WaitFinishFor(context.Background(), 5*time.Second); got != coke.Success {
		t.Fatalf("WaitFinish returned %v, want Success", got)
	}
	if !st.Finished() {
		t.Fatal("Finished false after every worker exited")
	}
}

func TestStopTokenFinishGuardIdempotent(t *testing.T) {
	st := NewStopToken(2)
	guard := st.FinishGuard()
	guard()
	guard() // second call must not double-count
	if st.Finished() {
		t.Fatal("one worker's repeated guard calls drained the counter")
	}
	st.SetFinished(1)
	if !st.Finished() {
		t.Fatal("counter not drained after the second worker finished")
	}
}

func TestStopTokenReset(t *testing.T) {
	st := NewStopToken(1)
	st.RequestStop()
	st.SetFinished(1)

	st.Reset(1)
	if st.StopRequested() {
		t.Fatal("StopRequested true after Reset")
	}
	if st.Finished() {
		t.Fatal("Finished true after Reset(1)")
	}
	st.RequestStop()
	if !st.StopRequested() {
		t.Fatal("StopRequested false after a post-Reset RequestStop")
	}
}
