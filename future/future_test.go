package future

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	coke "github.com/kedixa/coke-go"
)

func TestFutureSetValue(t *testing.T) {
	p, f := NewPromise[int]()
	if f.Status() != NotSet {
		t.Fatalf("fresh future status = %v, want NotSet", f.Status())
	}
	if _, err := f.Get(); !errors.Is(err, coke.ErrFutureNotReady) {
		t.Fatalf("premature Get error = %v, want ErrFutureNotReady", err)
	}

	p.SetValue(42)
	if f.Status() != Ready {
		t.Fatalf("status = %v, want Ready", f.Status())
	}
	if v, err := f.Get(); err != nil || v != 42 {
		t.Fatalf("Get = (%d, %v), want (42, nil)", v, err)
	}
}

func TestFutureSetValueIsSingleShot(t *testing.T) {
	p, f := NewPromise[int]()
	p.SetValue(1)
	p.SetValue(2)
	p.SetException(errors.New("late"))
	p.Break()

	if v, err := f.Get(); err != nil || v != 1 {
		t.Fatalf("Get = (%d, %v), want the first SetValue to win", v, err)
	}
}

func TestFutureException(t *testing.T) {
	p, f := NewPromise[string]()
	boom := errors.New("boom")
	p.SetException(boom)

	if f.Status() != Exception {
		t.Fatalf("status = %v, want Exception", f.Status())
	}
	if _, err := f.Get(); !errors.Is(err, boom) {
		t.Fatalf("Get error = %v, want the exact error set", err)
	}
}

func TestFutureBroken(t *testing.T) {
	p, f := NewPromise[int]()
	p.Break()
	if f.Status() != Broken {
		t.Fatalf("status = %v, want Broken", f.Status())
	}
	if _, err := f.Get(); !errors.Is(err, coke.ErrPromiseBroken) {
		t.Fatalf("Get error = %v, want ErrPromiseBroken", err)
	}
}

// TestFutureWaitTiming sets the value 300ms in, checks that a 200ms
// WaitFor times out, and that a subsequent Wait sees Ready with the value
// intact.
func TestFutureWaitTiming(t *testing.T) {
	p, f := NewPromise[int]()
	go func() {
		time.Sleep(300 * time.Millisecond)
		p.SetValue(42)
	}()

	ctx := context.Background()
	if st := f.WaitFor(ctx, 200*time.Millisecond); st != coke.Timeout {
		t.Fatalf("WaitFor = %v, want Timeout", st)
	}
	if st := f.Wait(ctx); st != coke.Success {
		t.Fatalf("Wait = %v, want Success", st)
	}
	if f.Status() != Ready {
		t.Fatalf("status = %v, want Ready", f.Status())
	}
	if v, err := f.Get(); err != nil || v != 42 {
		t.Fatalf("Get = (%d, %v), want (42, nil)", v, err)
	}
}

func TestFutureWaitAbortsOnContext(t *testing.T) {
	_, f := NewPromise[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if st := f.Wait(ctx); st != coke.Aborted {
		t.Fatalf("Wait = %v, want Aborted", st)
	}
}

func TestFutureCallbackAfterCompletion(t *testing.T) {
	p, f := NewPromise[int]()
	p.SetValue(1)

	var fired int32
	f.SetCallback(func() { atomic.AddInt32(&fired, 1) })
	if atomic.LoadInt32(&fired) != 1 {
		t.Fatal("callback on an already-completed future did not run inline")
	}
}

func TestFutureCallbackOnCompletionThread(t *testing.T) {
	p, f := NewPromise[int]()

	fired := make(chan struct{})
	f.SetCallback(func() { close(fired) })

	go p.SetValue(5)
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("callback never fired after SetValue")
	}
}

func TestFutureRemoveCallback(t *testing.T) {
	p, f := NewPromise[int]()

	var fired int32
	f.SetCallback(func() { atomic.AddInt32(&fired, 1) })
	f.RemoveCallback()
	p.SetValue(1)

	time.Sleep(20 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 0 {
		t.Fatal("removed callback still fired")
	}

	// Removing after the fact is a harmless no-op.
	f.RemoveCallback()
}
