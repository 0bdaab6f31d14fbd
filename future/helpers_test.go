package future

import (
	"context"
	"errors"
	"testing"
	"time"

	coke "github.com/kedixa/coke-go"
)

func TestCreateFutureFeedsPromise(t *testing.T) {
	ctx := context.Background()
	f := CreateFuture(ctx, coke.MakeTask(func(ctx context.Context) (int, error) {
		return 7, nil
	}))

	if st := f.Wait(ctx); st != coke.Success {
		t.Fatalf("Wait = %v", st)
	}
	if v, err := f.Get(); err != nil || v != 7 {
		t.Fatalf("Get = (%d, %v), want (7, nil)", v, err)
	}
}

func TestCreateFutureCapturesError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	f := CreateFuture(ctx, coke.MakeTask(func(ctx context.Context) (int, error) {
		return 0, boom
	}))

	f.Wait(ctx)
	if f.Status() != Exception {
		t.Fatalf("status = %v, want Exception", f.Status())
	}
	if _, err := f.Get(); !errors.Is(err, boom) {
		t.Fatalf("Get error = %v, want the task's error", err)
	}
}

func TestWaitFuturesAnyK(t *testing.T) {
	ctx := context.Background()

	promises := make([]*Promise[int], 3)
	futures := make([]*Future[int], 3)
	for i := range promises {
		promises[i], futures[i] = NewPromise[int]()
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		promises[1].SetValue(1)
		time.Sleep(20 * time.Millisecond)
		promises[2].SetValue(2)
	}()

	// k=2 completes once any two have settled, without promises[0].
	if st := WaitFutures(ctx, futures, 2); st != coke.Success {
		t.Fatalf("WaitFutures = %v, want Success", st)
	}
	if futures[0].Status() != NotSet {
		t.Fatal("the untouched future settled unexpectedly")
	}
	promises[0].Break()
}

func TestWaitFuturesCountsAlreadySettled(t *testing.T) {
	ctx := context.Background()
	p1, f1 := NewPromise[int]()
	p2, f2 := NewPromise[int]()
	p1.SetValue(1)
	p2.Break() // Broken also counts as settled.

	if st := WaitFutures(ctx, []*Future[int]{f1, f2}, 2); st != coke.Success {
		t.Fatalf("WaitFutures = %v, want Success", st)
	}
}

func TestWaitFuturesZeroK(t *testing.T) {
	if st := WaitFutures[int](context.Background(), nil, 0); st != coke.Success {
		t.Fatalf("WaitFutures(k=0) = %v, want Success", st)
	}
}

func TestWaitFuturesAbortsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	_, f := NewPromise[int]()
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	if st := WaitFutures(ctx, []*Future[int]{f}, 1); st != coke.Aborted {
		t.Fatalf("WaitFutures = %v, want Aborted", st)
	}
}
