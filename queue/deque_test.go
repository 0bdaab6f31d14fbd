package queue

import (
	"context"
	"testing"
	"time"

	coke "github.com/kedixa/coke-go"
)

func TestDequeBothEnds(t *testing.T) {
	d := NewDeque[int](8)

	// Build 1 2 3 4 by alternating ends.
	d.TryPushBack(3)
	d.TryPushFront(2)
	d.TryPushBack(4)
	d.TryPushFront(1)

	if v, ok := d.TryPopFront(); !ok || v != 1 {
		t.Fatalf("TryPopFront = (%d, %v), want (1, true)", v, ok)
	}
	if v, ok := d.TryPopBack(); !ok || v != 4 {
		t.Fatalf("TryPopBack = (%d, %v), want (4, true)", v, ok)
	}
	if v, ok := d.TryPopFront(); !ok || v != 2 {
		t.Fatalf("TryPopFront = (%d, %v), want (2, true)", v, ok)
	}
	if v, ok := d.TryPopBack(); !ok || v != 3 {
		t.Fatalf("TryPopBack = (%d, %v), want (3, true)", v, ok)
	}
	if _, ok := d.TryPopFront(); ok {
		t.Fatal("TryPopFront succeeded on an empty deque")
	}
}

func TestDequeSharedCapacity(t *testing.T) {
	d := NewDeque[int](2)
	if !d.TryPushBack(1) || !d.TryPushFront(2) {
		t.Fatal("pushes within capacity failed")
	}
	if d.TryPushBack(3) || d.TryPushFront(3) {
		t.Fatal("push succeeded past shared capacity")
	}
	if !d.ForcePushBack(3) {
		t.Fatal("ForcePushBack failed")
	}
	if d.Len() != 3 {
		t.Fatalf("Len = %d, want 3", d.Len())
	}
}

func TestDequeBlockingWaits(t *testing.T) {
	d := NewDeque[int](1)
	ctx := context.Background()
	d.TryPushBack(1)

	done := make(chan coke.Status, 1)
	go func() {
		done <- d.PushFront(ctx, 0)
	}()
	select {
	case st := <-done:
		t.Fatalf("PushFront returned %v on a full deque", st)
	case <-time.After(30 * time.Millisecond):
	}

	if v, st := d.PopBack(ctx); st != coke.Success || v != 1 {
		t.Fatalf("PopBack = (%d, %v)", v, st)
	}
	if st := <-done; st != coke.Success {
		t.Fatalf("unblocked PushFront = %v", st)
	}
	if v, st := d.PopFront(ctx); st != coke.Success || v != 0 {
		t.Fatalf("PopFront = (%d, %v), want (0, Success)", v, st)
	}
}

func TestDequeTimedPopTimesOut(t *testing.T) {
	d := NewDeque[int](1)
	ctx := context.Background()
	if _, st := d.TryPopFrontFor(ctx, 20*time.Millisecond); st != coke.Timeout {
		t.Fatalf("TryPopFrontFor = %v, want Timeout", st)
	}
	if _, st := d.TryPopBackFor(ctx, 20*time.Millisecond); st != coke.Timeout {
		t.Fatalf("TryPopBackFor = %v, want Timeout", st)
	}
}

func TestDequeCloseDrains(t *testing.T) {
	d := NewDeque[int](4)
	d.TryPushBack(1)
	d.TryPushBack(2)
	d.Close()

	ctx := context.Background()
	if st := d.PushBack(ctx, 3); st != coke.Closed {
		t.Fatalf("PushBack on closed deque = %v, want Closed", st)
	}
	if v, st := d.PopFront(ctx); st != coke.Success || v != 1 {
		t.Fatalf("PopFront = (%d, %v), want (1, Success)", v, st)
	}
	if v, st := d.PopBack(ctx); st != coke.Success || v != 2 {
		t.Fatalf("PopBack = (%d, %v), want (2, Success)", v, st)
	}
	if _, st := d.PopFront(ctx); st != coke.Closed {
		t.Fatalf("PopFront on drained closed deque = %v, want Closed", st)
	}
}

func TestDequeRangeOperations(t *testing.T) {
	d := NewDeque[int](6)
	if n := d.TryPushBackRange([]int{3, 4}); n != 2 {
		t.Fatalf("TryPushBackRange pushed %d, want 2", n)
	}
	if n := d.TryPushFrontRange([]int{1, 2}); n != 2 {
		t.Fatalf("TryPushFrontRange pushed %d, want 2", n)
	}

	// Front-range push keeps item order: the deque now reads 1 2 3 4.
	out := make([]int, 3)
	if got := d.TryPopFrontRange(out); got != 3 || out[0] != 1 || out[1] != 2 || out[2] != 3 {
		t.Fatalf("TryPopFrontRange = (%v, %d), want ([1 2 3], 3)", out, got)
	}
	back := make([]int, 2)
	if got := d.TryPopBackRange(back); got != 1 || back[0] != 4 {
		t.Fatalf("TryPopBackRange = (%v, %d), want ([4 _], 1)", back, got)
	}
}
