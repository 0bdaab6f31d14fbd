package queue

import (
	"context"
	"sort"
	"testing"
	"time"

	coke "github.com/kedixa/coke-go"
)

func intLess(a, b int) bool { return a < b }

func TestPriorityQueuePopsGreatestFirst(t *testing.T) {
	p := NewPriorityQueue[int](16, intLess)
	input := []int{3, 1, 4, 1, 5, 9, 2, 6}
	for _, v := range input {
		if !p.TryPush(v) {
			t.Fatalf("TryPush(%d) failed", v)
		}
	}

	want := append([]int(nil), input...)
	sort.Sort(sort.Reverse(sort.IntSlice(want)))
	for i, w := range want {
		v, ok := p.TryPop()
		if !ok || v != w {
			t.Fatalf("pop %d = (%d, %v), want (%d, true)", i, v, ok, w)
		}
	}
}

func TestPriorityQueueCustomComparator(t *testing.T) {
	// Inverting the comparator turns the max-queue into a min-queue.
	p := NewPriorityQueue[int](8, func(a, b int) bool { return a > b })
	for _, v := range []int{5, 1, 3} {
		p.TryPush(v)
	}
	for _, w := range []int{1, 3, 5} {
		if v, ok := p.TryPop(); !ok || v != w {
			t.Fatalf("TryPop = (%d, %v), want (%d, true)", v, ok, w)
		}
	}
}

func TestPriorityQueueBlockingAndClose(t *testing.T) {
	p := NewPriorityQueue[int](1, intLess)
	ctx := context.Background()

	if st := p.Push(ctx, 1); st != coke.Success {
		t.Fatalf("Push = %v", st)
	}
	if st := p.TryPushFor(ctx, 20*time.Millisecond, 2); st != coke.Timeout {
		t.Fatalf("TryPushFor on full queue = %v, want Timeout", st)
	}

	p.Close()
	if st := p.Push(ctx, 2); st != coke.Closed {
		t.Fatalf("Push on closed queue = %v, want Closed", st)
	}
	if v, st := p.Pop(ctx); st != coke.Success || v != 1 {
		t.Fatalf("Pop = (%d, %v), want (1, Success)", v, st)
	}
	if _, st := p.Pop(ctx); st != coke.Closed {
		t.Fatalf("Pop on drained closed queue = %v, want Closed", st)
	}
}

func TestPriorityQueueForcePushReordersPastCapacity(t *testing.T) {
	p := NewPriorityQueue[int](1, intLess)
	p.TryPush(3)
	if !p.ForcePush(8) {
		t.Fatal("ForcePush failed")
	}
	if v, ok := p.TryPop(); !ok || v != 8 {
		t.Fatalf("TryPop = (%d, %v), want (8, true)", v, ok)
	}
}

func TestPriorityQueueRangeOperations(t *testing.T) {
	p := NewPriorityQueue[int](4, intLess)
	if n := p.TryPushRange([]int{2, 9, 5, 1, 7}); n != 4 {
		t.Fatalf("TryPushRange pushed %d, want 4", n)
	}
	out := make([]int, 2)
	if got := p.TryPopRange(out); got != 2 || out[0] != 9 || out[1] != 5 {
		t.Fatalf("TryPopRange = (%v, %d), want ([9 5], 2)", out, got)
	}
	rest, cnt := p.TryPopN(5)
	if cnt != 2 || rest[0] != 2 || rest[1] != 1 {
		t.Fatalf("TryPopN = (%v, %d), want ([2 1], 2)", rest, cnt)
	}
}
