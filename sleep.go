package coke

import (
	"context"
	"time"

	"github.com/kedixa/coke-go/internal/timer"
)

// Sleep suspends the calling goroutine for d and returns SleepSuccess once
// it elapses, or SleepAborted if ctx is canceled first. It has no id and so
// cannot be woken early by CancelSleep — the Go analogue of coke::sleep(nsec),
// the uncancelable duration-only overload.
func Sleep(ctx context.Context, d time.Duration) SleepStatus {
	id := UniqueID()
	return fromTimerStatus(timer.UIDRegistry.Sleep(ctx, id, d, false))
}

// SleepID suspends the calling goroutine for d under id, or until a
// concurrent CancelSleep(id, ...) extracts it, or until ctx is done.
// insertHead controls whether this sleep joins the front or back of id's
// FIFO wait list — coke::sleep(id, nsec, insert_head).
func SleepID(ctx context.Context, id uint64, d time.Duration, insertHead bool) SleepStatus {
	return fromTimerStatus(timer.UIDRegistry.Sleep(ctx, id, d, insertHead))
}

// SleepIDForever suspends the calling goroutine under id until a
// CancelSleep(id, ...) wakes it or ctx is done — coke::sleep(id,
// InfiniteDuration{}, insert_head).
func SleepIDForever(ctx context.Context, id uint64, insertHead bool) SleepStatus {
	return fromTimerStatus(timer.UIDRegistry.SleepInfinite(ctx, id, insertHead))
}

// Yield suspends the calling goroutine just long enough to let other
// scheduled work run, coke::yield()'s Go analogue.
func Yield(ctx context.Context) SleepStatus {
	id := UniqueID()
	return fromTimerStatus(timer.UIDRegistry.Sleep(ctx, id, 0, false))
}

// CancelSleep wakes up to max sleeps registered under id via SleepID or
// SleepIDForever, in FIFO order, and returns how many were actually woken.
// A max of 0 or less wakes none.
func CancelSleep(id uint64, max int) int {
	return timer.UIDRegistry.Cancel(id, max)
}

func fromTimerStatus(st timer.Status) SleepStatus {
	switch st {
	case timer.StatusSuccess:
		return SleepSuccess
	case timer.StatusCanceled:
		return SleepCanceled
	case timer.StatusAborted:
		return SleepAborted
	default:
		return SleepAborted
	}
}
