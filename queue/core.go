// Package queue ports coke's asynchronous bounded container family —
// Queue, Stack, PriorityQueue, Deque — from include/coke/queue.h,
// stack.h, priority_queue.h, and queue.h's Deque extension: a fixed-
// capacity buffer with cooperative, cancellable producer/consumer waits
// and a Close that lets in-flight producers fail fast while consumers
// finish draining whatever is already buffered.
package queue

import (
	"context"
	"sync"
	"unsafe"

	"github.com/kedixa/coke-go/internal/deadline"
	"github.com/kedixa/coke-go/internal/timer"
)

// broadcastAll is an n large enough that Registry.Cancel(key, broadcastAll)
// always empties key's entire wait list — Close's "wake ALL producers and
// consumers" contract.
const broadcastAll = 1 << 30

// core is the locking, capacity, and close-flag machinery every container
// in this package embeds; each concrete type adds its own storage
// discipline and guards it with its own mutex.
type core struct {
	capacity int
	closed   bool
	prodKey  byte
	consKey  byte
}

func (c *core) prodAddr() uint64 { return timer.AddrKey(unsafe.Pointer(&c.prodKey)) }
func (c *core) consAddr() uint64 { return timer.AddrKey(unsafe.Pointer(&c.consKey)) }

func (c *core) wakeProducers(n int) { timer.AddrRegistry.Cancel(c.prodAddr(), n) }
func (c *core) wakeConsumers(n int) { timer.AddrRegistry.Cancel(c.consAddr(), n) }

// waitSlot parks the caller on key. mu must be held on entry; the waiter
// is registered before mu is released, so a wake issued by a concurrent
// push/pop/Close the instant mu is dropped cannot be lost. mu is held
// again on return.
func waitSlot(ctx context.Context, mu *sync.Mutex, key uint64, dl deadline.Helper, insertHead bool) timer.WakeStatus {
	w := timer.AddrRegistry.RegisterWait(key, dl, insertHead)
	mu.Unlock()
	st := w.WaitWake(ctx)
	mu.Lock()
	return st
}
