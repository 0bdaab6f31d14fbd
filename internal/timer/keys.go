package timer

import "unsafe"

// UIDRegistry backs coke.SleepID/coke.CancelSleep: keys are caller-supplied
// 64-bit unique ids (coke.UniqueID()).
var UIDRegistry = New()

// AddrRegistry backs every sync primitive (Semaphore, SharedMutex, Cond,
// Latch, WaitGroup, StopToken): keys are derived from the address of a
// marker field inside the primitive, so that several independent wait
// roles inside one object (e.g. SharedMutex's reader vs. writer queues) get
// disjoint keys without any extra allocation. This is the Go analogue of
// coke's "this+1 / this+2" byte-offset trick (src/cancelable_timer.cpp's
// get_hash_from_uaddr), expressed as dedicated marker fields instead of
// pointer arithmetic, since Go does not allow offsetting a struct pointer by
// a raw byte count.
var AddrRegistry = New()

// AddrKey derives a stable registry key from the address of p. p must
// point into a long-lived object (typically a dedicated marker field of a
// sync primitive); its value, not its contents, is what matters.
func AddrKey(p unsafe.Pointer) uint64 {
	return uint64(uintptr(p))
}
