package coke

import "sync/atomic"

// InvalidUniqueID is never returned by UniqueID, matching coke's
// INVALID_UNIQUE_ID (include/coke/global.h).
const InvalidUniqueID uint64 = 0

var uniqueIDCounter uint64

// UniqueID returns a process-wide monotonically increasing, nonzero id,
// suitable as a Sleep/SleepID key for a caller that needs to address its
// own sleep without dedicating a field for it (coke::get_unique_id()).
// Unlike github.com/rs/xid's ids — used elsewhere in this module purely
// for display/log correlation — UniqueID must be a plain integer, since it
// doubles as an internal/timer registry shard key.
func UniqueID() uint64 {
	return atomic.AddUint64(&uniqueIDCounter, 1)
}
