package coke

import (
	"context"

	"github.com/kedixa/coke-go/engine"
)

// Go submits fn to run on the named worker sub-pool and blocks until it
// completes or ctx is done, the Go shape of coke::go(name, fn, args...).
// Use a Task wrapping Go when the caller wants to detach instead of block.
func Go(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	_, done := engine.Default().Go(ctx, name, fn)
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SwitchGoThread blocks until a worker slot on the named sub-pool is
// available, runs an empty job in it, and returns once that job has
// finished, the Go shape of coke::switch_go_thread(name). The slot is
// released before it returns: the caller keeps running on its own
// goroutine, and its subsequent work is not counted against the
// sub-pool's limit.
func SwitchGoThread(ctx context.Context, name string) error {
	return Go(ctx, name, func(ctx context.Context) error { return nil })
}

// InitEngine installs the process-wide default worker pool per settings,
// coke::library_init(GlobalSettings)'s Go shape.
func InitEngine(settings engine.Settings, opts ...engine.Option) *engine.Pool {
	return engine.Init(settings, opts...)
}
