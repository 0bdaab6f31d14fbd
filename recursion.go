package coke

import "context"

type recursionKey struct{}

// maxRecursionDepth bounds how many times a synchronous chain of mutually
// resuming awaits may recurse through one goroutine's call stack before
// PreventRecursiveStack asks the caller to hop to a fresh goroutine instead.
const maxRecursionDepth = 64

// PreventRecursiveStack mirrors coke::prevent_recursive_stack
// (include/coke/global.h): it guards against a long chain of synchronous,
// mutually-resuming awaits recursing arbitrarily deep. A Go goroutine's
// stack grows dynamically, so the original's hard stack-overflow risk does
// not apply verbatim, but an unbounded synchronous recursion chain can
// still starve the scheduler and make a panic's stack trace useless, so the
// same counter-and-threshold contract is kept: call this at the top of any
// resume path that might call back into itself, and when it reports true,
// continue via engine.Pool.Go instead of a direct call so the chain
// restarts on a fresh goroutine.
func PreventRecursiveStack(ctx context.Context) (context.Context, bool) {
	depth, _ := ctx.Value(recursionKey{}).(int)
	depth++
	if depth >= maxRecursionDepth {
		return context.WithValue(ctx, recursionKey{}, 0), true
	}
	return context.WithValue(ctx, recursionKey{}, depth), false
}

// ClearRecursiveStack returns a context with its recursion counter reset to
// zero, coke::prevent_recursive_stack(true)'s Go shape.
func ClearRecursiveStack(ctx context.Context) context.Context {
	return context.WithValue(ctx, recursionKey{}, 0)
}
