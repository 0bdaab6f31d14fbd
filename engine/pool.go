// Package engine is the worker-pool half of the external engine coke's
// coroutine bridge plugs into: anything that needs to run a synchronous
// callable on a bounded set of worker goroutines (coke::go,
// coke::switch_go_thread, WFGoTask submission) goes through a Pool.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/rs/xid"
)

// Pool runs synchronous callables on bounded, named worker slots — the Go
// shape of coke's `coke::go(name, fn, args...)` and
// `coke::switch_go_thread(name)`. Every distinct name gets its own
// concurrency limit; an empty name is the default pool.
type Pool struct {
	mu     sync.Mutex
	limit  int
	named  map[string]chan struct{}
	logger *slog.Logger
}

// Option configures a Pool.
type Option func(*Pool)

// WithWorkerLimit bounds the number of concurrent jobs any single named
// sub-pool may run at once.
func WithWorkerLimit(limit int) Option {
	return func(p *Pool) {
		if limit > 0 {
			p.limit = limit
		}
	}
}

// WithLogger attaches a structured logger; jobs are logged at debug level.
func WithLogger(handler slog.Handler) Option {
	return func(p *Pool) {
		p.logger = slog.New(handler)
	}
}

// NewPool creates a Pool. Default worker limit is 4x GOMAXPROCS.
func NewPool(opts ...Option) *Pool {
	p := &Pool{
		limit: runtime.GOMAXPROCS(0) * 4,
		named: make(map[string]chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p
}

func (p *Pool) semFor(name string) chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	sem, ok := p.named[name]
	if !ok {
		sem = make(chan struct{}, p.limit)
		p.named[name] = sem
	}
	return sem
}

// Go submits fn to run on the named sub-pool's worker slots. It blocks
// until a slot is free or ctx is done, then runs fn on a goroutine and
// reports its error on the returned channel exactly once. The returned
// xid.ID is a display-facing correlation id for logs.
func (p *Pool) Go(ctx context.Context, name string, fn func(ctx context.Context) error) (xid.ID, <-chan error) {
	id := xid.New()
	sem := p.semFor(name)
	result := make(chan error, 1)

	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		result <- ctx.Err()
		return id, result
	}

	go func() {
		defer func() { <-sem }()
		defer func() {
			if r := recover(); r != nil {
				result <- fmt.Errorf("engine: pool %q job %s panicked: %v", name, id.String(), r)
			}
		}()

		p.logger.Debug("pool job starting", "pool", name, "job", id.String())
		err := fn(ctx)
		p.logger.Debug("pool job finished", "pool", name, "job", id.String(), "error", err)
		result <- err
	}()

	return id, result
}

// Stats reports, per named sub-pool, how many of its worker slots are
// currently occupied and its configured limit.
func (p *Pool) Stats() map[string][2]int {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string][2]int, len(p.named))
	for name, sem := range p.named {
		out[name] = [2]int{len(sem), cap(sem)}
	}
	return out
}
