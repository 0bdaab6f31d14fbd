package coke

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// seriesTracer is the tracer every Series starts its spans from. Series is
// coke-go's concrete stand-in for coke's "series" concept
// (dag.h/server_common.h's SeriesWork): an opaque handle that threads a
// single chain of scheduling decisions together so unrelated tasks don't
// get attributed to each other. An OpenTelemetry span is a natural fit —
// it already carries the "one chain of related work, end-to-end" shape coke
// asks a series to have, and lets a coke-go host export that chain to any
// OTel-compatible backend for free.
var seriesTracer = otel.Tracer("github.com/kedixa/coke-go")

// Series represents one chain of related asynchronous work. A Task started
// with DetachOnSeries runs with the series' context, so any span its body
// starts from that context is a child of the series' span; the Task itself
// starts no span.
type Series struct {
	ctx  context.Context
	span trace.Span
}

// NewSeries starts a new series rooted at ctx, returning a context that
// carries it. Use Series.Context to retrieve that context for starting
// tasks attributed to this series.
func NewSeries(ctx context.Context, name string) (*Series, context.Context) {
	spanCtx, span := seriesTracer.Start(ctx, name)
	return &Series{ctx: spanCtx, span: span}, spanCtx
}

// Context returns the context carrying this series; tasks started with it
// (directly, or via DetachOnSeries) are attributed to this series' span.
func (s *Series) Context() context.Context {
	return s.ctx
}

// End closes the series' span. Call it once all work attributed to this
// series has finished (or been abandoned).
func (s *Series) End() {
	s.span.End()
}
