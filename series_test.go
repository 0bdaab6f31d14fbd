package coke

import (
	"context"
	"testing"
)

func TestNewSeriesProvidesUsableContext(t *testing.T) {
	series, ctx := NewSeries(context.Background(), "unit-test-series")
	defer series.End()

	if ctx.Err() != nil {
		t.Fatalf("unexpected context error: %v", ctx.Err())
	}
	if series.Context() != ctx {
		t.Fatal("Series.Context() should return the same context NewSeries returned")
	}
}
