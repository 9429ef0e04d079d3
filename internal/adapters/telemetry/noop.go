package telemetry

import (
	"context"
	"io"

	"go.trai.ch/weft/internal/core/ports"
)

// Noop is a telemetry implementation that records nothing.
type Noop struct{}

var _ ports.Telemetry = Noop{}

// NewNoop creates a Noop telemetry.
func NewNoop() Noop {
	return Noop{}
}

// Record returns a vertex that discards everything.
func (Noop) Record(ctx context.Context, _ string) (context.Context, ports.Vertex) {
	return ctx, noopVertex{}
}

// Close does nothing.
func (Noop) Close() error { return nil }

type noopVertex struct{}

func (noopVertex) Stdout() io.Writer { return io.Discard }
func (noopVertex) Stderr() io.Writer { return io.Discard }
func (noopVertex) Complete(error)    {}
func (noopVertex) Cached()           {}
