package trace

import "context"

type tracerKey struct{}
type spanKey struct{}

// WithTracer stores t in ctx.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	return context.WithValue(ctx, tracerKey{}, t)
}

// FromContext returns the tracer in ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if t, ok := ctx.Value(tracerKey{}).(Tracer); ok && t != nil {
		return t
	}
	return Nop
}

// WithSpan makes sp the parent of spans started from ctx.
func WithSpan(ctx context.Context, sp *Span) context.Context {
	return context.WithValue(ctx, spanKey{}, sp.ID())
}

// Start begins a span under the current context span and returns a context
// carrying it.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	parent, _ := ctx.Value(spanKey{}).(uint64)
	sp := Begin(FromContext(ctx), scope, name, parent)
	if sp.ID() == 0 {
		return ctx, sp
	}
	return WithSpan(ctx, sp), sp
}
