package trace

import "context"

// ctxState is what a context carries for tracing: the tracer and the
// innermost open span, so Start can parent new spans without threading IDs.
type ctxState struct {
	tracer Tracer
	span   uint64
}

type ctxKey struct{}

func stateOf(ctx context.Context) ctxState {
	if ctx != nil {
		if st, ok := ctx.Value(ctxKey{}).(ctxState); ok {
			return st
		}
	}
	return ctxState{tracer: Nop}
}

// FromContext returns the tracer stored in ctx, Nop when there is none.
func FromContext(ctx context.Context) Tracer {
	return stateOf(ctx).tracer
}

// WithTracer attaches t to ctx. Spans opened earlier stop being parents.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, ctxKey{}, ctxState{tracer: t})
}

// SpanFromContext returns the ID of the innermost span started via Start, 0 at the root.
func SpanFromContext(ctx context.Context) uint64 {
	return stateOf(ctx).span
}

func withSpan(ctx context.Context, id uint64) context.Context {
	st := stateOf(ctx)
	st.span = id
	return context.WithValue(ctx, ctxKey{}, st)
}
