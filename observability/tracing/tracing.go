// Package tracing wraps index operations in opentracing spans,
// grounded on the teacher's compute/server package, which accepts an
// opentracing.Tracer and falls back to opentracing.NoopTracer{} when the
// caller supplies none. Here that same fallback is global rather than
// per-server, since record store operations have no per-request session
// to carry a tracer through.
package tracing

import (
	"context"

	opentracing "github.com/opentracing/opentracing-go"
)

var tracer opentracing.Tracer = opentracing.NoopTracer{}

// SetTracer installs the global tracer used by StartSpan. Call once at
// startup; defaults to a no-op tracer so instrumentation is free until a
// real tracer (e.g. Jaeger) is wired in by the caller.
func SetTracer(t opentracing.Tracer) {
	if t == nil {
		t = opentracing.NoopTracer{}
	}
	tracer = t
}

// StartSpan starts a span named operationName as a child of any span
// already present in ctx, returning the new span and a context carrying
// it. Callers should `defer span.Finish()`.
func StartSpan(ctx context.Context, operationName string) (opentracing.Span, context.Context) {
	var opts []opentracing.StartSpanOption
	if parent := opentracing.SpanFromContext(ctx); parent != nil {
		opts = append(opts, opentracing.ChildOf(parent.Context()))
	}
	span := tracer.StartSpan(operationName, opts...)
	return span, opentracing.ContextWithSpan(ctx, span)
}

// Finish ends span, recording err as a tag when non-nil. Pass the named
// return error from the traced function: `defer func() { tracing.Finish(span, err) }()`.
func Finish(span opentracing.Span, err error) {
	if err != nil {
		span.SetTag("error", true)
		span.LogKV("error.message", err.Error())
	}
	span.Finish()
}
