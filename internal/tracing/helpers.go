package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Instrumentation scope names.
const (
	scopeEngine = "talentmatch"
	scopeDB     = "talentmatch/db"
)

// StartSpan opens a span named name and returns the function that ends it,
// recording err when non-nil.
//
//	ctx, end := tracing.StartSpan(ctx, "stage.image")
//	defer func() { end(err) }()
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := otel.Tracer(scopeEngine).Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, ender(span)
}

// StartDBSpan opens a client span for a query against table.
func StartDBSpan(ctx context.Context, table, method string) (context.Context, func(error)) {
	name := "query"
	if table != "" {
		name += " " + table
	}
	ctx, span := otel.Tracer(scopeDB).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "select"),
			attribute.String("repository.method", method),
		),
	)
	if table != "" {
		span.SetAttributes(attribute.String("db.sql.table", table))
	}
	return ctx, ender(span)
}

// SetAttributes adds attributes to the span in ctx.
func SetAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).SetAttributes(attrs...)
}

// AddEvent records a named event on the span in ctx.
func AddEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}

func ender(span trace.Span) func(error) {
	return func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
