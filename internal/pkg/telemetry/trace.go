package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/light-bringer/catalog-service"

// StartDBSpan starts a client span for a storage operation on table.
func StartDBSpan(ctx context.Context, system, operation, table string, attrs ...attribute.KeyValue) (context.Context, oteltrace.Span) {
	base := []attribute.KeyValue{
		semconv.DBSystemKey.String(system),
		semconv.DBOperationKey.String(operation),
		semconv.DBSQLTableKey.String(table),
	}
	return otel.Tracer(instrumentationName).Start(ctx, table+"."+operation,
		oteltrace.WithSpanKind(oteltrace.SpanKindClient),
		oteltrace.WithAttributes(append(base, attrs...)...),
	)
}

// EndSpan records err on span, if any, and ends it. Pass a pointer to the
// named error result so deferred calls see the final value.
func EndSpan(span oteltrace.Span, errp *error) {
	if errp != nil {
		RecordSpanError(span, *errp)
	}
	span.End()
}

// RecordSpanError marks span as failed with err.
func RecordSpanError(span oteltrace.Span, err error, attrs ...attribute.KeyValue) {
	if span == nil || !span.IsRecording() || err == nil {
		return
	}
	all := append([]attribute.KeyValue{
		semconv.ExceptionMessageKey.String(err.Error()),
		semconv.ExceptionTypeKey.String(fmt.Sprintf("%T", err)),
	}, attrs...)
	span.RecordError(err, oteltrace.WithAttributes(all...))
	span.SetStatus(codes.Error, err.Error())
}
