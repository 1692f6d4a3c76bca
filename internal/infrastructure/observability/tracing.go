package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "monarch-server/relay-api"

// GetTracer returns the tracer for the relay service.
func GetTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// UpstreamAttributes returns common attributes for upstream call spans.
func UpstreamAttributes(model string, stream bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("upstream.model", model),
		attribute.Bool("upstream.stream", stream),
	}
}

// StartUpstreamSpan starts a new span for an upstream completion call.
func StartUpstreamSpan(ctx context.Context, model string, stream bool) (context.Context, trace.Span) {
	ctx, span := GetTracer().Start(ctx, "upstream.chat_completion",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(UpstreamAttributes(model, stream)...),
	)
	return ctx, span
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
