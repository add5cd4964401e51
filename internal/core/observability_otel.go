package core

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "psibridge/internal/core"

// OTelTracer adapts an OpenTelemetry tracer provider to Tracer.
type OTelTracer struct {
	tracer trace.Tracer
}

// NewOTelTracer returns a Tracer creating spans from provider.
func NewOTelTracer(provider trace.TracerProvider) *OTelTracer {
	return &OTelTracer{tracer: provider.Tracer(tracerName)}
}

// Start implements Tracer.
func (t *OTelTracer) Start(ctx context.Context, operation string) (context.Context, TraceSpan) {
	ctx, span := t.tracer.Start(ctx, operation, trace.WithAttributes(attribute.String("psibridge.operation", operation)))
	return ctx, otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

func (s otelSpan) End(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}

// LogSpanExporter is an sdk span exporter that writes finished spans to a
// Logger at debug level.
type LogSpanExporter struct {
	Logger Logger
}

var _ sdktrace.SpanExporter = LogSpanExporter{}

// ExportSpans implements sdktrace.SpanExporter.
func (e LogSpanExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	if e.Logger == nil {
		return nil
	}
	for _, s := range spans {
		e.Logger.Debug("span",
			"name", s.Name(),
			"trace_id", s.SpanContext().TraceID().String(),
			"span_id", s.SpanContext().SpanID().String(),
			"status", s.Status().Code.String(),
			"duration_ms", float64(s.EndTime().Sub(s.StartTime()))/float64(time.Millisecond),
		)
	}
	return nil
}

// Shutdown implements sdktrace.SpanExporter.
func (LogSpanExporter) Shutdown(context.Context) error { return nil }

// NewLogTracerProvider returns an sdk tracer provider exporting synchronously
// through a LogSpanExporter. Callers shut it down when done.
func NewLogTracerProvider(logger Logger) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithSyncer(LogSpanExporter{Logger: logger}),
	)
}
