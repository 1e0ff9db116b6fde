package telemetry

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// SetupTracing installs a global tracer provider that samples spans at ratio
// and writes finished spans to the logger at debug level.
// The returned function flushes and stops the provider.
func SetupTracing(ratio float64, logger *logrus.Logger) func(context.Context) error {
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
		sdktrace.WithSyncer(NewLogExporter(logger)),
	)
	otel.SetTracerProvider(provider)
	return provider.Shutdown
}

// LogExporter is a span exporter that logs spans through logrus
type LogExporter struct {
	logger *logrus.Logger
}

// NewLogExporter creates a span exporter writing to logger
func NewLogExporter(logger *logrus.Logger) *LogExporter {
	return &LogExporter{logger: logger}
}

// ExportSpans implements sdktrace.SpanExporter
func (e *LogExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		fields := logrus.Fields{
			"span":        span.Name(),
			"trace_id":    span.SpanContext().TraceID().String(),
			"duration_ms": span.EndTime().Sub(span.StartTime()).Milliseconds(),
		}
		for _, attr := range span.Attributes() {
			fields[string(attr.Key)] = attr.Value.Emit()
		}

		entry := e.logger.WithFields(fields)
		if span.Status().Code == codes.Error {
			entry.WithField("error", span.Status().Description).Debug("Span failed")
			continue
		}
		entry.Debug("Span finished")
	}
	return nil
}

// Shutdown implements sdktrace.SpanExporter
func (e *LogExporter) Shutdown(ctx context.Context) error {
	return nil
}
