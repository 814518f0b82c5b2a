package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Tracer returns a tracer for the given name
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// StartSpan starts a new span from context
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, name, opts...)
}

// StartServiceSpan starts a span for service operations
func StartServiceSpan(ctx context.Context, service, operation string) (context.Context, trace.Span) {
	return StartSpan(ctx, fmt.Sprintf("%s.%s", service, operation),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("service.component", service),
			attribute.String("service.operation", operation),
		),
	)
}

// RecordError records an error on the span
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSuccess marks the span as successful
func SetSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// JournalMetrics holds custom journal metrics
type JournalMetrics struct {
	entryUploads   metric.Int64Counter
	feedRequests   metric.Int64Counter
	historyLookups metric.Int64Counter
	authFailures   metric.Int64Counter
	storageUsed    metric.Int64UpDownCounter
}

// NewJournalMetrics creates journal metrics instruments
func NewJournalMetrics() (*JournalMetrics, error) {
	meter := otel.Meter(instrumentationName)

	entryUploads, err := meter.Int64Counter(
		"picorama.entry.uploads",
		metric.WithDescription("Total number of entry uploads"),
		metric.WithUnit("{uploads}"),
	)
	if err != nil {
		return nil, err
	}

	feedRequests, err := meter.Int64Counter(
		"picorama.feed.requests",
		metric.WithDescription("Total number of feed page requests"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return nil, err
	}

	historyLookups, err := meter.Int64Counter(
		"picorama.history.lookups",
		metric.WithDescription("Total number of on-this-day lookups"),
		metric.WithUnit("{lookups}"),
	)
	if err != nil {
		return nil, err
	}

	authFailures, err := meter.Int64Counter(
		"picorama.auth.failures",
		metric.WithDescription("Total number of rejected upload credentials"),
		metric.WithUnit("{failures}"),
	)
	if err != nil {
		return nil, err
	}

	storageUsed, err := meter.Int64UpDownCounter(
		"picorama.storage.bytes",
		metric.WithDescription("Bytes written to the media store"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &JournalMetrics{
		entryUploads:   entryUploads,
		feedRequests:   feedRequests,
		historyLookups: historyLookups,
		authFailures:   authFailures,
		storageUsed:    storageUsed,
	}, nil
}

// RecordEntryUpload records an entry upload
func (m *JournalMetrics) RecordEntryUpload(ctx context.Context, fileSize int64, success bool) {
	attrs := []attribute.KeyValue{
		attribute.Bool("success", success),
	}
	m.entryUploads.Add(ctx, 1, metric.WithAttributes(attrs...))
	if success {
		m.storageUsed.Add(ctx, fileSize)
	}
}

// RecordFeedRequest records a feed page request
func (m *JournalMetrics) RecordFeedRequest(ctx context.Context, page int) {
	attrs := []attribute.KeyValue{
		attribute.Int("feed_page", page),
	}
	m.feedRequests.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordHistoryLookup records an on-this-day lookup
func (m *JournalMetrics) RecordHistoryLookup(ctx context.Context, monthDay string) {
	attrs := []attribute.KeyValue{
		attribute.String("month_day", monthDay),
	}
	m.historyLookups.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordAuthFailure records a rejected upload credential
func (m *JournalMetrics) RecordAuthFailure(ctx context.Context) {
	m.authFailures.Add(ctx, 1)
}
