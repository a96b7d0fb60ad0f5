package observability

import (
	"context"
	"time"

	"truthlens/internal/mediacheck"
	"truthlens/internal/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentedClassifier wraps a mediacheck.Classifier with OpenTelemetry
// tracing and metrics instrumentation. Each Classify call gets a span and
// contributes to a latency histogram and an error counter.
type InstrumentedClassifier struct {
	inner    mediacheck.Classifier
	tracer   trace.Tracer
	duration metric.Float64Histogram
	errors   metric.Int64Counter
}

var _ mediacheck.Classifier = (*InstrumentedClassifier)(nil)

// NewInstrumentedClassifier creates a classifier wrapper that records a
// trace span, call latency, and error count for every classification call.
func NewInstrumentedClassifier(inner mediacheck.Classifier) (*InstrumentedClassifier, error) {
	tracer := otel.Tracer("truthlens/classifier")
	meter := otel.Meter("truthlens/classifier")

	duration, err := meter.Float64Histogram(
		"classifier.call.duration",
		metric.WithDescription("Duration of classifier calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	errCounter, err := meter.Int64Counter(
		"classifier.call.errors",
		metric.WithDescription("Number of failed classifier calls"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &InstrumentedClassifier{
		inner:    inner,
		tracer:   tracer,
		duration: duration,
		errors:   errCounter,
	}, nil
}

func (c *InstrumentedClassifier) Classify(ctx context.Context, mediaURL, mediaType string) (*models.MediaCheckResponse, error) {
	ctx, span := c.tracer.Start(ctx, "classifier.Classify",
		trace.WithAttributes(
			attribute.String("media_type", mediaType),
		),
	)

	start := time.Now()
	result, err := c.inner.Classify(ctx, mediaURL, mediaType)
	elapsed := time.Since(start).Seconds()

	attrs := metric.WithAttributes(attribute.String("media_type", mediaType))
	c.duration.Record(ctx, elapsed, attrs)

	if err != nil {
		c.errors.Add(ctx, 1, attrs)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(
			attribute.Bool("ai_generated", result.AIGenerated),
			attribute.Float64("confidence", result.Confidence),
		)
		span.SetStatus(codes.Ok, "")
	}

	span.End()
	return result, err
}
