package observability

import (
	"context"
	"time"

	"docmill/internal/job"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentedRunner wraps a job.Service implementation with OpenTelemetry
// tracing and metrics instrumentation. Every job run produces a span, a
// latency observation, and an outcome-labelled counter increment.
type InstrumentedRunner struct {
	inner    job.Service
	tracer   trace.Tracer
	duration metric.Float64Histogram
	outcomes metric.Int64Counter
	inFlight metric.Int64UpDownCounter
}

// NewInstrumentedRunner creates a job service wrapper that records trace
// spans, job latency histograms, and per-outcome counters for every run.
func NewInstrumentedRunner(inner job.Service) (*InstrumentedRunner, error) {
	tracer := otel.Tracer("docmill/job")
	meter := otel.Meter("docmill/job")

	duration, err := meter.Float64Histogram(
		"job.duration",
		metric.WithDescription("Duration of document-processing jobs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	outcomes, err := meter.Int64Counter(
		"job.outcomes",
		metric.WithDescription("Number of completed jobs by outcome"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return nil, err
	}

	inFlight, err := meter.Int64UpDownCounter(
		"job.in_flight",
		metric.WithDescription("Number of jobs currently executing"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return nil, err
	}

	return &InstrumentedRunner{
		inner:    inner,
		tracer:   tracer,
		duration: duration,
		outcomes: outcomes,
		inFlight: inFlight,
	}, nil
}

// Run executes a job through the wrapped service, recording a span and
// metrics for the attempt. Admission failures (validation, rate limits,
// capacity) surface as span errors; completed jobs are labelled by outcome.
func (r *InstrumentedRunner) Run(ctx context.Context, req *job.Request) (*job.Result, error) {
	operation := string(req.Operation)

	ctx, span := r.tracer.Start(ctx, "job.Run",
		trace.WithAttributes(
			attribute.String("job.operation", operation),
			attribute.Int("job.inputs", len(req.Inputs)),
		),
	)
	defer span.End()

	opAttr := attribute.String("operation", operation)

	r.inFlight.Add(ctx, 1, metric.WithAttributes(opAttr))
	start := time.Now()
	result, err := r.inner.Run(ctx, req)
	elapsed := time.Since(start).Seconds()
	r.inFlight.Add(ctx, -1, metric.WithAttributes(opAttr))

	r.duration.Record(ctx, elapsed, metric.WithAttributes(opAttr))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.outcomes.Add(ctx, 1, metric.WithAttributes(opAttr,
			attribute.String("outcome", "rejected")))
		return nil, err
	}

	span.SetAttributes(
		attribute.String("job.id", result.ID),
		attribute.String("job.outcome", string(result.Outcome)),
		attribute.Int("job.artifacts", len(result.Artifacts)),
	)
	span.SetStatus(codes.Ok, "")

	r.outcomes.Add(ctx, 1, metric.WithAttributes(opAttr,
		attribute.String("outcome", string(result.Outcome))))

	return result, nil
}
