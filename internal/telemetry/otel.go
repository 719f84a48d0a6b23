package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	meterName  = "pennant"
	tracerName = "pennant"
)

// Telemetry records traces and metrics for the evaluation pipeline using
// OpenTelemetry. It reports against the globally registered providers; SDK
// setup and shutdown stay with the host application.
type Telemetry struct {
	tracer trace.Tracer
	meter  metric.Meter

	evaluations  metric.Int64Counter
	evalDuration metric.Float64Histogram
	hookFailures metric.Int64Counter
	hookTimeouts metric.Int64Counter
}

// New creates a Telemetry wired to the global tracer and meter providers.
func New() (*Telemetry, error) {
	t := &Telemetry{
		tracer: otel.Tracer(tracerName),
		meter:  otel.Meter(meterName),
	}

	if err := t.initMetrics(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Telemetry) initMetrics() error {
	var err error

	t.evaluations, err = t.meter.Int64Counter(
		"pennant.evaluations",
		metric.WithDescription("Number of flag evaluations"),
	)
	if err != nil {
		return err
	}

	t.evalDuration, err = t.meter.Float64Histogram(
		"pennant.evaluation.duration",
		metric.WithDescription("Duration of flag evaluations"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	t.hookFailures, err = t.meter.Int64Counter(
		"pennant.hook.failures",
		metric.WithDescription("Number of hook callback failures"),
	)
	if err != nil {
		return err
	}

	t.hookTimeouts, err = t.meter.Int64Counter(
		"pennant.hook.timeouts",
		metric.WithDescription("Number of hook callbacks abandoned on timeout"),
	)
	if err != nil {
		return err
	}

	return nil
}

// StartEvaluation opens a span for one flag evaluation.
func (t *Telemetry) StartEvaluation(ctx context.Context, flagKey string, providerName string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "pennant.evaluate",
		trace.WithAttributes(
			attribute.String("flag.key", flagKey),
			attribute.String("provider.name", providerName),
		))
}

// RecordEvaluation records one completed evaluation. Outcome is "success",
// "default" or "error".
func (t *Telemetry) RecordEvaluation(ctx context.Context, flagKey string, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("flag.key", flagKey),
		attribute.String("outcome", outcome),
	)
	t.evaluations.Add(ctx, 1, attrs)
	t.evalDuration.Record(ctx, float64(duration.Microseconds())/1000.0, attrs)
}

// RecordHookFailure records a failed hook callback.
func (t *Telemetry) RecordHookFailure(ctx context.Context, hookName string, stage string, timedOut bool) {
	attrs := metric.WithAttributes(
		attribute.String("hook.name", hookName),
		attribute.String("hook.stage", stage),
	)
	if timedOut {
		t.hookTimeouts.Add(ctx, 1, attrs)
		return
	}
	t.hookFailures.Add(ctx, 1, attrs)
}
