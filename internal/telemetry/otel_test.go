package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
)

// setupTelemetryTest installs real SDK providers so instruments are created
// against something other than the global no-ops.
func setupTelemetryTest(t *testing.T) (*Telemetry, func()) {
	t.Helper()

	tp := trace.NewTracerProvider()
	otel.SetTracerProvider(tp)

	mp := metric.NewMeterProvider()
	otel.SetMeterProvider(mp)

	tel, err := New()
	require.NoError(t, err)

	cleanup := func() {
		ctx := context.Background()
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
	}

	return tel, cleanup
}

func TestNew(t *testing.T) {
	tel, cleanup := setupTelemetryTest(t)
	defer cleanup()

	assert.NotNil(t, tel.tracer)
	assert.NotNil(t, tel.meter)
	assert.NotNil(t, tel.evaluations)
	assert.NotNil(t, tel.evalDuration)
	assert.NotNil(t, tel.hookFailures)
	assert.NotNil(t, tel.hookTimeouts)
}

func TestTelemetry_StartEvaluation(t *testing.T) {
	tel, cleanup := setupTelemetryTest(t)
	defer cleanup()

	ctx, span := tel.StartEvaluation(context.Background(), "my-flag", "memory")
	require.NotNil(t, span)
	assert.NotNil(t, ctx)
	span.End()
}

func TestTelemetry_RecordEvaluation(t *testing.T) {
	tel, cleanup := setupTelemetryTest(t)
	defer cleanup()

	// Must not panic or error with any outcome label.
	ctx := context.Background()
	tel.RecordEvaluation(ctx, "my-flag", "success", 3*time.Millisecond)
	tel.RecordEvaluation(ctx, "my-flag", "error", 500*time.Microsecond)
}

func TestTelemetry_RecordHookFailure(t *testing.T) {
	tel, cleanup := setupTelemetryTest(t)
	defer cleanup()

	ctx := context.Background()
	tel.RecordHookFailure(ctx, "audit-log", "before", false)
	tel.RecordHookFailure(ctx, "audit-log", "before", true)
}
