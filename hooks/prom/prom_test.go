package prom

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OrlandoBitencourt/pennant"
)

func newHookContext(flagKey, evalID string) *pennant.HookContext {
	return &pennant.HookContext{
		FlagKey:           flagKey,
		EvaluationContext: pennant.Attributes{},
		Metadata:          map[string]string{"evaluation.id": evalID},
	}
}

func TestNew_RegistersCollectors(t *testing.T) {
	h := New()

	require.NotNil(t, h.Registry)
	assert.Equal(t, "prometheus-metrics", h.Metadata().Name)
	assert.Equal(t, pennant.PriorityLow, h.Metadata().Priority)
}

func TestHook_CountsStages(t *testing.T) {
	h := New()
	ctx := context.Background()
	hctx := newHookContext("f", "e1")

	require.NoError(t, h.Before(ctx, hctx))
	require.NoError(t, h.After(ctx, hctx))
	require.NoError(t, h.Finally(ctx, hctx))

	assert.Equal(t, float64(1), testutil.ToFloat64(h.stagesTotal.WithLabelValues("before")))
	assert.Equal(t, float64(1), testutil.ToFloat64(h.stagesTotal.WithLabelValues("after")))
	assert.Equal(t, float64(1), testutil.ToFloat64(h.stagesTotal.WithLabelValues("finally")))
	assert.Equal(t, float64(1), testutil.ToFloat64(h.evaluationsTotal.WithLabelValues("f", "true")))
}

func TestHook_CountsErrors(t *testing.T) {
	h := New()
	ctx := context.Background()
	hctx := newHookContext("f", "e1")
	hctx.Err = errors.New("provider down")

	require.NoError(t, h.Before(ctx, hctx))
	require.NoError(t, h.Error(ctx, hctx))
	require.NoError(t, h.Finally(ctx, hctx))

	assert.Equal(t, float64(1), testutil.ToFloat64(h.errorsTotal.WithLabelValues("f")))
	assert.Equal(t, float64(1), testutil.ToFloat64(h.evaluationsTotal.WithLabelValues("f", "false")))
}

func TestHook_DurationTracksEvaluationID(t *testing.T) {
	h := New()
	ctx := context.Background()

	hctx := newHookContext("f", "e1")
	require.NoError(t, h.Before(ctx, hctx))
	require.NoError(t, h.Finally(ctx, hctx))

	// The start entry is consumed on Finally.
	h.mu.Lock()
	assert.Empty(t, h.starts)
	h.mu.Unlock()

	count := testutil.CollectAndCount(h.duration)
	assert.Equal(t, 1, count)
}

func TestHook_StartsMapBounded(t *testing.T) {
	h := New()
	ctx := context.Background()

	// Evaluations whose Finally never runs must not grow the start map
	// without bound.
	for i := 0; i < maxTrackedStarts*2; i++ {
		hctx := newHookContext("f", strconv.Itoa(i))
		require.NoError(t, h.Before(ctx, hctx))
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	assert.LessOrEqual(t, len(h.starts), maxTrackedStarts)
}

func TestHook_WithClient(t *testing.T) {
	h := New()
	client, err := pennant.New(pennant.WithHooks(h))
	require.NoError(t, err)

	// Noop provider fails every evaluation; the hook must still observe a
	// full lifecycle.
	client.Bool(context.Background(), "missing", nil, false)

	assert.Equal(t, float64(1), testutil.ToFloat64(h.stagesTotal.WithLabelValues("before")))
	assert.Equal(t, float64(1), testutil.ToFloat64(h.errorsTotal.WithLabelValues("missing")))
	assert.Equal(t, float64(1), testutil.ToFloat64(h.stagesTotal.WithLabelValues("finally")))
}
