package audit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OrlandoBitencourt/pennant"
)

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})), &buf
}

func newHookContext(flagKey string) *pennant.HookContext {
	return &pennant.HookContext{
		FlagKey:           flagKey,
		EvaluationContext: pennant.Attributes{},
		Metadata:          map[string]string{"evaluation.id": "e1"},
	}
}

func TestNew_Defaults(t *testing.T) {
	h := New(nil)

	assert.Equal(t, "audit-log", h.Metadata().Name)
	assert.Equal(t, pennant.PriorityHigh, h.Metadata().Priority)
}

func TestHook_LogsLifecycle(t *testing.T) {
	logger, buf := captureLogger()
	h := New(logger)
	ctx := context.Background()

	hctx := newHookContext("my-flag")
	require.NoError(t, h.Before(ctx, hctx))

	hctx.Result = pennant.BoolValue(true)
	require.NoError(t, h.After(ctx, hctx))

	out := buf.String()
	assert.Contains(t, out, "flag evaluation started")
	assert.Contains(t, out, "flag evaluated")
	assert.Contains(t, out, "my-flag")
	assert.Contains(t, out, "e1")
}

func TestHook_LogsError(t *testing.T) {
	logger, buf := captureLogger()
	h := New(logger)

	hctx := newHookContext("my-flag")
	hctx.Err = errors.New("provider down")
	require.NoError(t, h.Error(context.Background(), hctx))

	assert.Contains(t, buf.String(), "degraded to default")
	assert.Contains(t, buf.String(), "provider down")
}

func TestHook_WithClient(t *testing.T) {
	logger, buf := captureLogger()
	client, err := pennant.New(
		pennant.WithLogger(logger),
		pennant.WithHooks(New(logger)),
	)
	require.NoError(t, err)

	client.Bool(context.Background(), "missing", nil, false)

	assert.Contains(t, buf.String(), "flag evaluation started")
	assert.Contains(t, buf.String(), "degraded to default")
}
