package pennant

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithProvider(t *testing.T) {
	provider := &stubProvider{value: BoolValue(true)}
	client, err := New(WithProvider(provider), WithLogger(quietLogger()))

	require.NoError(t, err)
	assert.True(t, client.Bool(context.Background(), "f", nil, false))
}

func TestWithProvider_Nil(t *testing.T) {
	_, err := New(WithProvider(nil))
	assert.Error(t, err)
}

func TestWithHooks_AppendsAcrossCalls(t *testing.T) {
	j := &journal{}
	client, err := New(
		WithLogger(quietLogger()),
		WithHooks(newRecordingHook("a", PriorityNormal, j)),
		WithHooks(newRecordingHook("b", PriorityNormal, j)),
	)

	require.NoError(t, err)
	assert.Len(t, client.Hooks().Hooks(), 2)
}

func TestWithHookTimeout_AppliesToUnconfiguredHooks(t *testing.T) {
	j := &journal{}
	slow := newRecordingHook("slow", PriorityNormal, j)
	slow.sleep = time.Second
	slow.Meta.Config.Timeout = 0 // inherit the client default

	client, err := New(
		WithLogger(quietLogger()),
		WithProvider(&stubProvider{value: BoolValue(true)}),
		WithHookTimeout(50*time.Millisecond),
		WithHooks(slow),
	)
	require.NoError(t, err)

	start := time.Now()
	client.Bool(context.Background(), "f", nil, false)

	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestWithHookTimeout_RejectsNonPositive(t *testing.T) {
	_, err := New(WithHookTimeout(-time.Second))
	assert.Error(t, err)
}

func TestWithLogLevel_BuildsDefaultLogger(t *testing.T) {
	client, err := New(WithLogLevel("debug"))

	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestWithDefaultContext_NilMeansEmpty(t *testing.T) {
	provider := &stubProvider{value: BoolValue(true)}
	client, err := New(
		WithLogger(quietLogger()),
		WithProvider(provider),
		WithDefaultContext(nil),
	)
	require.NoError(t, err)

	client.Bool(context.Background(), "f", nil, false)
	assert.Empty(t, provider.lastAttrs)
}
