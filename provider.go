package pennant

import "context"

// ProviderState tracks a provider's lifecycle. Providers start NotReady,
// move to Ready after a successful Initialize and end in Shutdown; Error,
// Degraded and Reconnecting are side states a provider may report while
// unhealthy.
type ProviderState string

const (
	StateNotReady     ProviderState = "NOT_READY"
	StateReady        ProviderState = "READY"
	StateError        ProviderState = "ERROR"
	StateDegraded     ProviderState = "DEGRADED"
	StateReconnecting ProviderState = "RECONNECTING"
	StateShutdown     ProviderState = "SHUTDOWN"
)

// ProviderMetadata identifies a provider implementation.
type ProviderMetadata struct {
	Name string
}

// Provider is the pluggable backend that performs the actual flag-value
// decision. Evaluate receives the flattened evaluation attributes and
// returns the resolved value, or a *ProviderError when the provider is not
// ready, the flag is unknown or resolution fails internally. How a provider
// stores or fetches flag definitions is its own concern.
type Provider interface {
	Metadata() ProviderMetadata
	State() ProviderState

	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error

	Evaluate(ctx context.Context, flagKey string, attrs Attributes) (Value, error)
}

// NoopProvider is the default provider: always ready, never resolves a flag,
// so every evaluation falls back to the caller's default value.
type NoopProvider struct{}

func (NoopProvider) Metadata() ProviderMetadata { return ProviderMetadata{Name: "noop"} }

func (NoopProvider) State() ProviderState { return StateReady }

func (NoopProvider) Initialize(ctx context.Context) error { return nil }

func (NoopProvider) Shutdown(ctx context.Context) error { return nil }

func (NoopProvider) Evaluate(ctx context.Context, flagKey string, attrs Attributes) (Value, error) {
	return Null, &ProviderError{
		Code:    ErrCodeFlagNotFound,
		Message: "noop provider resolves no flags",
		Details: map[string]any{"flag_key": flagKey},
	}
}
