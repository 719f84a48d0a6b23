package pennant

import (
	"log/slog"
	"time"
)

// Option configures a pennant Client.
type Option func(*clientConfig) error

// clientConfig holds internal configuration.
type clientConfig struct {
	provider       Provider
	hooks          []Hook
	defaultContext *EvaluationContext

	failFast    bool
	hookTimeout time.Duration

	logger    *slog.Logger
	logLevel  string
	telemetry bool
}

// WithProvider sets the flag provider. Default: NoopProvider, which resolves
// nothing so every evaluation returns the caller's default.
//
// Example: pennant.WithProvider(memory.New(flags...))
func WithProvider(p Provider) Option {
	return func(c *clientConfig) error {
		if p == nil {
			return &ConfigError{Field: "provider", Message: "provider cannot be nil"}
		}
		c.provider = p
		return nil
	}
}

// WithHooks registers hooks at construction time. Hooks run around every
// evaluation in priority order; registration order breaks priority ties.
func WithHooks(hooks ...Hook) Option {
	return func(c *clientConfig) error {
		for _, h := range hooks {
			if h == nil {
				return &ConfigError{Field: "hooks", Message: "hook cannot be nil"}
			}
			if h.Metadata().Name == "" {
				return &ConfigError{Field: "hooks", Message: "hook name cannot be empty"}
			}
		}
		c.hooks = append(c.hooks, hooks...)
		return nil
	}
}

// WithDefaultContext sets a context merged under every evaluation's supplied
// context (the supplied context wins on attribute conflicts).
func WithDefaultContext(evalCtx *EvaluationContext) Option {
	return func(c *clientConfig) error {
		c.defaultContext = evalCtx
		return nil
	}
}

// WithFailFast makes the first hook failure in any stage abort the remaining
// hooks of that stage, overriding the hooks' own ContinueOnError policy.
// Default: false.
func WithFailFast(failFast bool) Option {
	return func(c *clientConfig) error {
		c.failFast = failFast
		return nil
	}
}

// WithHookTimeout overrides the default per-stage hook timeout applied to
// hooks whose config leaves Timeout unset.
func WithHookTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) error {
		if timeout <= 0 {
			return &ConfigError{Field: "hook_timeout", Message: "timeout must be positive"}
		}
		c.hookTimeout = timeout
		return nil
	}
}

// WithLogger sets the structured logger. Default: a JSON logger to stderr at
// info level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) error {
		if logger == nil {
			return &ConfigError{Field: "logger", Message: "logger cannot be nil"}
		}
		c.logger = logger
		return nil
	}
}

// WithLogLevel sets the minimum level of the default logger: "debug",
// "info", "warn" or "error". Ignored when WithLogger is used.
func WithLogLevel(level string) Option {
	return func(c *clientConfig) error {
		c.logLevel = level
		return nil
	}
}

// WithTelemetry enables OpenTelemetry traces and metrics around evaluations,
// reported against the globally registered providers.
func WithTelemetry(enabled bool) Option {
	return func(c *clientConfig) error {
		c.telemetry = enabled
		return nil
	}
}
