// Package pennant is a feature-flag evaluation client. It resolves a flag
// key plus a contextual attribute set into a typed value, delegating the
// decision to a pluggable Provider while running a deterministic lifecycle
// of cross-cutting hooks (before/after/error/finally) around every
// evaluation.
//
// Evaluations never fail the caller: on any internal error the configured
// default value is returned, and diagnostics surface through ERROR-stage
// hooks, EvaluationDetails and logs.
package pennant

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/OrlandoBitencourt/pennant/internal/logging"
	"github.com/OrlandoBitencourt/pennant/internal/telemetry"
)

// Client is the main entry point for pennant. Construct one per process (or
// per test) and pass it by reference; there is no package-level singleton.
type Client struct {
	provider       Provider
	hooks          *HookManager
	defaultContext *EvaluationContext
	logger         *slog.Logger
	telemetry      *telemetry.Telemetry
}

// New creates a new pennant client with the given options.
//
// Example:
//
//	client, err := pennant.New(
//	    pennant.WithProvider(provider),
//	    pennant.WithHooks(auditHook, metricsHook),
//	    pennant.WithDefaultContext(pennant.NewEvaluationContext(globalAttrs)),
//	)
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.provider == nil {
		cfg.provider = NoopProvider{}
	}
	if cfg.logger == nil {
		cfg.logger = logging.New(cfg.logLevel)
	}
	if cfg.defaultContext == nil {
		cfg.defaultContext = EmptyContext()
	}

	managerOpts := []ManagerOption{
		WithManagerFailFast(cfg.failFast),
		WithManagerLogger(cfg.logger),
	}
	if cfg.hookTimeout > 0 {
		managerOpts = append(managerOpts, WithManagerDefaultTimeout(cfg.hookTimeout))
	}

	manager := NewHookManager(managerOpts...)
	for _, h := range cfg.hooks {
		manager.AddHook(h)
	}

	c := &Client{
		provider:       cfg.provider,
		hooks:          manager,
		defaultContext: cfg.defaultContext,
		logger:         cfg.logger,
	}

	if cfg.telemetry {
		tel, err := telemetry.New()
		if err != nil {
			return nil, err
		}
		c.telemetry = tel
	}

	return c, nil
}

// Start initializes the provider. It must be called before evaluating flags
// against providers that require initialization; evaluating through a
// NotReady provider degrades to defaults.
func (c *Client) Start(ctx context.Context) error {
	return c.provider.Initialize(ctx)
}

// Stop shuts the provider down. Evaluations after Stop degrade to defaults.
func (c *Client) Stop(ctx context.Context) error {
	return c.provider.Shutdown(ctx)
}

// Hooks exposes the hook manager, mainly for inspection in tests.
func (c *Client) Hooks() *HookManager { return c.hooks }

// Bool evaluates a flag and returns a boolean result, or defaultVal if the
// flag is missing, the provider fails or the resolved value is not a bool.
//
// Example:
//
//	enabled := client.Bool(ctx, "new-checkout", evalCtx, false)
func (c *Client) Bool(ctx context.Context, flagKey string, evalCtx *EvaluationContext, defaultVal bool) bool {
	v, _ := c.evaluate(ctx, flagKey, evalCtx, BoolValue(defaultVal))
	if b, ok := v.AsBool(); ok {
		return b
	}
	return defaultVal
}

// String evaluates a flag and returns a string result, or defaultVal on any
// failure or kind mismatch.
func (c *Client) String(ctx context.Context, flagKey string, evalCtx *EvaluationContext, defaultVal string) string {
	v, _ := c.evaluate(ctx, flagKey, evalCtx, StringValue(defaultVal))
	if s, ok := v.AsString(); ok {
		return s
	}
	return defaultVal
}

// Int evaluates a flag and returns an integer result, or defaultVal on any
// failure or kind mismatch. Fractional values truncate.
func (c *Client) Int(ctx context.Context, flagKey string, evalCtx *EvaluationContext, defaultVal int) int {
	v, _ := c.evaluate(ctx, flagKey, evalCtx, NumberValue(float64(defaultVal)))
	if n, ok := v.AsNumber(); ok {
		return int(n)
	}
	return defaultVal
}

// Float64 evaluates a flag and returns a float result, or defaultVal on any
// failure or kind mismatch.
func (c *Client) Float64(ctx context.Context, flagKey string, evalCtx *EvaluationContext, defaultVal float64) float64 {
	v, _ := c.evaluate(ctx, flagKey, evalCtx, NumberValue(defaultVal))
	if n, ok := v.AsNumber(); ok {
		return n
	}
	return defaultVal
}

// Value evaluates a flag and returns the raw resolved value, or defaultVal
// on any failure.
func (c *Client) Value(ctx context.Context, flagKey string, evalCtx *EvaluationContext, defaultVal Value) Value {
	v, _ := c.evaluate(ctx, flagKey, evalCtx, defaultVal)
	return v
}

// EvaluationReason explains which path produced an evaluation's value.
type EvaluationReason string

const (
	ReasonResolved EvaluationReason = "RESOLVED"
	ReasonDefault  EvaluationReason = "DEFAULT"
	ReasonError    EvaluationReason = "ERROR"
)

// EvaluationDetails is the full result of one evaluation, for callers that
// need to distinguish a resolved value from a substituted default. ErrorCode
// classifies the failure when Reason is not RESOLVED; it is empty on success.
type EvaluationDetails struct {
	FlagKey   string
	Value     Value
	Reason    EvaluationReason
	ErrorCode ProviderErrorCode
	Err       error
}

// EvaluateDetails performs a full evaluation and reports how the value was
// produced. Like every evaluation path it never returns an error to the
// caller; failures are carried in the details.
func (c *Client) EvaluateDetails(ctx context.Context, flagKey string, evalCtx *EvaluationContext, defaultVal Value) EvaluationDetails {
	v, err := c.evaluate(ctx, flagKey, evalCtx, defaultVal)
	details := EvaluationDetails{FlagKey: flagKey, Value: v, Err: err}

	if err == nil {
		details.Reason = ReasonResolved
		return details
	}

	var perr *ProviderError
	if errors.As(err, &perr) {
		details.ErrorCode = perr.Code
		if perr.Code == ErrCodeFlagNotFound {
			// Unknown flag is a clean fallback, not an operational error.
			details.Reason = ReasonDefault
			return details
		}
	} else {
		// Hook failures and other non-provider errors.
		details.ErrorCode = ErrCodeGeneral
	}
	details.Reason = ReasonError
	return details
}

// evaluate runs the full pipeline for one flag:
//
//	resolve context -> BEFORE hooks -> provider -> AFTER | ERROR hooks ->
//	FINALLY hooks -> value or default.
//
// The returned error is diagnostic only; the returned value is always
// usable. FINALLY runs exactly once per call regardless of which branch
// executed.
func (c *Client) evaluate(ctx context.Context, flagKey string, evalCtx *EvaluationContext, defaultVal Value) (value Value, evalErr error) {
	resolved := c.resolveContext(evalCtx)
	attrs := resolved.Flatten()

	hctx := &HookContext{
		FlagKey:           flagKey,
		EvaluationContext: attrs,
		Result:            Null,
		Metadata: map[string]string{
			"evaluation.id": uuid.NewString(),
			"provider.name": c.provider.Metadata().Name,
		},
	}

	start := time.Now()
	spanCtx := ctx
	if c.telemetry != nil {
		var end func()
		spanCtx, end = c.startSpan(ctx, flagKey)
		defer end()
	}

	defer func() {
		// FINALLY fires exactly once, whatever happened above.
		if err := c.hooks.ExecuteHooks(spanCtx, StageFinally, hctx); err != nil {
			c.hookFailure(spanCtx, flagKey, StageFinally, err)
		}
		if c.telemetry != nil {
			outcome := "success"
			if evalErr != nil {
				outcome = "error"
			}
			c.telemetry.RecordEvaluation(ctx, flagKey, outcome, time.Since(start))
		}
	}()

	if err := c.hooks.ExecuteHooks(spanCtx, StageBefore, hctx); err != nil {
		// Fail-fast BEFORE failure: skip the provider, surface through the
		// ERROR stage, degrade to the default.
		c.hookFailure(spanCtx, flagKey, StageBefore, err)
		hctx.Err = err
		if errErr := c.hooks.ExecuteHooks(spanCtx, StageError, hctx); errErr != nil {
			c.hookFailure(spanCtx, flagKey, StageError, errErr)
		}
		return defaultVal, err
	}

	result, err := c.provider.Evaluate(spanCtx, flagKey, attrs)
	if err != nil {
		c.providerFailure(flagKey, err)
		hctx.Err = err
		if errErr := c.hooks.ExecuteHooks(spanCtx, StageError, hctx); errErr != nil {
			c.hookFailure(spanCtx, flagKey, StageError, errErr)
		}
		return defaultVal, err
	}

	hctx.Result = result
	if afterErr := c.hooks.ExecuteHooks(spanCtx, StageAfter, hctx); afterErr != nil {
		// The provider already resolved a value; an AFTER failure is logged
		// but does not withhold the result.
		c.hookFailure(spanCtx, flagKey, StageAfter, afterErr)
	}

	return result, nil
}

// resolveContext merges the client's default context with the supplied one;
// the supplied context wins on attribute conflicts.
func (c *Client) resolveContext(evalCtx *EvaluationContext) *EvaluationContext {
	if evalCtx == nil {
		return c.defaultContext
	}
	return c.defaultContext.Merge(evalCtx)
}

func (c *Client) startSpan(ctx context.Context, flagKey string) (context.Context, func()) {
	spanCtx, span := c.telemetry.StartEvaluation(ctx, flagKey, c.provider.Metadata().Name)
	return spanCtx, func() { span.End() }
}

func (c *Client) hookFailure(ctx context.Context, flagKey string, stage Stage, err error) {
	c.logger.Warn("hook stage failed",
		"flag_key", flagKey,
		"stage", string(stage),
		"error", err,
	)
	if c.telemetry == nil {
		return
	}
	var timeoutErr *HookTimeoutError
	var execErr *HookExecutionError
	switch {
	case errors.As(err, &timeoutErr):
		c.telemetry.RecordHookFailure(ctx, timeoutErr.HookName, string(stage), true)
	case errors.As(err, &execErr):
		c.telemetry.RecordHookFailure(ctx, execErr.HookName, string(stage), false)
	}
}

func (c *Client) providerFailure(flagKey string, err error) {
	c.logger.Warn("provider evaluation failed, substituting default",
		"flag_key", flagKey,
		"provider", c.provider.Metadata().Name,
		"error", err,
	)
}
