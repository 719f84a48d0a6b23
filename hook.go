package pennant

import (
	"context"
	"time"
)

// Stage identifies a point in the evaluation lifecycle at which hooks run.
type Stage string

const (
	StageBefore  Stage = "before"
	StageAfter   Stage = "after"
	StageError   Stage = "error"
	StageFinally Stage = "finally"
)

// HookPriority orders hook execution. Lower values run first.
type HookPriority int

const (
	PriorityCritical HookPriority = iota
	PriorityHigh
	PriorityNormal
	PriorityLow
)

// String returns the priority name for logs.
func (p HookPriority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}

// DefaultHookTimeout bounds a single hook stage invocation unless the hook's
// config overrides it.
const DefaultHookTimeout = 5 * time.Second

// HookConfig controls per-hook failure and timeout policy.
type HookConfig struct {
	// ContinueOnError lets the manager proceed to the next hook when this
	// hook fails. When false, a failure stops the current stage.
	ContinueOnError bool

	// Timeout bounds each stage invocation of this hook.
	Timeout time.Duration
}

// DefaultHookConfig returns the default policy: continue on error, 5s timeout.
func DefaultHookConfig() HookConfig {
	return HookConfig{ContinueOnError: true, Timeout: DefaultHookTimeout}
}

// HookMetadata identifies a hook and carries its execution policy. Name is
// used for logging and error attribution; it should be non-empty and is
// recommended (not required) to be unique.
type HookMetadata struct {
	Name     string
	Priority HookPriority
	Config   HookConfig
}

// HookContext is the payload shared by every hook across the stages of one
// evaluation; it is never retained beyond that evaluation. Result is set
// before the AFTER stage, Err before the ERROR stage. Metadata always
// carries an "evaluation.id" entry identifying the evaluation across its
// stages.
type HookContext struct {
	FlagKey           string
	EvaluationContext Attributes
	Result            Value
	Err               error
	Metadata          map[string]string
}

// Hook is a cross-cutting callback invoked around every flag evaluation:
// Before runs ahead of the provider call, After on provider success, Error on
// provider failure, Finally unconditionally at the end. Callbacks may block;
// each invocation is individually subject to the hook's configured timeout.
type Hook interface {
	Metadata() HookMetadata

	Before(ctx context.Context, h *HookContext) error
	After(ctx context.Context, h *HookContext) error
	Error(ctx context.Context, h *HookContext) error
	Finally(ctx context.Context, h *HookContext) error
}

// BaseHook is a no-op Hook implementation meant for embedding, so concrete
// hooks override only the stages they care about.
type BaseHook struct {
	Meta HookMetadata
}

// NewBaseHook builds a BaseHook with the default config.
func NewBaseHook(name string, priority HookPriority) BaseHook {
	return BaseHook{Meta: HookMetadata{
		Name:     name,
		Priority: priority,
		Config:   DefaultHookConfig(),
	}}
}

func (b BaseHook) Metadata() HookMetadata { return b.Meta }

func (b BaseHook) Before(ctx context.Context, h *HookContext) error { return nil }

func (b BaseHook) After(ctx context.Context, h *HookContext) error { return nil }

func (b BaseHook) Error(ctx context.Context, h *HookContext) error { return nil }

func (b BaseHook) Finally(ctx context.Context, h *HookContext) error { return nil }
