package pennant

import (
	"fmt"
	"time"
)

// Error types that may be produced during flag evaluation. A Client
// evaluation never returns these to the caller directly; they surface through
// ERROR-stage hook contexts, EvaluationDetails and operator logs.

// RuleTypeMismatchError indicates a targeting rule was applied to an
// attribute of an incompatible type (e.g. GREATER_THAN on a string).
type RuleTypeMismatchError struct {
	Attribute string
	Operator  Operator
	Want      Kind
	Got       Kind
}

func (e *RuleTypeMismatchError) Error() string {
	return fmt.Sprintf("rule type mismatch on attribute %q: operator %s wants %s, got %s",
		e.Attribute, e.Operator, e.Want, e.Got)
}

// HookTimeoutError indicates a hook callback exceeded its configured timeout.
type HookTimeoutError struct {
	HookName string
	Stage    Stage
	Timeout  time.Duration
}

func (e *HookTimeoutError) Error() string {
	return fmt.Sprintf("hook %s timed out after %s in stage %s", e.HookName, e.Timeout, e.Stage)
}

// HookExecutionError indicates a hook callback returned an error or panicked.
type HookExecutionError struct {
	HookName string
	Stage    Stage
	Err      error
}

func (e *HookExecutionError) Error() string {
	return fmt.Sprintf("hook %s failed in stage %s: %v", e.HookName, e.Stage, e.Err)
}

func (e *HookExecutionError) Unwrap() error {
	return e.Err
}

// ProviderErrorCode classifies provider failures.
type ProviderErrorCode string

const (
	ErrCodeFlagNotFound     ProviderErrorCode = "FLAG_NOT_FOUND"
	ErrCodeProviderNotReady ProviderErrorCode = "PROVIDER_NOT_READY"
	ErrCodeTypeMismatch     ProviderErrorCode = "TYPE_MISMATCH"
	ErrCodeGeneral          ProviderErrorCode = "GENERAL"
)

// ProviderError is the failure contract between a Provider and the pipeline:
// the provider was not ready, the flag was missing, or resolution failed
// internally.
type ProviderError struct {
	Code    ProviderErrorCode
	Message string
	Details map[string]any
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error [%s]: %s", e.Code, e.Message)
}

// NewProviderError builds a ProviderError without details.
func NewProviderError(code ProviderErrorCode, message string) *ProviderError {
	return &ProviderError{Code: code, Message: message}
}

// ConfigError indicates invalid client configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error [%s]: %s", e.Field, e.Message)
}
