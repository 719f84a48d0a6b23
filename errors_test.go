package pennant

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRuleTypeMismatchError_Message(t *testing.T) {
	err := &RuleTypeMismatchError{
		Attribute: "age",
		Operator:  OperatorGreaterThan,
		Want:      KindNumber,
		Got:       KindString,
	}
	assert.Contains(t, err.Error(), "age")
	assert.Contains(t, err.Error(), "GREATER_THAN")
	assert.Contains(t, err.Error(), "number")
	assert.Contains(t, err.Error(), "string")
}

func TestHookTimeoutError_Message(t *testing.T) {
	err := &HookTimeoutError{HookName: "audit", Stage: StageBefore, Timeout: 100 * time.Millisecond}
	assert.Contains(t, err.Error(), "audit")
	assert.Contains(t, err.Error(), "100ms")
	assert.Contains(t, err.Error(), "before")
}

func TestHookExecutionError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &HookExecutionError{HookName: "audit", Stage: StageAfter, Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "audit")
}

func TestProviderError_Message(t *testing.T) {
	err := NewProviderError(ErrCodeFlagNotFound, "flag missing")
	assert.Contains(t, err.Error(), "FLAG_NOT_FOUND")
	assert.Contains(t, err.Error(), "flag missing")
}

func TestConfigError_Message(t *testing.T) {
	err := &ConfigError{Field: "provider", Message: "cannot be nil"}
	assert.Contains(t, err.Error(), "provider")
	assert.Contains(t, err.Error(), "cannot be nil")
}
