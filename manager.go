package pennant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// HookManager owns the registered hook set and drives the
// before/after/error/finally lifecycle for one evaluation. Hooks execute
// sequentially in priority order (critical first); registration order breaks
// ties. The manager keeps no cross-call state beyond the hook list itself.
type HookManager struct {
	mu             sync.RWMutex
	hooks          []Hook // sorted by priority, stable
	failFast       bool
	defaultTimeout time.Duration
	logger         *slog.Logger
}

// ManagerOption configures a HookManager.
type ManagerOption func(*HookManager)

// WithManagerFailFast makes the first hook failure in a stage abort the
// remaining hooks of that stage regardless of the hooks' own policy.
func WithManagerFailFast(failFast bool) ManagerOption {
	return func(m *HookManager) { m.failFast = failFast }
}

// WithManagerLogger sets the logger used for hook failure reporting.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *HookManager) { m.logger = logger }
}

// WithManagerDefaultTimeout sets the timeout applied to hooks whose own
// config leaves Timeout unset.
func WithManagerDefaultTimeout(timeout time.Duration) ManagerOption {
	return func(m *HookManager) { m.defaultTimeout = timeout }
}

// NewHookManager creates an empty manager.
func NewHookManager(opts ...ManagerOption) *HookManager {
	m := &HookManager{
		logger:         slog.Default(),
		defaultTimeout: DefaultHookTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddHook registers a hook and re-sorts the hook list by priority. The sort
// is stable: hooks sharing a priority keep their registration order.
// Registration is expected at configuration time; the list is swapped
// copy-on-write so in-flight ExecuteHooks iterations over a snapshot are
// never disturbed.
func (m *HookManager) AddHook(h Hook) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := make([]Hook, 0, len(m.hooks)+1)
	next = append(next, m.hooks...)
	next = append(next, h)
	sort.SliceStable(next, func(i, j int) bool {
		return next[i].Metadata().Priority < next[j].Metadata().Priority
	})
	m.hooks = next
}

// Hooks returns the current snapshot in execution order.
func (m *HookManager) Hooks() []Hook {
	return m.snapshot()
}

func (m *HookManager) snapshot() []Hook {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hooks
}

// stageStatus is the explicit outcome of one hook invocation. The manager
// applies its continue/stop policy by matching on it instead of propagating
// panics or sentinel errors through the call stack.
type stageStatus int

const (
	stageOK stageStatus = iota
	stageTimedOut
	stageFailed
)

type stageResult struct {
	status stageStatus
	err    error
}

// ExecuteHooks dispatches one lifecycle stage to every registered hook, in
// order, sharing the given HookContext. Per-hook timeouts come from each
// hook's own config. A hook failure either stops the stage (manager
// fail-fast, or the hook's ContinueOnError=false) and is returned, or is
// logged and skipped. The ERROR stage is a no-op unless h.Err is set.
func (m *HookManager) ExecuteHooks(ctx context.Context, stage Stage, h *HookContext) error {
	if stage == StageError && h.Err == nil {
		return nil
	}

	for _, hook := range m.snapshot() {
		meta := hook.Metadata()
		res := m.runHook(ctx, hook, stage, h)

		switch res.status {
		case stageOK:
			continue
		case stageTimedOut, stageFailed:
			if m.failFast || !meta.Config.ContinueOnError {
				return res.err
			}
			m.logger.Warn("hook failed, continuing",
				"hook", meta.Name,
				"stage", string(stage),
				"flag_key", h.FlagKey,
				"error", res.err,
			)
		}
	}
	return nil
}

// runHook invokes one callback under the hook's timeout. A callback that
// outlives its timeout is abandoned (its context is cancelled, the goroutine
// is left to drain) and reported as timed out; sibling hooks and the overall
// evaluation are unaffected.
func (m *HookManager) runHook(ctx context.Context, hook Hook, stage Stage, h *HookContext) stageResult {
	meta := hook.Metadata()
	timeout := meta.Config.Timeout
	if timeout <= 0 {
		timeout = m.defaultTimeout
	}
	if timeout <= 0 {
		timeout = DefaultHookTimeout
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("panic: %v", r)
			}
		}()
		done <- dispatch(callCtx, hook, stage, h)
	}()

	select {
	case err := <-done:
		if err != nil {
			// A callback that returns the deadline error is a timeout, not a
			// failure; which select branch observes it first is racy.
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				return stageResult{status: stageTimedOut, err: &HookTimeoutError{
					HookName: meta.Name,
					Stage:    stage,
					Timeout:  timeout,
				}}
			}
			return stageResult{status: stageFailed, err: &HookExecutionError{
				HookName: meta.Name,
				Stage:    stage,
				Err:      err,
			}}
		}
		return stageResult{status: stageOK}

	case <-callCtx.Done():
		if ctx.Err() != nil {
			// Caller cancellation, not a hook timeout.
			return stageResult{status: stageFailed, err: &HookExecutionError{
				HookName: meta.Name,
				Stage:    stage,
				Err:      ctx.Err(),
			}}
		}
		return stageResult{status: stageTimedOut, err: &HookTimeoutError{
			HookName: meta.Name,
			Stage:    stage,
			Timeout:  timeout,
		}}
	}
}

func dispatch(ctx context.Context, hook Hook, stage Stage, h *HookContext) error {
	switch stage {
	case StageBefore:
		return hook.Before(ctx, h)
	case StageAfter:
		return hook.After(ctx, h)
	case StageError:
		return hook.Error(ctx, h)
	case StageFinally:
		return hook.Finally(ctx, h)
	default:
		return fmt.Errorf("unknown stage: %s", stage)
	}
}
