// Package audit provides a structured-logging hook that records every flag
// evaluation: which flag, which evaluation, what it resolved to, and any
// failure along the way.
package audit

import (
	"context"
	"log/slog"

	"github.com/OrlandoBitencourt/pennant"
)

// Hook logs the evaluation lifecycle via slog. It runs at High priority so
// the audit trail observes the evaluation before lower-priority hooks act
// on it.
type Hook struct {
	pennant.BaseHook
	logger *slog.Logger
}

// New creates the hook. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Hook {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hook{
		BaseHook: pennant.NewBaseHook("audit-log", pennant.PriorityHigh),
		logger:   logger,
	}
}

func (h *Hook) Before(ctx context.Context, hctx *pennant.HookContext) error {
	h.logger.Debug("flag evaluation started",
		"flag_key", hctx.FlagKey,
		"evaluation_id", hctx.Metadata["evaluation.id"],
		"attributes", len(hctx.EvaluationContext),
	)
	return nil
}

func (h *Hook) After(ctx context.Context, hctx *pennant.HookContext) error {
	h.logger.Info("flag evaluated",
		"flag_key", hctx.FlagKey,
		"evaluation_id", hctx.Metadata["evaluation.id"],
		"value", hctx.Result.String(),
	)
	return nil
}

func (h *Hook) Error(ctx context.Context, hctx *pennant.HookContext) error {
	h.logger.Warn("flag evaluation degraded to default",
		"flag_key", hctx.FlagKey,
		"evaluation_id", hctx.Metadata["evaluation.id"],
		"error", hctx.Err,
	)
	return nil
}
