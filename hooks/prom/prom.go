// Package prom provides a Prometheus metrics hook for pennant.
//
// All collectors are registered in a caller-supplied [prometheus.Registerer]
// (or a fresh registry) so that only pennant metrics appear where the caller
// exposes them.
package prom

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/OrlandoBitencourt/pennant"
)

// Hook records evaluation metrics from the hook lifecycle: stage counts,
// provider errors and end-to-end evaluation latency (measured from Before to
// Finally per evaluation id).
type Hook struct {
	pennant.BaseHook

	Registry *prometheus.Registry

	stagesTotal      *prometheus.CounterVec
	evaluationsTotal *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	duration         *prometheus.HistogramVec

	mu     sync.Mutex
	starts map[string]time.Time // evaluation id -> Before timestamp
}

// An evaluation whose Finally never runs (a higher-priority hook stopped the
// stage under fail-fast) would leave its start entry behind forever. The map
// is bounded instead: stale entries are swept once it fills up.
const (
	maxTrackedStarts = 1024
	startEntryTTL    = time.Minute
)

// New creates the hook with a fresh registry, registered at Low priority so
// that metrics observe the work of every other hook.
func New() *Hook {
	reg := prometheus.NewRegistry()
	h := NewWithRegisterer(reg)
	h.Registry = reg
	return h
}

// NewWithRegisterer registers the collectors in reg.
func NewWithRegisterer(reg prometheus.Registerer) *Hook {
	h := &Hook{
		BaseHook: pennant.NewBaseHook("prometheus-metrics", pennant.PriorityLow),
		starts:   make(map[string]time.Time),

		stagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pennant_hook_stages_total",
			Help: "Total number of hook stage dispatches observed.",
		}, []string{"stage"}),

		evaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pennant_evaluations_total",
			Help: "Total number of flag evaluations.",
		}, []string{"flag_key", "success"}),

		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pennant_evaluation_errors_total",
			Help: "Total number of evaluations that degraded to the default value.",
		}, []string{"flag_key"}),

		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pennant_evaluation_duration_seconds",
			Help:    "Flag evaluation latency in seconds, Before to Finally.",
			Buckets: prometheus.DefBuckets,
		}, []string{"flag_key"}),
	}

	reg.MustRegister(h.stagesTotal, h.evaluationsTotal, h.errorsTotal, h.duration)
	return h
}

func (h *Hook) Before(ctx context.Context, hctx *pennant.HookContext) error {
	h.stagesTotal.WithLabelValues(string(pennant.StageBefore)).Inc()
	if id, ok := hctx.Metadata["evaluation.id"]; ok {
		now := time.Now()
		h.mu.Lock()
		if len(h.starts) >= maxTrackedStarts {
			for staleID, at := range h.starts {
				if now.Sub(at) > startEntryTTL || len(h.starts) >= maxTrackedStarts {
					delete(h.starts, staleID)
				}
			}
		}
		h.starts[id] = now
		h.mu.Unlock()
	}
	return nil
}

func (h *Hook) After(ctx context.Context, hctx *pennant.HookContext) error {
	h.stagesTotal.WithLabelValues(string(pennant.StageAfter)).Inc()
	return nil
}

func (h *Hook) Error(ctx context.Context, hctx *pennant.HookContext) error {
	h.stagesTotal.WithLabelValues(string(pennant.StageError)).Inc()
	h.errorsTotal.WithLabelValues(hctx.FlagKey).Inc()
	return nil
}

func (h *Hook) Finally(ctx context.Context, hctx *pennant.HookContext) error {
	h.stagesTotal.WithLabelValues(string(pennant.StageFinally)).Inc()
	h.evaluationsTotal.WithLabelValues(hctx.FlagKey, strconv.FormatBool(hctx.Err == nil)).Inc()

	if id, ok := hctx.Metadata["evaluation.id"]; ok {
		h.mu.Lock()
		start, found := h.starts[id]
		delete(h.starts, id)
		h.mu.Unlock()
		if found {
			h.duration.WithLabelValues(hctx.FlagKey).Observe(time.Since(start).Seconds())
		}
	}
	return nil
}
