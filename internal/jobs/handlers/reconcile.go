// Package handlers holds the asynq task handlers for background jobs.
package handlers

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/kiris-store/checkout-bot/internal/reconciler"
)

// ReconcileSweepHandler runs the claim reconciliation sweep when the
// scheduled task fires.
type ReconcileSweepHandler struct {
	rec *reconciler.Reconciler
	log *slog.Logger
}

// NewReconcileSweepHandler builds the sweep task handler.
func NewReconcileSweepHandler(rec *reconciler.Reconciler, log *slog.Logger) *ReconcileSweepHandler {
	if log == nil {
		log = slog.Default()
	}

	return &ReconcileSweepHandler{rec: rec, log: log}
}

// ProcessTask runs one sweep. A failed sweep is retried by asynq; a sweep that
// ran but could not decide every claim is a success, the next run revisits them.
func (h *ReconcileSweepHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	result, err := h.rec.Sweep(ctx)
	if err != nil {
		h.log.ErrorContext(ctx, "reconcile sweep failed",
			slog.String("task_type", t.Type()),
			slog.Any("error", err))
		return err
	}

	h.log.InfoContext(ctx, "reconcile sweep completed",
		slog.String("task_type", t.Type()),
		slog.Int("scanned", result.Scanned),
		slog.Int("approved", result.Approved),
		slog.Int("errors", result.Errors),
		slog.Int("stale", result.Stale),
	)

	return nil
}
