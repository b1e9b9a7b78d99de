package handlers

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/kiris-store/checkout-bot/internal/reconciler"
)

// StaleCheckHandler flags claims that stayed unconfirmed past the configured
// age threshold, independently of the reconciliation sweeps.
type StaleCheckHandler struct {
	rec *reconciler.Reconciler
	log *slog.Logger
}

// NewStaleCheckHandler builds the stale-claim alert task handler.
func NewStaleCheckHandler(rec *reconciler.Reconciler, log *slog.Logger) *StaleCheckHandler {
	if log == nil {
		log = slog.Default()
	}

	return &StaleCheckHandler{rec: rec, log: log}
}

// ProcessTask runs one stale scan. A failed scan is retried by asynq.
func (h *StaleCheckHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	stale, err := h.rec.StaleCheck(ctx)
	if err != nil {
		h.log.ErrorContext(ctx, "stale claim check failed",
			slog.String("task_type", t.Type()),
			slog.Any("error", err))
		return err
	}

	h.log.InfoContext(ctx, "stale claim check completed",
		slog.String("task_type", t.Type()),
		slog.Int("stale", stale),
	)

	return nil
}
