package jobs

import (
	"log/slog"
	"net/http"
)

// NewSweepTriggerHandler returns an HTTP handler that enqueues an immediate
// reconciliation sweep, so operators can force one between scheduled runs.
func NewSweepTriggerHandler(m Manager, log *slog.Logger) http.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		info, err := m.Enqueue(r.Context(), NewReconcileSweepTask())
		if err != nil {
			log.ErrorContext(r.Context(), "failed to enqueue reconcile sweep", "error", err)
			http.Error(w, "failed to enqueue sweep", http.StatusInternalServerError)
			return
		}

		log.InfoContext(r.Context(), "reconcile sweep triggered", "task_id", info.ID)
		w.WriteHeader(http.StatusAccepted)
	}
}
