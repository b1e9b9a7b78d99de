// Package jobs schedules and runs the background work queue.
package jobs

import (
	"github.com/hibiken/asynq"
)

const (
	// TaskTypeReconcileSweep runs one reconciliation pass over pending claims.
	TaskTypeReconcileSweep = "reconcile:sweep"
	// TaskTypeStaleCheck flags claims that stayed unconfirmed past the age threshold.
	TaskTypeStaleCheck = "claims:stale_check"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// NewReconcileSweepTask builds the periodic claim reconciliation task. The
// sweep carries no payload: it always scans the full set of pending claims.
func NewReconcileSweepTask() *asynq.Task {
	return asynq.NewTask(TaskTypeReconcileSweep, nil, asynq.Queue(QueueDefault))
}

// NewStaleCheckTask builds the periodic stale-claim alert task.
func NewStaleCheckTask() *asynq.Task {
	return asynq.NewTask(TaskTypeStaleCheck, nil, asynq.Queue(QueueLow))
}
