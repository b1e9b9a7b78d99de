// Package metrics exposes Prometheus collectors for the checkout bot.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kiris-store/checkout-bot/internal/state"
)

var (
	botUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Total number of bot updates handled labeled by handler and status",
		},
		[]string{"handler", "status"},
	)
	handlerDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "handler_duration_seconds",
			Help:    "Duration of bot update handlers in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler"},
	)
	stateTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "state_transitions_total",
			Help: "Total number of session state transitions",
		},
		[]string{"from", "to"},
	)
	quotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "price_quotes_total",
			Help: "Total number of price quotes labeled by outcome",
		},
		[]string{"status"},
	)
	claimsCommittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claims_committed_total",
			Help: "Total number of payment claims appended to the ledger",
		},
		[]string{"network"},
	)
	reconcileSweepSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reconcile_sweep_duration_seconds",
			Help:    "Duration of reconciliation sweeps in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
	claimsApprovedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claims_approved_total",
			Help: "Total number of claims confirmed on chain and marked approved",
		},
		[]string{"network"},
	)
	verifierErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verifier_errors_total",
			Help: "Total number of failed chain verifier calls",
		},
		[]string{"network"},
	)
	staleClaims = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stale_unapproved_claims",
			Help: "Number of claims unapproved past the configured age threshold",
		},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by type and severity",
		},
		[]string{"type", "severity"},
	)
)

func init() {
	state.RegisterTransitionRecorder(RecordStateTransition)
}

// RecordUpdate increments handler counters and records duration.
func RecordUpdate(handler, status string, duration time.Duration) {
	if handler == "" {
		handler = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	botUpdatesTotal.WithLabelValues(handler, status).Inc()
	handlerDurationSeconds.WithLabelValues(handler).Observe(duration.Seconds())
}

// RecordStateTransition tracks session FSM transitions.
func RecordStateTransition(from, to string) {
	if from == "" {
		from = "unknown"
	}
	if to == "" {
		to = "unknown"
	}

	stateTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordQuote tracks price conversion outcomes.
func RecordQuote(status string) {
	if status == "" {
		status = "unknown"
	}

	quotesTotal.WithLabelValues(status).Inc()
}

// RecordClaimCommitted tracks ledger appends per network.
func RecordClaimCommitted(network string) {
	claimsCommittedTotal.WithLabelValues(network).Inc()
}

// RecordSweep records the duration of a full reconciliation sweep.
func RecordSweep(duration time.Duration) {
	reconcileSweepSeconds.Observe(duration.Seconds())
}

// RecordClaimApproved tracks on-chain confirmed claims per network.
func RecordClaimApproved(network string) {
	claimsApprovedTotal.WithLabelValues(network).Inc()
}

// RecordVerifierError tracks failed explorer calls per network.
func RecordVerifierError(network string) {
	verifierErrorsTotal.WithLabelValues(network).Inc()
}

// SetStaleClaims updates the stale unapproved claims gauge.
func SetStaleClaims(count int) {
	staleClaims.Set(float64(count))
}

// RecordError increments error counters with metadata.
func RecordError(errType, severity string) {
	if errType == "" {
		errType = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}

	errorsTotal.WithLabelValues(errType, severity).Inc()
}
