// Package reconciler confirms pending payment claims against chain explorers.
package reconciler

import (
	"context"
	"log/slog"
	"time"

	"github.com/kiris-store/checkout-bot/internal/chain"
	"github.com/kiris-store/checkout-bot/internal/ledger"
	"github.com/kiris-store/checkout-bot/internal/orders"
	"github.com/kiris-store/checkout-bot/pkg/config"
	"github.com/kiris-store/checkout-bot/pkg/metrics"
)

// promotedStatus is the order status set when a confirmed claim promotes its
// order in the backend.
const promotedStatus = "processing"

// Result summarizes one sweep over the ledger.
type Result struct {
	Scanned  int
	Approved int
	Errors   int
	Stale    int
}

// Reconciler walks unapproved claims and marks the ones whose transaction is
// confirmed on chain. Each sweep is independent: a claim that cannot be
// decided this run is simply revisited on the next one.
type Reconciler struct {
	store     ledger.Store
	verifiers chain.Registry
	gateway   orders.Gateway
	cfg       config.ReconcilerConfig
	log       *slog.Logger
	now       func() time.Time
}

// New builds a reconciler. The gateway may be nil when order promotion is
// disabled.
func New(store ledger.Store, verifiers chain.Registry, gateway orders.Gateway, cfg config.ReconcilerConfig, log *slog.Logger) *Reconciler {
	if log == nil {
		log = slog.Default()
	}

	return &Reconciler{
		store:     store,
		verifiers: verifiers,
		gateway:   gateway,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// Sweep runs one reconciliation pass. Verifier failures are logged and leave
// the claim pending; they never abort the sweep or mark anything approved.
func (r *Reconciler) Sweep(ctx context.Context) (Result, error) {
	started := r.now()

	claims, err := r.store.ListUnapproved(ctx)
	if err != nil {
		return Result{}, err
	}

	result := Result{Scanned: len(claims)}

	for i := range claims {
		claim := &claims[i]

		if err := ctx.Err(); err != nil {
			return result, err
		}

		confirmed, err := r.checkClaim(ctx, claim)
		if err != nil {
			result.Errors++
			metrics.RecordVerifierError(string(claim.Network))
			r.log.Warn("claim verification failed, leaving pending",
				"claim_id", claim.ID,
				"order_number", claim.OrderNumber,
				"network", claim.Network,
				"error", err)
			continue
		}

		if !confirmed {
			if r.isStale(claim) {
				result.Stale++
				r.log.Warn("claim unconfirmed past stale threshold",
					"claim_id", claim.ID,
					"order_number", claim.OrderNumber,
					"network", claim.Network,
					"age", claim.Age(r.now()).String())
			}
			continue
		}

		if err := r.approve(ctx, claim); err != nil {
			result.Errors++
			r.log.Error("failed to mark claim approved",
				"claim_id", claim.ID,
				"order_number", claim.OrderNumber,
				"error", err)
			continue
		}

		result.Approved++
		metrics.RecordClaimApproved(string(claim.Network))
		r.log.Info("claim approved",
			"claim_id", claim.ID,
			"order_number", claim.OrderNumber,
			"network", claim.Network,
			"tx_hash", claim.TransactionHash)
	}

	metrics.RecordSweep(r.now().Sub(started))
	metrics.SetStaleClaims(result.Stale)

	r.log.Info("reconcile sweep finished",
		"scanned", result.Scanned,
		"approved", result.Approved,
		"errors", result.Errors,
		"stale", result.Stale,
		"duration", r.now().Sub(started).String())

	return result, nil
}

// StaleCheck counts unapproved claims older than the configured threshold
// without touching the explorers. It exists so stale alerts keep firing even
// when sweeps are slow or backed up.
func (r *Reconciler) StaleCheck(ctx context.Context) (int, error) {
	claims, err := r.store.ListUnapproved(ctx)
	if err != nil {
		return 0, err
	}

	stale := 0
	for i := range claims {
		claim := &claims[i]
		if !r.isStale(claim) {
			continue
		}

		stale++
		r.log.Warn("claim unconfirmed past stale threshold",
			"claim_id", claim.ID,
			"order_number", claim.OrderNumber,
			"network", claim.Network,
			"age", claim.Age(r.now()).String())
	}

	metrics.SetStaleClaims(stale)

	return stale, nil
}

func (r *Reconciler) checkClaim(ctx context.Context, claim *ledger.Claim) (bool, error) {
	verifier, err := r.verifiers.ForNetwork(claim.Network)
	if err != nil {
		return false, err
	}

	return verifier.Confirmed(ctx, claim.TransactionHash)
}

func (r *Reconciler) approve(ctx context.Context, claim *ledger.Claim) error {
	if err := r.store.SetStatus(ctx, claim.ID, ledger.StatusApproved); err != nil {
		return err
	}

	if r.cfg.PromoteOrders && r.gateway != nil {
		update := orders.Update{Status: promotedStatus}
		if err := r.gateway.UpdateOrder(ctx, claim.OrderNumber, update); err != nil {
			// The ledger row is already approved; promotion is best effort
			// and operators reconcile the backend from the ledger.
			r.log.Error("order promotion failed after approval",
				"claim_id", claim.ID,
				"order_number", claim.OrderNumber,
				"error", err)
		}
	}

	return nil
}

func (r *Reconciler) isStale(claim *ledger.Claim) bool {
	return r.cfg.StaleAfter > 0 && claim.Age(r.now()) > r.cfg.StaleAfter
}
