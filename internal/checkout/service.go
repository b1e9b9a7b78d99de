// Package checkout implements the payment claim flow: order lookup, pricing,
// network selection and the final claim commit.
package checkout

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/kiris-store/checkout-bot/internal/errors"
	"github.com/kiris-store/checkout-bot/internal/domain"
	"github.com/kiris-store/checkout-bot/internal/ledger"
	"github.com/kiris-store/checkout-bot/internal/orders"
	"github.com/kiris-store/checkout-bot/internal/pricing"
	"github.com/kiris-store/checkout-bot/internal/state"
	"github.com/kiris-store/checkout-bot/pkg/metrics"
)

// OrderQuote pairs a fetched order with its priced conversion.
type OrderQuote struct {
	Order *orders.Order
	Quote *pricing.Quote
}

// Service drives the checkout conversation's business rules independently of
// the transport. Handlers translate Telegram updates into these calls.
type Service struct {
	gateway       orders.Gateway
	converter     *pricing.Converter
	ledger        ledger.Store
	wallets       domain.Wallets
	claimedStatus string
	log           *slog.Logger
	now           func() time.Time
}

// NewService builds the checkout service.
func NewService(gateway orders.Gateway, converter *pricing.Converter, store ledger.Store, wallets domain.Wallets, claimedStatus string, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		gateway:       gateway,
		converter:     converter,
		ledger:        store,
		wallets:       wallets,
		claimedStatus: claimedStatus,
		log:           log,
		now:           time.Now,
	}
}

// LookupOrder fetches an order, runs the claim admission guards and prices it.
// The guards run in order: existence, prior claim, order status. A guard
// failure surfaces as an AppError whose UserMessage is shown verbatim.
func (s *Service) LookupOrder(ctx context.Context, orderNumber string) (*OrderQuote, error) {
	order, err := s.gateway.GetOrder(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	if order.HasClaimMetadata() {
		return nil, apperrors.NewAlreadyClaimedError(orderNumber)
	}

	if order.Status != orders.StatusPending {
		return nil, apperrors.NewInvalidOrderStateError(orderNumber, order.Status)
	}

	total, err := order.TotalAmount()
	if err != nil {
		metrics.RecordQuote("error")
		return nil, apperrors.NewExternalAPIError("woocommerce", err)
	}

	quote, err := s.converter.Quote(ctx, total)
	if err != nil {
		metrics.RecordQuote("error")
		return nil, err
	}

	metrics.RecordQuote("ok")

	return &OrderQuote{Order: order, Quote: quote}, nil
}

// WalletFor returns the receiving address for the chosen network.
func (s *Service) WalletFor(network domain.Network) (string, error) {
	return s.wallets.Address(network)
}

// CommitClaim files the confirmed claim. The ledger append happens first and
// is the commit point: once the row exists the claim survives any downstream
// failure. The backend write follows; if it fails the returned error is
// reported but the ledger row stays and the reconciler still sees the claim.
func (s *Service) CommitClaim(ctx context.Context, session *state.Session) (*ledger.Claim, error) {
	wallet, err := s.wallets.Address(session.Network)
	if err != nil {
		return nil, err
	}

	claim := &ledger.Claim{
		Timestamp:       s.now().UTC(),
		OrderBackendURL: s.gateway.BaseURL(),
		OrderNumber:     session.OrderNumber,
		OrderTotalLocal: session.OrderTotalLocal,
		Rate:            session.Rate,
		OrderTotalUSD:   session.OrderTotalUSD,
		AmountDueUSD:    session.AmountDueUSD,
		TransactionHash: session.TransactionHash,
		Network:         session.Network,
		WalletAddress:   wallet,
		TxnStatus:       ledger.StatusPending,
	}

	if err := s.ledger.Append(ctx, claim); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	metrics.RecordClaimCommitted(string(session.Network))
	s.log.Info("claim committed",
		"claim_id", claim.ID,
		"order_number", claim.OrderNumber,
		"network", claim.Network,
		"amount_due_usd", claim.AmountDueUSD)

	update := orders.ClaimUpdate(session.TransactionHash, string(session.Network), s.claimedStatus)
	if err := s.gateway.UpdateOrder(ctx, session.OrderNumber, update); err != nil {
		s.log.Error("backend update failed after ledger commit",
			"claim_id", claim.ID,
			"order_number", claim.OrderNumber,
			"error", err)
		return claim, err
	}

	return claim, nil
}
