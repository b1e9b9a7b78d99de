package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/kiris-store/checkout-bot/internal/checkout"
	"github.com/kiris-store/checkout-bot/internal/i18n"
	"github.com/kiris-store/checkout-bot/internal/state"
)

// NewConfirmYesHandler files the claim once the user confirms the submitted
// hash. The ledger write is the commit point; the session is closed even if
// the backend update lags behind.
func NewConfirmYesHandler(fsm state.Machine, svc *checkout.Service, t i18n.Translator, log *slog.Logger) CallbackHandler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		defer func() {
			if err := c.Respond(); err != nil {
				log.Warn("failed to ack callback", slog.Any("error", err))
			}
		}()

		ctx := context.Background()
		userID := c.Sender().ID

		session, err := fsm.GetSession(ctx, userID)
		if err != nil {
			if errors.Is(err, state.ErrSessionNotFound) {
				return c.Send(t.T("checkout.idle_hint"))
			}
			return err
		}

		if session.CurrentState != state.StateAwaitingHashConfirmation {
			log.Info("ignoring confirmation outside confirmation state",
				slog.Int64("user_id", userID),
				slog.String("state", string(session.CurrentState)))
			return nil
		}

		claim, err := svc.CommitClaim(ctx, session)
		if err != nil && claim == nil {
			return err
		}

		orderNumber := session.OrderNumber

		if closeErr := fsm.TransitionTo(ctx, userID, state.StateClosed, resetCheckout); closeErr != nil {
			log.Error("failed to close session after commit",
				slog.Int64("user_id", userID), slog.Any("error", closeErr))
		}

		if err != nil {
			// The ledger row exists; the reconciler will still pick the
			// claim up even though the backend write failed.
			log.Error("backend update failed, claim is recorded",
				slog.Int64("user_id", userID),
				slog.Int64("claim_id", claim.ID),
				slog.Any("error", err))
			return c.Send(fmt.Sprintf(t.T("checkout.committed_backend_failed"), orderNumber))
		}

		return c.Send(fmt.Sprintf(t.T("checkout.committed"), orderNumber))
	}
}

// NewConfirmNoHandler discards the submitted hash and asks for it again.
func NewConfirmNoHandler(fsm state.Machine, t i18n.Translator, log *slog.Logger) CallbackHandler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		defer func() {
			if err := c.Respond(); err != nil {
				log.Warn("failed to ack callback", slog.Any("error", err))
			}
		}()

		ctx := context.Background()
		userID := c.Sender().ID

		session, err := fsm.GetSession(ctx, userID)
		if err != nil {
			if errors.Is(err, state.ErrSessionNotFound) {
				return c.Send(t.T("checkout.idle_hint"))
			}
			return err
		}

		if session.CurrentState != state.StateAwaitingHashConfirmation {
			return nil
		}

		err = fsm.TransitionTo(ctx, userID, state.StateAwaitingTransactionHash, func(s *state.Session) {
			s.TransactionHash = ""
		})
		if err != nil {
			return err
		}

		return c.Send(t.T("checkout.hash_rejected"))
	}
}
