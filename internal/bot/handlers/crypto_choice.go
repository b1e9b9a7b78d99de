package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/kiris-store/checkout-bot/internal/checkout"
	"github.com/kiris-store/checkout-bot/internal/domain"
	"github.com/kiris-store/checkout-bot/internal/i18n"
	"github.com/kiris-store/checkout-bot/internal/state"
)

// NetworkCallbackPrefix prefixes the callback data of network choice buttons.
const NetworkCallbackPrefix = "network_"

// NewCryptoChoiceHandler reacts to the network selection buttons: it records
// the chosen network and sends the payment instructions.
func NewCryptoChoiceHandler(fsm state.Machine, svc *checkout.Service, t i18n.Translator, log *slog.Logger) CallbackHandler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil || c.Callback() == nil {
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

		if session.CurrentState != state.StateAwaitingCryptoChoice {
			log.Info("ignoring network choice outside crypto choice state",
				slog.Int64("user_id", userID),
				slog.String("state", string(session.CurrentState)))
			return nil
		}

		raw := strings.TrimPrefix(strings.TrimSpace(c.Callback().Data), NetworkCallbackPrefix)
		network, err := domain.ParseNetwork(raw)
		if err != nil {
			return c.Send(t.T("checkout.unknown_network"))
		}

		wallet, err := svc.WalletFor(network)
		if err != nil {
			return err
		}

		err = fsm.TransitionTo(ctx, userID, state.StateAwaitingTransactionHash, func(s *state.Session) {
			s.Network = network
		})
		if err != nil {
			return err
		}

		msg := fmt.Sprintf(t.T("checkout.wallet_instructions"),
			formatAmount(session.AmountDueUSD), network.Label(), wallet)
		if err := c.Send(msg); err != nil {
			return err
		}

		if err := c.Send(fmt.Sprintf(t.T("checkout.wallet_warning"), network.Label())); err != nil {
			return err
		}

		return c.Send(t.T("checkout.ask_hash"))
	}
}
