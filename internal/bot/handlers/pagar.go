package handlers

import (
	"context"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/kiris-store/checkout-bot/internal/bot/keyboard"
	"github.com/kiris-store/checkout-bot/internal/checkout"
	"github.com/kiris-store/checkout-bot/internal/i18n"
	"github.com/kiris-store/checkout-bot/internal/state"
)

// NewPagarHandler starts the payment flow. An order number passed as the
// command argument skips the prompt and goes straight to the lookup.
func NewPagarHandler(fsm state.Machine, svc *checkout.Service, kb *keyboard.Builder, t i18n.Translator, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			log.Warn("pagar handler invoked without sender")
			return nil
		}

		ctx := context.Background()
		userID := c.Sender().ID

		var payload string
		if msg := c.Message(); msg != nil {
			payload = strings.TrimSpace(msg.Payload)
		}

		if payload != "" {
			if err := fsm.TransitionTo(ctx, userID, state.StateAwaitingOrderNumber, resetCheckout); err != nil {
				return err
			}
			return lookupAndQuote(ctx, c, fsm, svc, kb, t, log, payload)
		}

		if err := fsm.TransitionTo(ctx, userID, state.StateAwaitingOrderNumber, resetCheckout); err != nil {
			return err
		}

		if err := c.Send(t.T("checkout.greeting")); err != nil {
			return err
		}

		return c.Send(t.T("checkout.ask_order_number"))
	}
}

// NewOrderNumberHandler consumes the order number typed while the session is
// waiting for it.
func NewOrderNumberHandler(fsm state.Machine, svc *checkout.Service, kb *keyboard.Builder, t i18n.Translator, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		orderNumber := strings.TrimSpace(c.Text())
		if orderNumber == "" {
			return c.Send(t.T("checkout.ask_order_number"))
		}

		return lookupAndQuote(context.Background(), c, fsm, svc, kb, t, log, orderNumber)
	}
}
