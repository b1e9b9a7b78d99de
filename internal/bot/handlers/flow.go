// Package handlers contains the Telegram-facing handlers of the payment flow.
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/kiris-store/checkout-bot/internal/bot/keyboard"
	"github.com/kiris-store/checkout-bot/internal/checkout"
	"github.com/kiris-store/checkout-bot/internal/i18n"
	"github.com/kiris-store/checkout-bot/internal/state"
)

// resetCheckout wipes the order fields accumulated during a previous attempt
// while keeping the session identity.
func resetCheckout(s *state.Session) {
	s.OrderNumber = ""
	s.Network = ""
	s.TransactionHash = ""
	s.OrderTotalLocal = 0
	s.OrderTotalUSD = 0
	s.Rate = 0
	s.AmountDueUSD = 0
}

// formatAmount renders a monetary value without trailing zero noise.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// lookupAndQuote runs the order lookup flow shared by the command argument
// shortcut and the order number prompt: fetch, guard, price, then move the
// session to the network choice. On a guard failure the session is parked
// back at the order number prompt so the user can correct the input, and the
// error is propagated for the messaging middleware to render.
func lookupAndQuote(ctx context.Context, c telebot.Context, fsm state.Machine, svc *checkout.Service, kb *keyboard.Builder, t i18n.Translator, log *slog.Logger, orderNumber string) error {
	userID := c.Sender().ID

	if err := c.Send(t.T("checkout.wait")); err != nil {
		return err
	}

	oq, err := svc.LookupOrder(ctx, orderNumber)
	if err != nil {
		if trErr := fsm.TransitionTo(ctx, userID, state.StateAwaitingOrderNumber, resetCheckout); trErr != nil {
			log.Error("failed to park session at order prompt", slog.Int64("user_id", userID), slog.Any("error", trErr))
		}
		return err
	}

	quote := oq.Quote
	err = fsm.TransitionTo(ctx, userID, state.StateAwaitingCryptoChoice, func(s *state.Session) {
		resetCheckout(s)
		s.OrderNumber = orderNumber
		s.OrderTotalLocal = quote.OrderTotalLocal
		s.OrderTotalUSD = quote.OrderTotalUSD
		s.Rate = quote.Rate
		s.AmountDueUSD = quote.AmountDueUSD
	})
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf(t.T("checkout.order_header"), oq.Order.Number))
	for _, item := range oq.Order.LineItems {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf(t.T("checkout.order_item"), item.Name, item.Quantity))
	}
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf(t.T("checkout.quote"),
		formatAmount(quote.OrderTotalLocal),
		formatAmount(quote.Rate),
		formatAmount(quote.OrderTotalUSD),
		formatAmount(quote.AmountDueUSD),
	))

	if err := c.Send(b.String()); err != nil {
		return err
	}

	return c.Send(t.T("checkout.choose_network"), kb.NetworkButtons())
}
