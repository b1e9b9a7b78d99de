package handlers

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/kiris-store/checkout-bot/internal/i18n"
	"github.com/kiris-store/checkout-bot/internal/state"
)

// NewCancelHandler drops the session and lets the user start over with /pagar.
func NewCancelHandler(fsm state.Machine, t i18n.Translator, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			log.Warn("cancel handler invoked without sender context")
			return nil
		}

		ctx := context.Background()
		userID := c.Sender().ID

		if err := fsm.ClearSession(ctx, userID); err != nil {
			log.Error("failed to clear session", slog.Int64("user_id", userID), slog.Any("error", err))
			return err
		}

		return c.Send(t.T("checkout.cancelled"))
	}
}

// NewIdleHandler nudges users who message the bot outside an active flow.
func NewIdleHandler(t i18n.Translator) Handler {
	return func(c telebot.Context) error {
		if c == nil {
			return nil
		}
		return c.Send(t.T("checkout.idle_hint"))
	}
}

// NewClosedHandler answers messages sent after a claim has been filed.
func NewClosedHandler(t i18n.Translator) Handler {
	return func(c telebot.Context) error {
		if c == nil {
			return nil
		}
		return c.Send(t.T("checkout.closed"))
	}
}
