package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/kiris-store/checkout-bot/internal/bot/keyboard"
	"github.com/kiris-store/checkout-bot/internal/i18n"
	"github.com/kiris-store/checkout-bot/internal/state"
)

// Explorers reject anything shorter; a real hash on either network is 64 hex
// characters, optionally 0x-prefixed.
const minHashLength = 16

// NewHashHandler consumes the transaction hash typed while the session is
// waiting for it and asks for confirmation before filing the claim.
func NewHashHandler(fsm state.Machine, kb *keyboard.Builder, t i18n.Translator, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		hash := strings.TrimSpace(c.Text())
		if len(hash) < minHashLength || strings.ContainsAny(hash, " \n\t") {
			return c.Send(t.T("checkout.invalid_hash"))
		}

		ctx := context.Background()
		userID := c.Sender().ID

		err := fsm.TransitionTo(ctx, userID, state.StateAwaitingHashConfirmation, func(s *state.Session) {
			s.TransactionHash = hash
		})
		if err != nil {
			return err
		}

		return c.Send(fmt.Sprintf(t.T("checkout.confirm_hash"), hash), kb.ConfirmButtons())
	}
}
