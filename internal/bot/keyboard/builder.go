package keyboard

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/kiris-store/checkout-bot/internal/domain"
)

// Builder creates the inline keyboards used along the payment flow.
type Builder struct {
	log *slog.Logger
}

// NewBuilder returns a new Builder instance.
func NewBuilder(log *slog.Logger) *Builder {
	return &Builder{log: log}
}

// NetworkButtons builds the crypto network selection keyboard, one button per
// supported network.
func (b *Builder) NetworkButtons() *telebot.ReplyMarkup {
	kb := NewInlineKeyboard()
	for _, network := range domain.Networks {
		kb.AddRow(InlineButton{
			Text:   network.Label(),
			Unique: "network_" + string(network),
		})
	}

	return b.build(kb)
}

// ConfirmButtons builds the yes/no confirmation keyboard shown after the user
// submits a transaction hash.
func (b *Builder) ConfirmButtons() *telebot.ReplyMarkup {
	kb := NewInlineKeyboard()
	kb.AddRow(
		InlineButton{Text: "Sí ✅", Unique: "confirm_yes"},
		InlineButton{Text: "No ❌", Unique: "confirm_no"},
	)

	return b.build(kb)
}

func (b *Builder) build(kb *InlineKeyboardBuilder) *telebot.ReplyMarkup {
	markup, err := kb.Build()
	if err != nil {
		if b.log != nil {
			b.log.Error("failed to build inline keyboard", slog.Any("error", err))
		}
		return &telebot.ReplyMarkup{}
	}

	return markup
}
