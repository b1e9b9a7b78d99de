package keyboard_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiris-store/checkout-bot/internal/bot/keyboard"
)

func TestInlineKeyboardBuilder(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		builder := keyboard.NewInlineKeyboard()
		builder.AddRow(
			keyboard.InlineButton{Text: "Prev", Unique: "nav", Data: "1"},
			keyboard.InlineButton{Text: "Next", Unique: "nav", Data: "2"},
		).AddRow(
			keyboard.InlineButton{Text: "Confirm", Unique: "confirm", Data: "ok"},
		)

		markup, err := builder.Build()
		require.NoError(t, err)
		require.NotNil(t, markup)

		require.Len(t, markup.InlineKeyboard, 2)
		assert.Len(t, markup.InlineKeyboard[0], 2)
		assert.Len(t, markup.InlineKeyboard[1], 1)
		assert.Equal(t, "nav:2", markup.InlineKeyboard[0][1].Data)
	})

	t.Run("callback data overflow", func(t *testing.T) {
		builder := keyboard.NewInlineKeyboard()
		builder.AddRow(keyboard.InlineButton{
			Text:   "Too big",
			Unique: "overflow",
			Data:   strings.Repeat("x", keyboard.CallbackDataLimitBytes),
		})

		_, err := builder.Build()
		assert.Error(t, err)
	})
}

func TestBuilder_NetworkButtons(t *testing.T) {
	b := keyboard.NewBuilder(nil)

	markup := b.NetworkButtons()
	require.Len(t, markup.InlineKeyboard, 2)
	assert.Equal(t, "TRON (TRC20)", markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, "network_TRON", markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, "ETH (ERC20)", markup.InlineKeyboard[1][0].Text)
	assert.Equal(t, "network_ETH", markup.InlineKeyboard[1][0].Data)
}

func TestBuilder_ConfirmButtons(t *testing.T) {
	b := keyboard.NewBuilder(nil)

	markup := b.ConfirmButtons()
	require.Len(t, markup.InlineKeyboard, 1)
	require.Len(t, markup.InlineKeyboard[0], 2)
	assert.Equal(t, "confirm_yes", markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, "confirm_no", markup.InlineKeyboard[0][1].Data)
}
