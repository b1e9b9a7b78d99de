package bot

// Command constants for Telegram bot commands.
const (
	CommandStart    = "/start"
	CommandPagar    = "/pagar"
	CommandCancelar = "/cancelar"
)

// Callback prefix constants for inline button interactions.
const (
	CallbackNetworkPrefix = "network_"
	CallbackConfirmYes    = "confirm_yes"
	CallbackConfirmNo     = "confirm_no"
)
