package state

import (
	"time"

	"github.com/kiris-store/checkout-bot/internal/domain"
)

// State represents a checkout conversation state.
type State string

const (
	// StateIdle indicates that no checkout conversation is in progress.
	StateIdle State = "idle"
	// StateAwaitingOrderNumber indicates that the bot is waiting for an order number.
	StateAwaitingOrderNumber State = "awaiting_order_number"
	// StateAwaitingCryptoChoice indicates that the user is choosing the payment network.
	StateAwaitingCryptoChoice State = "awaiting_crypto_choice"
	// StateAwaitingTransactionHash indicates that the bot is waiting for the transaction hash.
	StateAwaitingTransactionHash State = "awaiting_transaction_hash"
	// StateAwaitingHashConfirmation indicates that the user is confirming the submitted hash.
	StateAwaitingHashConfirmation State = "awaiting_hash_confirmation"
	// StateClosed indicates that the claim was committed and the conversation ended.
	StateClosed State = "closed"
)

// Session captures one buyer's checkout conversation. Every field besides
// CurrentState stays zero until the state that produces it has run.
type Session struct {
	UserID          int64          `json:"user_id"`
	CurrentState    State          `json:"current_state"`
	OrderNumber     string         `json:"order_number,omitempty"`
	Network         domain.Network `json:"network,omitempty"`
	TransactionHash string         `json:"transaction_hash,omitempty"`
	OrderTotalLocal float64        `json:"order_total_local,omitempty"`
	OrderTotalUSD   float64        `json:"order_total_usd,omitempty"`
	Rate            float64        `json:"rate,omitempty"`
	AmountDueUSD    float64        `json:"amount_due_usd,omitempty"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
