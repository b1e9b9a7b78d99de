// Package ledger is the append-only system of record for payment claims.
package ledger

import (
	"time"

	"github.com/kiris-store/checkout-bot/internal/domain"
)

// Status is the verification status of a claim. A claim is pending until the
// reconciler confirms it on chain; pending is represented as the empty status.
type Status string

const (
	// StatusPending marks a claim not yet confirmed on chain.
	StatusPending Status = ""
	// StatusApproved marks a claim confirmed on chain.
	StatusApproved Status = "Approved"
)

// Claim is one payment claim row. Column order of the persisted schema is part
// of the ledger contract; rows are never deleted and only TxnStatus is ever
// mutated after the append.
type Claim struct {
	ID              int64
	Timestamp       time.Time
	OrderBackendURL string
	OrderNumber     string
	OrderTotalLocal float64
	Rate            float64
	OrderTotalUSD   float64
	AmountDueUSD    float64
	TransactionHash string
	Network         domain.Network
	WalletAddress   string
	TxnStatus       Status
}

// Approved reports whether the claim has been confirmed on chain.
func (c *Claim) Approved() bool {
	return c.TxnStatus == StatusApproved
}

// Age returns how long the claim has been sitting in the ledger.
func (c *Claim) Age(now time.Time) time.Duration {
	return now.Sub(c.Timestamp)
}
