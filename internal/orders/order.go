// Package orders talks to the WooCommerce backend that owns the store's orders.
package orders

import (
	"encoding/json"
	"strconv"
)

// StatusPending is the only order status that admits a new payment claim.
const StatusPending = "pending"

// Claim metadata keys written to the order once a payment claim is filed.
// Their presence is the idempotency guard against double claims.
const (
	MetaKeyTxnHash = "txn_hash"
	MetaKeyNetwork = "network"
)

// Meta is one key/value metadata entry on an order.
type Meta struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// LineItem is one purchased article on an order.
type LineItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Order is the subset of a WooCommerce order the bot consumes.
type Order struct {
	ID        int64      `json:"id"`
	Number    string     `json:"number"`
	Status    string     `json:"status"`
	Total     string     `json:"total"`
	LineItems []LineItem `json:"line_items"`
	MetaData  []Meta     `json:"meta_data"`
}

// TotalAmount parses the order total, which WooCommerce serves as a string.
func (o *Order) TotalAmount() (float64, error) {
	return strconv.ParseFloat(o.Total, 64)
}

// HasClaimMetadata reports whether a payment claim was already filed against
// the order through the bot.
func (o *Order) HasClaimMetadata() bool {
	for _, meta := range o.MetaData {
		if meta.Key == MetaKeyTxnHash || meta.Key == MetaKeyNetwork {
			return true
		}
	}

	return false
}

// Update describes a partial order mutation sent to the backend.
type Update struct {
	Status   string `json:"status,omitempty"`
	MetaData []Meta `json:"meta_data,omitempty"`
}

// ClaimUpdate builds the order mutation that records a payment claim:
// the claim metadata plus the parked status.
func ClaimUpdate(txnHash, network, claimedStatus string) Update {
	return Update{
		Status: claimedStatus,
		MetaData: []Meta{
			{Key: MetaKeyTxnHash, Value: txnHash},
			{Key: MetaKeyNetwork, Value: network},
		},
	}
}

// UnmarshalJSON accepts both string and numeric order numbers, which vary
// across WooCommerce versions.
func (o *Order) UnmarshalJSON(data []byte) error {
	type alias Order
	aux := struct {
		Number json.RawMessage `json:"number"`
		*alias
	}{alias: (*alias)(o)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if len(aux.Number) > 0 {
		var asString string
		if err := json.Unmarshal(aux.Number, &asString); err == nil {
			o.Number = asString
		} else {
			var asNumber int64
			if err := json.Unmarshal(aux.Number, &asNumber); err == nil {
				o.Number = strconv.FormatInt(asNumber, 10)
			}
		}
	}

	return nil
}
