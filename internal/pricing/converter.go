package pricing

import (
	"context"
	"log/slog"
	"math"

	"github.com/kiris-store/checkout-bot/pkg/config"
)

// Policy selects how the monetization commission rounds the amount due.
type Policy string

const (
	// PolicyCeilRound strips sub-cent noise, then rounds up to whole units.
	PolicyCeilRound Policy = "ceil-round"
	// PolicyRound rounds the commissioned amount to the nearest whole unit.
	PolicyRound Policy = "round"
	// PolicyNone charges the commissioned amount rounded to cents.
	PolicyNone Policy = "none"
)

// Quote is the priced result of converting an order total into USD.
type Quote struct {
	OrderTotalLocal float64
	Rate            float64
	OrderTotalUSD   float64
	AmountDueUSD    float64
}

// Converter derives the USD amount due from an order total and the current rate.
type Converter struct {
	source     RateSource
	commission config.CommissionConfig
	log        *slog.Logger
}

// NewConverter constructs a Converter over the given rate source.
func NewConverter(source RateSource, commission config.CommissionConfig, log *slog.Logger) *Converter {
	if log == nil {
		log = slog.Default()
	}

	return &Converter{
		source:     source,
		commission: commission,
		log:        log,
	}
}

// Quote fetches the current rate and prices the order. A rate failure aborts
// the quote: amounts are never derived from a stale or zero rate.
func (c *Converter) Quote(ctx context.Context, orderTotalLocal float64) (*Quote, error) {
	rate, err := c.source.CurrentRate(ctx)
	if err != nil {
		return nil, err
	}

	return c.QuoteWithRate(orderTotalLocal, rate), nil
}

// QuoteWithRate prices the order against an already-fetched rate.
func (c *Converter) QuoteWithRate(orderTotalLocal, rate float64) *Quote {
	orderTotalUSD := roundCents(orderTotalLocal / rate)

	percent := 0.0
	if c.commission.Enabled {
		percent = c.commission.Percent
	}

	return &Quote{
		OrderTotalLocal: orderTotalLocal,
		Rate:            rate,
		OrderTotalUSD:   orderTotalUSD,
		AmountDueUSD:    AmountDue(Policy(c.commission.Policy), orderTotalUSD, percent),
	}
}

// AmountDue applies the commission percentage and the rounding policy to a USD amount.
func AmountDue(policy Policy, orderTotalUSD, commissionPct float64) float64 {
	commissioned := orderTotalUSD * (1 + commissionPct/100)

	switch policy {
	case PolicyRound:
		return math.Round(commissioned)
	case PolicyNone:
		return roundCents(commissioned)
	default:
		// ceil-round: drop sub-cent noise first, then force whole units.
		return math.Ceil(roundCents(commissioned))
	}
}

func roundCents(value float64) float64 {
	return math.Round(value*100) / 100
}
