package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/kiris-store/checkout-bot/internal/errors"
	"github.com/kiris-store/checkout-bot/pkg/config"
)

type staticRateSource struct {
	rate float64
	err  error
}

func (s staticRateSource) CurrentRate(ctx context.Context) (float64, error) {
	return s.rate, s.err
}

func TestAmountDue(t *testing.T) {
	testCases := []struct {
		name          string
		policy        Policy
		orderTotalUSD float64
		commissionPct float64
		expected      float64
	}{
		{name: "ceil of round forces whole units", policy: PolicyCeilRound, orderTotalUSD: 250, commissionPct: 5, expected: 263},
		{name: "ceil round exact cents still ceils", policy: PolicyCeilRound, orderTotalUSD: 100, commissionPct: 5, expected: 105},
		{name: "ceil round strips sub-cent noise first", policy: PolicyCeilRound, orderTotalUSD: 47.62, commissionPct: 5, expected: 51},
		{name: "plain round to whole units", policy: PolicyRound, orderTotalUSD: 250, commissionPct: 5, expected: 263},
		{name: "plain round can round down", policy: PolicyRound, orderTotalUSD: 100.2, commissionPct: 0, expected: 100},
		{name: "no policy keeps cents", policy: PolicyNone, orderTotalUSD: 50, commissionPct: 0, expected: 50},
		{name: "no policy with commission keeps cents", policy: PolicyNone, orderTotalUSD: 50, commissionPct: 5, expected: 52.5},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			actual := AmountDue(tc.policy, tc.orderTotalUSD, tc.commissionPct)
			require.InDelta(t, tc.expected, actual, 1e-9)
		})
	}
}

func TestConverter_Quote(t *testing.T) {
	ctx := context.Background()

	t.Run("no commission path", func(t *testing.T) {
		converter := NewConverter(
			staticRateSource{rate: 4000},
			config.CommissionConfig{Enabled: false, Policy: "none"},
			testLogger(),
		)

		quote, err := converter.Quote(ctx, 200000)
		require.NoError(t, err)
		require.InDelta(t, 4000.0, quote.Rate, 1e-9)
		require.InDelta(t, 50.0, quote.OrderTotalUSD, 1e-9)
		require.InDelta(t, 50.0, quote.AmountDueUSD, 1e-9)
	})

	t.Run("default commission path", func(t *testing.T) {
		converter := NewConverter(
			staticRateSource{rate: 4000},
			config.CommissionConfig{Enabled: true, Percent: 5, Policy: "ceil-round"},
			testLogger(),
		)

		quote, err := converter.Quote(ctx, 1000000)
		require.NoError(t, err)
		require.InDelta(t, 250.0, quote.OrderTotalUSD, 1e-9)
		require.InDelta(t, 263.0, quote.AmountDueUSD, 1e-9)
	})

	t.Run("same inputs always produce the same amount", func(t *testing.T) {
		converter := NewConverter(
			staticRateSource{rate: 4000},
			config.CommissionConfig{Enabled: true, Percent: 5, Policy: "ceil-round"},
			testLogger(),
		)

		first, err := converter.Quote(ctx, 1000000)
		require.NoError(t, err)
		second, err := converter.Quote(ctx, 1000000)
		require.NoError(t, err)
		require.Equal(t, first.AmountDueUSD, second.AmountDueUSD)
	})

	t.Run("rate failure aborts the quote", func(t *testing.T) {
		converter := NewConverter(
			staticRateSource{err: apperrors.NewRateUnavailableError(errors.New("feed down"))},
			config.CommissionConfig{Enabled: true, Percent: 5, Policy: "ceil-round"},
			testLogger(),
		)

		_, err := converter.Quote(ctx, 200000)
		require.Error(t, err)

		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		require.Equal(t, "E201", appErr.Code)
	})
}
