package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kiris-store/checkout-bot/internal/domain"
	apperrors "github.com/kiris-store/checkout-bot/internal/errors"
	"github.com/kiris-store/checkout-bot/internal/ledger"
	"github.com/kiris-store/checkout-bot/internal/orders"
	"github.com/kiris-store/checkout-bot/internal/pricing"
	"github.com/kiris-store/checkout-bot/internal/state"
	"github.com/kiris-store/checkout-bot/pkg/config"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) GetOrder(ctx context.Context, orderNumber string) (*orders.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orders.Order), args.Error(1)
}

func (m *mockGateway) UpdateOrder(ctx context.Context, orderNumber string, update orders.Update) error {
	args := m.Called(ctx, orderNumber, update)
	return args.Error(0)
}

func (m *mockGateway) BaseURL() string {
	return "https://kiris.store"
}

type stubRateSource struct {
	rate float64
	err  error
}

func (s *stubRateSource) CurrentRate(ctx context.Context) (float64, error) {
	return s.rate, s.err
}

func testWallets() domain.Wallets {
	return domain.Wallets{
		domain.NetworkTron: "TTronWallet",
		domain.NetworkEth:  "0xEthWallet",
	}
}

func newTestService(gateway orders.Gateway, store ledger.Store, rate float64) *Service {
	converter := pricing.NewConverter(
		&stubRateSource{rate: rate},
		config.CommissionConfig{Enabled: true, Percent: 5, Policy: "ceil-round"},
		nil,
	)
	return NewService(gateway, converter, store, testWallets(), "on-hold", nil)
}

func TestService_LookupOrder(t *testing.T) {
	gateway := new(mockGateway)
	gateway.On("GetOrder", mock.Anything, "1234").Return(&orders.Order{
		ID:     1234,
		Number: "1234",
		Status: orders.StatusPending,
		Total:  "1000000",
	}, nil)

	svc := newTestService(gateway, ledger.NewMemoryStore(), 4000)

	oq, err := svc.LookupOrder(context.Background(), "1234")
	require.NoError(t, err)
	assert.Equal(t, "1234", oq.Order.Number)
	assert.Equal(t, 250.0, oq.Quote.OrderTotalUSD)
	assert.Equal(t, 263.0, oq.Quote.AmountDueUSD)
}

func TestService_LookupOrder_Guards(t *testing.T) {
	tests := []struct {
		name     string
		order    *orders.Order
		wantCode string
	}{
		{
			name: "already claimed",
			order: &orders.Order{
				Number: "1234",
				Status: orders.StatusPending,
				Total:  "1000000",
				MetaData: []orders.Meta{
					{Key: orders.MetaKeyTxnHash, Value: "tx-1"},
				},
			},
			wantCode: "E102",
		},
		{
			name: "not pending",
			order: &orders.Order{
				Number: "1234",
				Status: "completed",
				Total:  "1000000",
			},
			wantCode: "E103",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := new(mockGateway)
			gateway.On("GetOrder", mock.Anything, "1234").Return(tt.order, nil)

			svc := newTestService(gateway, ledger.NewMemoryStore(), 4000)

			_, err := svc.LookupOrder(context.Background(), "1234")
			require.Error(t, err)

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantCode, appErr.Code)
		})
	}
}

func TestService_LookupOrder_NotFound(t *testing.T) {
	gateway := new(mockGateway)
	gateway.On("GetOrder", mock.Anything, "9999").Return(nil, apperrors.NewOrderNotFoundError("9999"))

	svc := newTestService(gateway, ledger.NewMemoryStore(), 4000)

	_, err := svc.LookupOrder(context.Background(), "9999")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "E101", appErr.Code)
}

func TestService_LookupOrder_RateFailure(t *testing.T) {
	gateway := new(mockGateway)
	gateway.On("GetOrder", mock.Anything, "1234").Return(&orders.Order{
		Number: "1234",
		Status: orders.StatusPending,
		Total:  "1000000",
	}, nil)

	converter := pricing.NewConverter(
		&stubRateSource{err: apperrors.NewRateUnavailableError(errors.New("timeout"))},
		config.CommissionConfig{},
		nil,
	)
	svc := NewService(gateway, converter, ledger.NewMemoryStore(), testWallets(), "on-hold", nil)

	_, err := svc.LookupOrder(context.Background(), "1234")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "E201", appErr.Code)
}

func TestService_WalletFor(t *testing.T) {
	svc := newTestService(new(mockGateway), ledger.NewMemoryStore(), 4000)

	addr, err := svc.WalletFor(domain.NetworkTron)
	require.NoError(t, err)
	assert.Equal(t, "TTronWallet", addr)

	_, err = svc.WalletFor(domain.Network("DOGE"))
	assert.Error(t, err)
}

func testSession() *state.Session {
	return &state.Session{
		UserID:          42,
		CurrentState:    state.StateAwaitingHashConfirmation,
		OrderNumber:     "1234",
		Network:         domain.NetworkTron,
		TransactionHash: "tx-1",
		OrderTotalLocal: 1000000,
		OrderTotalUSD:   250,
		Rate:            4000,
		AmountDueUSD:    263,
	}
}

func TestService_CommitClaim(t *testing.T) {
	store := ledger.NewMemoryStore()

	gateway := new(mockGateway)
	wantUpdate := orders.ClaimUpdate("tx-1", "TRON", "on-hold")
	gateway.On("UpdateOrder", mock.Anything, "1234", wantUpdate).Return(nil)

	svc := newTestService(gateway, store, 4000)

	claim, err := svc.CommitClaim(context.Background(), testSession())
	require.NoError(t, err)
	require.NotNil(t, claim)

	stored, ok := store.Get(claim.ID)
	require.True(t, ok)
	assert.Equal(t, "1234", stored.OrderNumber)
	assert.Equal(t, "tx-1", stored.TransactionHash)
	assert.Equal(t, domain.NetworkTron, stored.Network)
	assert.Equal(t, "TTronWallet", stored.WalletAddress)
	assert.Equal(t, 263.0, stored.AmountDueUSD)
	assert.False(t, stored.Approved())
	gateway.AssertExpectations(t)
}

func TestService_CommitClaim_BackendFailureKeepsLedgerRow(t *testing.T) {
	store := ledger.NewMemoryStore()

	gateway := new(mockGateway)
	gateway.On("UpdateOrder", mock.Anything, "1234", mock.Anything).Return(apperrors.NewGatewayWriteError(errors.New("no id in response")))

	svc := newTestService(gateway, store, 4000)

	claim, err := svc.CommitClaim(context.Background(), testSession())
	require.Error(t, err)
	require.NotNil(t, claim)

	// The append is the commit point; the reconciler picks the claim up even
	// though the backend write was lost.
	assert.Equal(t, 1, store.Len())
	pending, listErr := store.ListUnapproved(context.Background())
	require.NoError(t, listErr)
	assert.Len(t, pending, 1)
}

func TestService_CommitClaim_AppendFailureSkipsBackendWrite(t *testing.T) {
	gateway := new(mockGateway)

	svc := NewService(gateway, pricing.NewConverter(&stubRateSource{rate: 4000}, config.CommissionConfig{}, nil), failingStore{}, testWallets(), "on-hold", nil)

	_, err := svc.CommitClaim(context.Background(), testSession())
	require.Error(t, err)
	gateway.AssertNotCalled(t, "UpdateOrder", mock.Anything, mock.Anything, mock.Anything)
}

type failingStore struct{}

func (failingStore) Append(ctx context.Context, claim *ledger.Claim) error {
	return errors.New("connection refused")
}

func (failingStore) ListUnapproved(ctx context.Context) ([]ledger.Claim, error) {
	return nil, nil
}

func (failingStore) SetStatus(ctx context.Context, id int64, status ledger.Status) error {
	return nil
}
