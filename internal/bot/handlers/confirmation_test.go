package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/kiris-store/checkout-bot/internal/checkout"
	"github.com/kiris-store/checkout-bot/internal/domain"
	apperrors "github.com/kiris-store/checkout-bot/internal/errors"
	"github.com/kiris-store/checkout-bot/internal/ledger"
	"github.com/kiris-store/checkout-bot/internal/orders"
	"github.com/kiris-store/checkout-bot/internal/pricing"
	"github.com/kiris-store/checkout-bot/internal/state"
	"github.com/kiris-store/checkout-bot/pkg/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubContext captures outgoing messages; everything else panics via the
// embedded nil interface, which keeps the stub honest about what a handler
// actually touches.
type stubContext struct {
	telebot.Context
	sender   *telebot.User
	callback *telebot.Callback
	sent     []string
}

func (c *stubContext) Sender() *telebot.User { return c.sender }

func (c *stubContext) Callback() *telebot.Callback { return c.callback }

func (c *stubContext) Respond(resp ...*telebot.CallbackResponse) error { return nil }

func (c *stubContext) Send(what interface{}, opts ...interface{}) error {
	c.sent = append(c.sent, fmt.Sprint(what))
	return nil
}

// keyTranslator echoes the requested key so tests can assert which message
// was rendered without binding to catalog copy.
type keyTranslator struct{}

func (keyTranslator) T(key string) string { return key }

func (keyTranslator) Lang() string { return "es" }

// fakeMachine drives a single in-memory session through the real transition
// rules.
type fakeMachine struct {
	session *state.Session
}

func (m *fakeMachine) GetSession(ctx context.Context, userID int64) (*state.Session, error) {
	if m.session == nil {
		return nil, state.ErrSessionNotFound
	}
	return m.session, nil
}

func (m *fakeMachine) TransitionTo(ctx context.Context, userID int64, newState state.State, mutate state.Mutator) error {
	if m.session == nil {
		m.session = &state.Session{UserID: userID, CurrentState: state.StateIdle}
	}
	if !state.IsTransitionAllowed(m.session.CurrentState, newState) {
		return state.ErrInvalidTransition
	}
	m.session.CurrentState = newState
	if mutate != nil {
		mutate(m.session)
	}
	return nil
}

func (m *fakeMachine) ClearSession(ctx context.Context, userID int64) error {
	m.session = nil
	return nil
}

type stubGateway struct {
	updateErr error
	updates   int
}

func (g *stubGateway) GetOrder(ctx context.Context, orderNumber string) (*orders.Order, error) {
	return nil, nil
}

func (g *stubGateway) UpdateOrder(ctx context.Context, orderNumber string, update orders.Update) error {
	g.updates++
	return g.updateErr
}

func (g *stubGateway) BaseURL() string { return "https://kiris.store" }

func confirmationSession() *state.Session {
	return &state.Session{
		UserID:          7,
		CurrentState:    state.StateAwaitingHashConfirmation,
		OrderNumber:     "1234",
		Network:         domain.NetworkTron,
		TransactionHash: "tx-abc",
		OrderTotalLocal: 1000000,
		Rate:            4000,
		OrderTotalUSD:   250,
		AmountDueUSD:    263,
	}
}

func newConfirmService(gateway orders.Gateway, store ledger.Store) *checkout.Service {
	converter := pricing.NewConverter(nil, config.CommissionConfig{}, testLogger())
	wallets := domain.Wallets{domain.NetworkTron: "TWalletAddr"}
	return checkout.NewService(gateway, converter, store, wallets, "on-hold", testLogger())
}

func TestConfirmYes_SuccessClosesAndClearsSession(t *testing.T) {
	store := ledger.NewMemoryStore()
	gateway := &stubGateway{}
	fsm := &fakeMachine{session: confirmationSession()}

	handler := NewConfirmYesHandler(fsm, newConfirmService(gateway, store), keyTranslator{}, testLogger())

	c := &stubContext{sender: &telebot.User{ID: 7}, callback: &telebot.Callback{Data: "confirm_yes"}}
	require.NoError(t, handler(c))

	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "checkout.committed")
	assert.NotContains(t, c.sent[0], "committed_backend_failed")
	assert.Contains(t, c.sent[0], "1234")

	assert.Equal(t, 1, gateway.updates)
	assert.Equal(t, state.StateClosed, fsm.session.CurrentState)
	assert.Empty(t, fsm.session.OrderNumber)
	assert.Empty(t, fsm.session.TransactionHash)
	assert.Zero(t, fsm.session.AmountDueUSD)
}

func TestConfirmYes_BackendFailureTellsTheUser(t *testing.T) {
	store := ledger.NewMemoryStore()
	gateway := &stubGateway{updateErr: apperrors.NewGatewayWriteError(errors.New("woocommerce is down"))}
	fsm := &fakeMachine{session: confirmationSession()}

	handler := NewConfirmYesHandler(fsm, newConfirmService(gateway, store), keyTranslator{}, testLogger())

	c := &stubContext{sender: &telebot.User{ID: 7}, callback: &telebot.Callback{Data: "confirm_yes"}}
	require.NoError(t, handler(c))

	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "committed_backend_failed")

	// The ledger row survives the failed backend write.
	pending, err := store.ListUnapproved(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "tx-abc", pending[0].TransactionHash)

	assert.Equal(t, state.StateClosed, fsm.session.CurrentState)
	assert.Empty(t, fsm.session.TransactionHash)
}

func TestConfirmYes_IgnoredOutsideConfirmationState(t *testing.T) {
	store := ledger.NewMemoryStore()
	gateway := &stubGateway{}
	session := confirmationSession()
	session.CurrentState = state.StateAwaitingTransactionHash
	fsm := &fakeMachine{session: session}

	handler := NewConfirmYesHandler(fsm, newConfirmService(gateway, store), keyTranslator{}, testLogger())

	c := &stubContext{sender: &telebot.User{ID: 7}, callback: &telebot.Callback{Data: "confirm_yes"}}
	require.NoError(t, handler(c))

	assert.Empty(t, c.sent)
	assert.Equal(t, 0, gateway.updates)
}
