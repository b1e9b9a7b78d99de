package state

import (
	"context"
	"errors"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/kiris-store/checkout-bot/internal/domain"
)

func newTestStorage(t *testing.T) (Storage, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStorage(client, testLogger()), mr
}

func TestRedisStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	storage, _ := newTestStorage(t)

	session := &Session{
		UserID:          21,
		CurrentState:    StateAwaitingCryptoChoice,
		OrderNumber:     "1042",
		OrderTotalLocal: 200000,
		Rate:            4000,
		OrderTotalUSD:   50,
		AmountDueUSD:    53,
		Network:         domain.NetworkTron,
	}

	require.NoError(t, storage.SetSession(ctx, 21, session))

	loaded, err := storage.GetSession(ctx, 21)
	require.NoError(t, err)
	require.Equal(t, StateAwaitingCryptoChoice, loaded.CurrentState)
	require.Equal(t, "1042", loaded.OrderNumber)
	require.Equal(t, domain.NetworkTron, loaded.Network)
	require.InDelta(t, 53.0, loaded.AmountDueUSD, 1e-9)
	require.False(t, loaded.UpdatedAt.IsZero())
}

func TestRedisStorage_GetMissing(t *testing.T) {
	ctx := context.Background()
	storage, _ := newTestStorage(t)

	_, err := storage.GetSession(ctx, 404)
	require.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestRedisStorage_ClearSession(t *testing.T) {
	ctx := context.Background()
	storage, _ := newTestStorage(t)

	require.NoError(t, storage.SetSession(ctx, 5, &Session{UserID: 5, CurrentState: StateAwaitingOrderNumber}))
	require.NoError(t, storage.ClearSession(ctx, 5))

	_, err := storage.GetSession(ctx, 5)
	require.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestRedisStorage_SessionExpires(t *testing.T) {
	ctx := context.Background()
	storage, mr := newTestStorage(t)

	require.NoError(t, storage.SetSession(ctx, 8, &Session{UserID: 8, CurrentState: StateAwaitingTransactionHash}))

	mr.FastForward(sessionTTL + 1)

	_, err := storage.GetSession(ctx, 8)
	require.True(t, errors.Is(err, ErrSessionNotFound))
}
