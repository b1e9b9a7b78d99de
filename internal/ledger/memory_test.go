package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kiris-store/checkout-bot/internal/domain"
)

func testClaim(orderNumber, hash string) *Claim {
	return &Claim{
		OrderBackendURL: "https://kiris.store",
		OrderNumber:     orderNumber,
		OrderTotalLocal: 200000,
		Rate:            4000,
		OrderTotalUSD:   50,
		AmountDueUSD:    53,
		TransactionHash: hash,
		Network:         domain.NetworkTron,
		WalletAddress:   "TWalletAddr",
		TxnStatus:       StatusPending,
	}
}

func TestMemoryStore_AppendAssignsStableIDs(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first := testClaim("1042", "0xaaa")
	second := testClaim("1043", "0xbbb")

	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, second))

	require.Equal(t, int64(1), first.ID)
	require.Equal(t, int64(2), second.ID)
	require.False(t, first.Timestamp.IsZero())
}

func TestMemoryStore_UnapprovedRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	claim := testClaim("1042", "0xaaa")
	require.NoError(t, store.Append(ctx, claim))

	// Pending claims show up in the scan until they are explicitly approved.
	pending, err := store.ListUnapproved(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, claim.ID, pending[0].ID)

	require.NoError(t, store.SetStatus(ctx, claim.ID, StatusApproved))

	pending, err = store.ListUnapproved(ctx)
	require.NoError(t, err)
	require.Empty(t, pending)

	// The row itself survives, only its status changed.
	stored, ok := store.Get(claim.ID)
	require.True(t, ok)
	require.True(t, stored.Approved())
	require.Equal(t, 1, store.Len())
}

func TestMemoryStore_SetStatusIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	claim := testClaim("1042", "0xaaa")
	require.NoError(t, store.Append(ctx, claim))

	require.NoError(t, store.SetStatus(ctx, claim.ID, StatusApproved))
	require.NoError(t, store.SetStatus(ctx, claim.ID, StatusApproved))

	stored, ok := store.Get(claim.ID)
	require.True(t, ok)
	require.Equal(t, StatusApproved, stored.TxnStatus)
}

func TestMemoryStore_SetStatusUnknownID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	err := store.SetStatus(ctx, 99, StatusApproved)
	require.True(t, errors.Is(err, ErrClaimNotFound))
}

func TestMemoryStore_InsertionOrderPreserved(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for _, hash := range []string{"0xa", "0xb", "0xc"} {
		require.NoError(t, store.Append(ctx, testClaim("1042", hash)))
	}

	require.NoError(t, store.SetStatus(ctx, 2, StatusApproved))

	pending, err := store.ListUnapproved(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, "0xa", pending[0].TransactionHash)
	require.Equal(t, "0xc", pending[1].TransactionHash)
}
