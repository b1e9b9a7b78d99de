package orders

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/kiris-store/checkout-bot/internal/errors"
	"github.com/kiris-store/checkout-bot/pkg/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGateway(t *testing.T, handler http.Handler) *WooGateway {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewWooGateway(config.StoreConfig{
		BaseURL:        server.URL,
		ConsumerKey:    "ck_test",
		ConsumerSecret: "cs_test",
		Timeout:        2 * time.Second,
		ClaimedStatus:  "on-hold",
	}, testLogger())
}

func TestWooGateway_GetOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes a pending order", func(t *testing.T) {
		gateway := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/wp-json/wc/v3/orders/1042", r.URL.Path)

			user, pass, ok := r.BasicAuth()
			require.True(t, ok)
			require.Equal(t, "ck_test", user)
			require.Equal(t, "cs_test", pass)

			_, _ = w.Write([]byte(`{
				"id": 1042,
				"number": "1042",
				"status": "pending",
				"total": "200000",
				"line_items": [{"name": "Camiseta", "quantity": 2}],
				"meta_data": []
			}`))
		}))

		order, err := gateway.GetOrder(ctx, "1042")
		require.NoError(t, err)
		require.Equal(t, "pending", order.Status)
		require.Len(t, order.LineItems, 1)
		require.False(t, order.HasClaimMetadata())

		total, err := order.TotalAmount()
		require.NoError(t, err)
		require.InDelta(t, 200000.0, total, 1e-9)
	})

	t.Run("missing order maps to not found", func(t *testing.T) {
		gateway := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		_, err := gateway.GetOrder(ctx, "9999")
		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		require.Equal(t, "E101", appErr.Code)
	})

	t.Run("claim metadata is detected", func(t *testing.T) {
		gateway := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{
				"id": 7,
				"number": "7",
				"status": "pending",
				"total": "1000",
				"meta_data": [{"key": "txn_hash", "value": "0xabc"}]
			}`))
		}))

		order, err := gateway.GetOrder(ctx, "7")
		require.NoError(t, err)
		require.True(t, order.HasClaimMetadata())
	})
}

func TestWooGateway_UpdateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("writes claim metadata and status", func(t *testing.T) {
		var received Update
		gateway := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPut, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			_, _ = w.Write([]byte(`{"id": 1042}`))
		}))

		update := ClaimUpdate("0xabc", "TRON", gateway.ClaimedStatus())
		require.NoError(t, gateway.UpdateOrder(ctx, "1042", update))

		require.Equal(t, "on-hold", received.Status)
		require.Len(t, received.MetaData, 2)
		require.Equal(t, MetaKeyTxnHash, received.MetaData[0].Key)
		require.Equal(t, "0xabc", received.MetaData[0].Value)
	})

	t.Run("response without order id is a write failure", func(t *testing.T) {
		gateway := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"message": "something went sideways"}`))
		}))

		err := gateway.UpdateOrder(ctx, "1042", ClaimUpdate("0xabc", "TRON", "on-hold"))
		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		require.Equal(t, "E202", appErr.Code)
	})

	t.Run("backend error status is a write failure", func(t *testing.T) {
		gateway := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))

		err := gateway.UpdateOrder(ctx, "1042", ClaimUpdate("0xabc", "TRON", "on-hold"))
		require.Error(t, err)
	})
}
