package pricing

import (
	"context"
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

func newTRMServer(t *testing.T, handler http.HandlerFunc) *TRMClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewTRMClient(config.RatesConfig{
		URL:     server.URL,
		Timeout: 2 * time.Second,
	}, testLogger())
}

func TestTRMClient_CurrentRate(t *testing.T) {
	ctx := context.Background()

	t.Run("parses the first record", func(t *testing.T) {
		client := newTRMServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"valor":"4000.25"},{"valor":"3998.10"}]`))
		})

		rate, err := client.CurrentRate(ctx)
		require.NoError(t, err)
		require.InDelta(t, 4000.25, rate, 1e-9)
	})

	t.Run("server error surfaces as rate unavailable", func(t *testing.T) {
		client := newTRMServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := client.CurrentRate(ctx)
		require.Error(t, err)

		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		require.Equal(t, "E201", appErr.Code)
	})

	t.Run("empty payload is rejected", func(t *testing.T) {
		client := newTRMServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		})

		_, err := client.CurrentRate(ctx)
		require.Error(t, err)
	})

	t.Run("non-positive rate is rejected", func(t *testing.T) {
		client := newTRMServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"valor":"0"}]`))
		})

		_, err := client.CurrentRate(ctx)
		require.Error(t, err)
	})

	t.Run("transient failure recovers on retry", func(t *testing.T) {
		attempts := 0
		client := newTRMServer(t, func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(`[{"valor":"3950.00"}]`))
		})

		rate, err := client.CurrentRate(ctx)
		require.NoError(t, err)
		require.InDelta(t, 3950.0, rate, 1e-9)
		require.Equal(t, 2, attempts)
	})
}
