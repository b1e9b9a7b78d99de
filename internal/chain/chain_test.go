package chain

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kiris-store/checkout-bot/internal/errors"
	"github.com/kiris-store/checkout-bot/internal/domain"
)

func TestTronscanClient_Confirmed(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		confirmed bool
	}{
		{
			name:      "confirmed transaction",
			body:      `{"confirmed": true, "contractRet": "SUCCESS"}`,
			confirmed: true,
		},
		{
			name:      "unconfirmed transaction",
			body:      `{"confirmed": false}`,
			confirmed: false,
		},
		{
			name:      "missing flag counts as unconfirmed",
			body:      `{"contractRet": "SUCCESS"}`,
			confirmed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/transaction-info", r.URL.Path)
				assert.Equal(t, "abc123", r.URL.Query().Get("hash"))
				assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewTronscanClient(server.URL+"/", "test-key", server.Client(), nil)

			confirmed, err := client.Confirmed(context.Background(), "abc123")
			require.NoError(t, err)
			assert.Equal(t, tt.confirmed, confirmed)
		})
	}
}

func TestTronscanClient_ExplorerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewTronscanClient(server.URL+"/", "", server.Client(), nil)

	_, err := client.Confirmed(context.Background(), "abc123")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "E301", appErr.Code)
}

func TestEtherscanClient_Confirmed(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		confirmed bool
	}{
		{
			name:      "successful receipt",
			body:      `{"status":"1","message":"OK","result":{"status":"1"}}`,
			confirmed: true,
		},
		{
			name:      "failed receipt",
			body:      `{"status":"1","message":"OK","result":{"status":"0"}}`,
			confirmed: false,
		},
		{
			name:      "top-level status fallback",
			body:      `{"status":"1","message":"OK","result":{}}`,
			confirmed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				assert.Equal(t, "transaction", q.Get("module"))
				assert.Equal(t, "gettxreceiptstatus", q.Get("action"))
				assert.Equal(t, "0xdeadbeef", q.Get("txhash"))
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewEtherscanClient(server.URL, "test-key", server.Client(), nil)

			confirmed, err := client.Confirmed(context.Background(), "0xdeadbeef")
			require.NoError(t, err)
			assert.Equal(t, tt.confirmed, confirmed)
		})
	}
}

func TestEtherscanClient_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewEtherscanClient(server.URL, "", server.Client(), nil)

	_, err := client.Confirmed(context.Background(), "0xdeadbeef")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "E301", appErr.Code)
}

func TestRegistry_ForNetwork(t *testing.T) {
	tron := NewTronscanClient("https://apilist.tronscanapi.com/api/", "", nil, nil)
	registry := Registry{domain.NetworkTron: tron}

	verifier, err := registry.ForNetwork(domain.NetworkTron)
	require.NoError(t, err)
	assert.Equal(t, tron, verifier)

	_, err = registry.ForNetwork(domain.NetworkEth)
	assert.Error(t, err)
}
