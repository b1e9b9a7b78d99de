package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	apperrors "github.com/kiris-store/checkout-bot/internal/errors"
)

// EtherscanClient checks Ethereum transactions against the Etherscan receipt API.
type EtherscanClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	log        *slog.Logger
}

// NewEtherscanClient builds an Etherscan verifier.
func NewEtherscanClient(baseURL, apiKey string, httpClient *http.Client, log *slog.Logger) *EtherscanClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = slog.Default()
	}

	return &EtherscanClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		log:        log,
	}
}

// Confirmed queries gettxreceiptstatus and reports whether the receipt status
// equals success. An unknown or missing status counts as unconfirmed.
func (c *EtherscanClient) Confirmed(ctx context.Context, txHash string) (bool, error) {
	query := url.Values{}
	query.Set("module", "transaction")
	query.Set("action", "gettxreceiptstatus")
	query.Set("txhash", txHash)
	if c.apiKey != "" {
		query.Set("apikey", c.apiKey)
	}

	endpoint := fmt.Sprintf("%s?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, apperrors.NewVerifierError("ETH", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, apperrors.NewVerifierError("ETH", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, apperrors.NewVerifierError("ETH", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var payload struct {
		Status string `json:"status"`
		Result struct {
			Status string `json:"status"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false, apperrors.NewVerifierError("ETH", fmt.Errorf("decode response: %w", err))
	}

	// Newer Etherscan responses carry the receipt status under result;
	// older ones only at the top level.
	if payload.Result.Status != "" {
		return payload.Result.Status == "1", nil
	}

	return payload.Status == "1", nil
}
