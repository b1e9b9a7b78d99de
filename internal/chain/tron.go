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

// TronscanClient checks TRON transactions against the Tronscan explorer API.
type TronscanClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	log        *slog.Logger
}

// NewTronscanClient builds a Tronscan verifier.
func NewTronscanClient(baseURL, apiKey string, httpClient *http.Client, log *slog.Logger) *TronscanClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = slog.Default()
	}

	return &TronscanClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		log:        log,
	}
}

// Confirmed queries transaction-info and reports the explorer's confirmation flag.
// A missing flag counts as unconfirmed, not as an error.
func (c *TronscanClient) Confirmed(ctx context.Context, txHash string) (bool, error) {
	query := url.Values{}
	query.Set("hash", txHash)
	if c.apiKey != "" {
		query.Set("apiKey", c.apiKey)
	}

	endpoint := fmt.Sprintf("%stransaction-info?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, apperrors.NewVerifierError("TRON", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, apperrors.NewVerifierError("TRON", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, apperrors.NewVerifierError("TRON", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var payload struct {
		Confirmed *bool `json:"confirmed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false, apperrors.NewVerifierError("TRON", fmt.Errorf("decode response: %w", err))
	}

	return payload.Confirmed != nil && *payload.Confirmed, nil
}
