// Package pricing fetches the COP/USD reference rate and derives the amount due.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	apperrors "github.com/kiris-store/checkout-bot/internal/errors"
	"github.com/kiris-store/checkout-bot/pkg/config"
)

// RateSource provides the current COP/USD reference rate (TRM).
type RateSource interface {
	CurrentRate(ctx context.Context) (float64, error)
}

// TRMClient reads the Colombian representative market rate from the
// datos.gov.co open data resource.
type TRMClient struct {
	httpClient *http.Client
	url        string
	log        *slog.Logger
}

// NewTRMClient builds a TRM client from configuration.
func NewTRMClient(cfg config.RatesConfig, log *slog.Logger) *TRMClient {
	if log == nil {
		log = slog.Default()
	}

	return &TRMClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		url:        cfg.URL,
		log:        log,
	}
}

// trmRecord mirrors one row of the datos.gov.co TRM resource.
type trmRecord struct {
	Valor string `json:"valor"`
}

// CurrentRate fetches the most recent TRM value. Transient failures are
// retried with backoff; a final failure surfaces as a retryable rate error.
func (c *TRMClient) CurrentRate(ctx context.Context) (float64, error) {
	var rate float64

	err := apperrors.WithRetry(ctx, func() error {
		value, fetchErr := c.fetch(ctx)
		if fetchErr != nil {
			return apperrors.NewRateUnavailableError(fetchErr)
		}

		rate = value
		return nil
	})
	if err != nil {
		c.log.Error("failed to fetch reference rate", slog.String("url", c.url), slog.Any("error", err))
		return 0, err
	}

	return rate, nil
}

func (c *TRMClient) fetch(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, fmt.Errorf("build rate request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rate source returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read rate response: %w", err)
	}

	var records []trmRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return 0, fmt.Errorf("decode rate response: %w", err)
	}

	if len(records) == 0 {
		return 0, fmt.Errorf("rate source returned no records")
	}

	rate, err := strconv.ParseFloat(records[0].Valor, 64)
	if err != nil {
		return 0, fmt.Errorf("parse rate value %q: %w", records[0].Valor, err)
	}

	if rate <= 0 {
		return 0, fmt.Errorf("rate source returned non-positive rate %f", rate)
	}

	return rate, nil
}
