package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	apperrors "github.com/kiris-store/checkout-bot/internal/errors"
	"github.com/kiris-store/checkout-bot/pkg/config"
)

// Gateway reads and writes orders in the store backend.
type Gateway interface {
	GetOrder(ctx context.Context, orderNumber string) (*Order, error)
	UpdateOrder(ctx context.Context, orderNumber string, update Update) error
	BaseURL() string
}

// WooGateway is a WooCommerce REST v3 implementation of Gateway.
type WooGateway struct {
	httpClient    *http.Client
	baseURL       string
	consumerKey   string
	consumerSec   string
	claimedStatus string
	breaker       *apperrors.CircuitBreaker
	log           *slog.Logger
}

// NewWooGateway builds the WooCommerce client from configuration.
func NewWooGateway(cfg config.StoreConfig, log *slog.Logger) *WooGateway {
	if log == nil {
		log = slog.Default()
	}

	return &WooGateway{
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		baseURL:       cfg.BaseURL,
		consumerKey:   cfg.ConsumerKey,
		consumerSec:   cfg.ConsumerSecret,
		claimedStatus: cfg.ClaimedStatus,
		breaker:       apperrors.NewCircuitBreaker(),
		log:           log,
	}
}

// BaseURL returns the store backend URL recorded in ledger rows.
func (g *WooGateway) BaseURL() string {
	return g.baseURL
}

// ClaimedStatus returns the status orders are parked on once claimed.
func (g *WooGateway) ClaimedStatus() string {
	return g.claimedStatus
}

// GetOrder fetches one order by number. A 404 maps to the not-found error;
// other failures surface as external API errors.
func (g *WooGateway) GetOrder(ctx context.Context, orderNumber string) (*Order, error) {
	var order *Order

	err := g.breaker.Call(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.orderURL(orderNumber), nil)
		if err != nil {
			return apperrors.NewExternalAPIError("woocommerce", err)
		}
		req.SetBasicAuth(g.consumerKey, g.consumerSec)

		resp, err := g.httpClient.Do(req)
		if err != nil {
			return apperrors.NewExternalAPIError("woocommerce", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return apperrors.NewOrderNotFoundError(orderNumber)
		case resp.StatusCode != http.StatusOK:
			return apperrors.NewExternalAPIError("woocommerce", fmt.Errorf("unexpected status %d", resp.StatusCode))
		}

		var decoded Order
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return apperrors.NewExternalAPIError("woocommerce", fmt.Errorf("decode order: %w", err))
		}

		if decoded.Number == "" {
			decoded.Number = orderNumber
		}

		order = &decoded
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// UpdateOrder applies a partial mutation to the order. The write is considered
// acknowledged only when the response carries the order id, matching the
// backend's success marker.
func (g *WooGateway) UpdateOrder(ctx context.Context, orderNumber string, update Update) error {
	return g.breaker.Call(func() error {
		payload, err := json.Marshal(update)
		if err != nil {
			return apperrors.NewGatewayWriteError(fmt.Errorf("encode update: %w", err))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPut, g.orderURL(orderNumber), bytes.NewReader(payload))
		if err != nil {
			return apperrors.NewGatewayWriteError(err)
		}
		req.SetBasicAuth(g.consumerKey, g.consumerSec)
		req.Header.Set("Content-Type", "application/json")

		resp, err := g.httpClient.Do(req)
		if err != nil {
			return apperrors.NewGatewayWriteError(err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return apperrors.NewGatewayWriteError(fmt.Errorf("read update response: %w", err))
		}

		if resp.StatusCode != http.StatusOK {
			return apperrors.NewGatewayWriteError(fmt.Errorf("unexpected status %d", resp.StatusCode))
		}

		var ack struct {
			ID int64 `json:"id"`
		}
		if err := json.Unmarshal(body, &ack); err != nil || ack.ID == 0 {
			return apperrors.NewGatewayWriteError(fmt.Errorf("update response missing order id"))
		}

		g.log.Info("order updated",
			slog.String("order_number", orderNumber),
			slog.String("status", update.Status),
		)

		return nil
	})
}

func (g *WooGateway) orderURL(orderNumber string) string {
	return fmt.Sprintf("%s/wp-json/wc/v3/orders/%s", g.baseURL, url.PathEscape(orderNumber))
}
