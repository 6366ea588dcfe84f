// Package cashfree implements ports.PaymentGateway against the
// Cashfree Payment Gateway REST API.
package cashfree

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gmail-marketplace/config"
	"gmail-marketplace/internal/core/domain"
	"gmail-marketplace/internal/core/ports"
	"gmail-marketplace/pkg/apperror"

	"github.com/rs/zerolog"
)

const apiVersion = "2023-08-01"

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the Cashfree PG API.
type Client struct {
	baseURL    string
	appID      string
	secretKey  string
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewClient creates a Cashfree API client.
func NewClient(cfg config.GatewayConfig, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL(),
		appID:      cfg.AppID,
		secretKey:  cfg.SecretKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

// NewClientWithHTTP creates a client with a custom transport and base
// URL. Tests use this to point at a stub server.
func NewClientWithHTTP(baseURL, appID, secretKey string, httpClient HTTPClient, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		appID:      appID,
		secretKey:  secretKey,
		httpClient: httpClient,
		log:        log,
	}
}

type createOrderRequest struct {
	OrderID         string          `json:"order_id"`
	OrderAmount     float64         `json:"order_amount"`
	OrderCurrency   string          `json:"order_currency"`
	CustomerDetails customerDetails `json:"customer_details"`
	OrderExpiryTime string          `json:"order_expiry_time"`
}

type customerDetails struct {
	CustomerID    string `json:"customer_id"`
	CustomerPhone string `json:"customer_phone"`
}

type createOrderResponse struct {
	OrderID          string `json:"order_id"`
	PaymentSessionID string `json:"payment_session_id"`
}

type paymentEntry struct {
	PaymentStatus string `json:"payment_status"`
}

// CreateOrder registers a payable order with Cashfree. Amounts are
// carried internally in paise; the API takes rupees.
func (c *Client) CreateOrder(ctx context.Context, req ports.GatewayOrderRequest) (*ports.GatewayOrder, error) {
	body := createOrderRequest{
		OrderID:       req.OrderID,
		OrderAmount:   float64(req.Amount) / 100,
		OrderCurrency: "INR",
		CustomerDetails: customerDetails{
			CustomerID:    fmt.Sprintf("cust_%d", req.CustomerID),
			CustomerPhone: req.Phone,
		},
		OrderExpiryTime: req.ExpiresAt.UTC().Format(time.RFC3339),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pg/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Error().Err(err).Str("order_id", req.OrderID).Msg("Gateway order creation failed")
		return nil, apperror.ErrGatewayUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.log.Error().
			Int("status", resp.StatusCode).
			Str("order_id", req.OrderID).
			Bytes("body", respBody).
			Msg("Gateway rejected order creation")
		return nil, apperror.ErrGatewayUnavailable(fmt.Errorf("gateway status %d", resp.StatusCode))
	}

	var out createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, apperror.ErrGatewayUnavailable(fmt.Errorf("decode order response: %w", err))
	}

	return &ports.GatewayOrder{
		OrderID:     out.OrderID,
		SessionID:   out.PaymentSessionID,
		PaymentLink: c.baseURL + "/pg/view/sessions/checkout/web/" + out.PaymentSessionID,
	}, nil
}

// FetchStatus queries the payments recorded against an order and folds
// them into a single gateway status. Any successful payment wins; an
// order with no payments yet is pending.
func (c *Client) FetchStatus(ctx context.Context, orderID string) (domain.GatewayStatus, error) {
	url := c.baseURL + "/pg/orders/" + orderID + "/payments"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build status request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", apperror.ErrGatewayUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperror.ErrGatewayUnavailable(fmt.Errorf("gateway status %d", resp.StatusCode))
	}

	var payments []paymentEntry
	if err := json.NewDecoder(resp.Body).Decode(&payments); err != nil {
		return "", apperror.ErrGatewayUnavailable(fmt.Errorf("decode payments: %w", err))
	}

	if len(payments) == 0 {
		return domain.GatewayPending, nil
	}

	status := domain.GatewayFailed
	for _, p := range payments {
		switch p.PaymentStatus {
		case "SUCCESS":
			return domain.GatewaySuccess, nil
		case "PENDING", "NOT_ATTEMPTED", "USER_DROPPED":
			status = domain.GatewayPending
		}
	}
	return status, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-client-id", c.appID)
	req.Header.Set("x-client-secret", c.secretKey)
	req.Header.Set("x-api-version", apiVersion)
}
