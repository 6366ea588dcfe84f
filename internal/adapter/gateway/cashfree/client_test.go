package cashfree

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gmail-marketplace/internal/core/domain"
	"gmail-marketplace/internal/core/ports"
	"gmail-marketplace/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStubClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClientWithHTTP(srv.URL, "app-id", "secret-key", srv.Client(), zerolog.Nop())
	return client, srv
}

func TestClient_CreateOrder(t *testing.T) {
	var gotHeaders http.Header
	var gotBody createOrderRequest

	client, _ := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/pg/orders", r.URL.Path)
		gotHeaders = r.Header
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(createOrderResponse{
			OrderID:          gotBody.OrderID,
			PaymentSessionID: "session_xyz",
		})
	})

	order, err := client.CreateOrder(context.Background(), ports.GatewayOrderRequest{
		OrderID:    "ORDER_test1",
		Amount:     5000,
		CustomerID: 1001,
		Phone:      "9999999999",
		ExpiresAt:  time.Now().Add(15 * time.Minute),
	})
	require.NoError(t, err)

	assert.Equal(t, "app-id", gotHeaders.Get("x-client-id"))
	assert.Equal(t, "secret-key", gotHeaders.Get("x-client-secret"))
	assert.Equal(t, apiVersion, gotHeaders.Get("x-api-version"))

	assert.Equal(t, "ORDER_test1", gotBody.OrderID)
	assert.Equal(t, 50.0, gotBody.OrderAmount, "5000 paise is 50 rupees")
	assert.Equal(t, "INR", gotBody.OrderCurrency)
	assert.Equal(t, "cust_1001", gotBody.CustomerDetails.CustomerID)

	assert.Equal(t, "ORDER_test1", order.OrderID)
	assert.Equal(t, "session_xyz", order.SessionID)
	assert.Contains(t, order.PaymentLink, "session_xyz")
}

func TestClient_CreateOrder_GatewayError(t *testing.T) {
	client, _ := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.CreateOrder(context.Background(), ports.GatewayOrderRequest{
		OrderID: "ORDER_test2",
		Amount:  1500,
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeGatewayUnavailable))
}

func TestClient_FetchStatus(t *testing.T) {
	tests := []struct {
		name     string
		payments []paymentEntry
		want     domain.GatewayStatus
	}{
		{"no payments yet", []paymentEntry{}, domain.GatewayPending},
		{"single success", []paymentEntry{{PaymentStatus: "SUCCESS"}}, domain.GatewaySuccess},
		{"failed then success", []paymentEntry{{PaymentStatus: "FAILED"}, {PaymentStatus: "SUCCESS"}}, domain.GatewaySuccess},
		{"only failed", []paymentEntry{{PaymentStatus: "FAILED"}}, domain.GatewayFailed},
		{"pending attempt", []paymentEntry{{PaymentStatus: "FAILED"}, {PaymentStatus: "PENDING"}}, domain.GatewayPending},
		{"user dropped", []paymentEntry{{PaymentStatus: "USER_DROPPED"}}, domain.GatewayPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/pg/orders/ORDER_x/payments", r.URL.Path)
				json.NewEncoder(w).Encode(tt.payments)
			})

			status, err := client.FetchStatus(context.Background(), "ORDER_x")
			require.NoError(t, err)
			assert.Equal(t, tt.want, status)
		})
	}
}

func TestClient_FetchStatus_GatewayError(t *testing.T) {
	client, _ := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.FetchStatus(context.Background(), "ORDER_x")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeGatewayUnavailable))
}
