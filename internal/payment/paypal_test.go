package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newPayPalStub(t *testing.T, orderStatus string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "client-id", user)
		require.Equal(t, "client-secret", pass)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"pp_token","token_type":"Bearer"}`))
	})

	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer pp_token", r.Header.Get("Authorization"))

		var payload struct {
			Intent        string `json:"intent"`
			PurchaseUnits []struct {
				CustomID string `json:"custom_id"`
				Amount   struct {
					CurrencyCode string `json:"currency_code"`
					Value        string `json:"value"`
				} `json:"amount"`
			} `json:"purchase_units"`
			ApplicationContext struct {
				ReturnURL string `json:"return_url"`
				CancelURL string `json:"cancel_url"`
			} `json:"application_context"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "CAPTURE", payload.Intent)
		require.Len(t, payload.PurchaseUnits, 1)
		require.Equal(t, "7", payload.PurchaseUnits[0].CustomID)
		require.Equal(t, "20.00", payload.PurchaseUnits[0].Amount.Value)
		require.Equal(t, "USD", payload.PurchaseUnits[0].Amount.CurrencyCode)
		require.Equal(t, "https://shop.example.com/api/v1/payments/paypal/return", payload.ApplicationContext.ReturnURL)
		require.Equal(t, "https://shop.example.com/api/v1/payments/paypal/cancel", payload.ApplicationContext.CancelURL)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"PP-1","status":"CREATED","links":[{"href":"https://paypal.example.com/approve/PP-1","rel":"approve"},{"href":"https://api.example.com/PP-1","rel":"self"}]}`))
	})

	mux.HandleFunc("/v2/checkout/orders/PP-1/capture", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer pp_token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"PP-1","status":"` + orderStatus + `"}`))
	})

	return httptest.NewServer(mux)
}

func newPayPalTestClient(baseURL string) *PayPalClient {
	return NewPayPalClient(PayPalConfig{
		BaseURL:       baseURL,
		ClientID:      "client-id",
		Secret:        "client-secret",
		PublicBaseURL: "https://shop.example.com",
	})
}

func TestPayPalCreateOrder(t *testing.T) {
	srv := newPayPalStub(t, "COMPLETED")
	defer srv.Close()

	client := newPayPalTestClient(srv.URL)

	order, err := client.CreateOrder(context.Background(), 7, 20, "USD")
	require.NoError(t, err)
	require.Equal(t, "PP-1", order.ID)
	require.Equal(t, "CREATED", order.Status)
	require.Equal(t, "https://paypal.example.com/approve/PP-1", order.ApproveURL)
}

func TestPayPalCaptureOrder(t *testing.T) {
	srv := newPayPalStub(t, "COMPLETED")
	defer srv.Close()

	client := newPayPalTestClient(srv.URL)

	captured, err := client.CaptureOrder(context.Background(), "PP-1")
	require.NoError(t, err)
	require.Equal(t, "COMPLETED", captured.Status)
}

func TestPayPalTokenFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_client"}`))
	}))
	defer srv.Close()

	client := newPayPalTestClient(srv.URL)

	_, err := client.CreateOrder(context.Background(), 7, 20, "USD")
	require.Error(t, err)
	require.Contains(t, err.Error(), "401")
}
