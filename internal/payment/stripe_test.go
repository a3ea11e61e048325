package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
)

func TestCreateCheckoutSession(t *testing.T) {
	var gotForm url.Values
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cs_test_1","url":"https://checkout.stripe.com/pay/cs_test_1","payment_status":"unpaid","status":"open"}`))
	}))
	defer srv.Close()

	client := NewStripeClient(StripeConfig{
		BaseURL:       srv.URL,
		SecretKey:     "sk_test",
		PublicBaseURL: "https://shop.example.com",
	})

	items := []models.OrderItem{
		{Name: "mug", UnitPrice: 9.99, Quantity: 2},
		{Name: "pen", UnitPrice: 2.5, Quantity: 1},
	}
	session, err := client.CreateCheckoutSession(context.Background(), 7, "usd", items)
	require.NoError(t, err)
	require.Equal(t, "cs_test_1", session.ID)
	require.Equal(t, "https://checkout.stripe.com/pay/cs_test_1", session.URL)

	require.Equal(t, "Bearer sk_test", gotAuth)
	require.Equal(t, "payment", gotForm.Get("mode"))
	require.Equal(t, "7", gotForm.Get("client_reference_id"))
	require.Equal(t, "https://shop.example.com/api/v1/payments/stripe/return?session_id={CHECKOUT_SESSION_ID}", gotForm.Get("success_url"))
	require.Equal(t, "https://shop.example.com/api/v1/payments/stripe/cancel", gotForm.Get("cancel_url"))
	require.Equal(t, "999", gotForm.Get("line_items[0][price_data][unit_amount]"))
	require.Equal(t, "2", gotForm.Get("line_items[0][quantity]"))
	require.Equal(t, "mug", gotForm.Get("line_items[0][price_data][product_data][name]"))
	require.Equal(t, "250", gotForm.Get("line_items[1][price_data][unit_amount]"))
	require.Equal(t, "usd", gotForm.Get("line_items[1][price_data][currency]"))
}

func TestCreateCheckoutSessionAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"message":"expired key"}}`))
	}))
	defer srv.Close()

	client := NewStripeClient(StripeConfig{BaseURL: srv.URL, SecretKey: "sk_bad"})

	_, err := client.CreateCheckoutSession(context.Background(), 7, "usd", []models.OrderItem{{Name: "mug", UnitPrice: 1, Quantity: 1}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "402")
}

func TestGetSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/checkout/sessions/cs_test_1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cs_test_1","payment_status":"paid","status":"complete"}`))
	}))
	defer srv.Close()

	client := NewStripeClient(StripeConfig{BaseURL: srv.URL, SecretKey: "sk_test"})

	session, err := client.GetSession(context.Background(), "cs_test_1")
	require.NoError(t, err)
	require.Equal(t, "paid", session.PaymentStatus)
	require.Equal(t, "complete", session.Status)
}

func TestToMinorUnits(t *testing.T) {
	require.Equal(t, int64(999), toMinorUnits(9.99))
	require.Equal(t, int64(1000), toMinorUnits(10))
	require.Equal(t, int64(10), toMinorUnits(0.1))
	require.Equal(t, int64(29), toMinorUnits(0.285))
}
