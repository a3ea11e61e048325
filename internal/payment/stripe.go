package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Skotchmaster/storefront/internal/models"
)

// StripeClient opens hosted checkout sessions. It keeps no local state; the
// caller records the session reference on the order.
type StripeClient struct {
	http          *resty.Client
	secretKey     string
	publicBaseURL string
}

type StripeConfig struct {
	BaseURL       string
	SecretKey     string
	PublicBaseURL string
}

func NewStripeClient(cfg StripeConfig) *StripeClient {
	return &StripeClient{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(30 * time.Second),
		secretKey:     cfg.SecretKey,
		publicBaseURL: cfg.PublicBaseURL,
	}
}

type CheckoutSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	PaymentStatus string `json:"payment_status"`
	Status        string `json:"status"`
}

func (s *StripeClient) CreateCheckoutSession(ctx context.Context, orderID uint, currency string, items []models.OrderItem) (*CheckoutSession, error) {
	form := map[string]string{
		"mode":                "payment",
		"client_reference_id": fmt.Sprint(orderID),
		"success_url":         s.publicBaseURL + "/api/v1/payments/stripe/return?session_id={CHECKOUT_SESSION_ID}",
		"cancel_url":          s.publicBaseURL + "/api/v1/payments/stripe/cancel",
	}
	for i, it := range items {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form[prefix+"[quantity]"] = fmt.Sprint(it.Quantity)
		form[prefix+"[price_data][currency]"] = currency
		form[prefix+"[price_data][unit_amount]"] = fmt.Sprint(toMinorUnits(it.UnitPrice))
		form[prefix+"[price_data][product_data][name]"] = it.Name
	}

	resp, err := s.http.R().
		SetContext(ctx).
		SetAuthToken(s.secretKey).
		SetFormData(form).
		Post("/v1/checkout/sessions")
	if err != nil {
		return nil, fmt.Errorf("stripe: create session: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("stripe: create session failed with status %d: %s", resp.StatusCode(), resp.Body())
	}

	var session CheckoutSession
	if err := json.Unmarshal(resp.Body(), &session); err != nil {
		return nil, fmt.Errorf("stripe: parse session response: %w", err)
	}
	if session.ID == "" || session.URL == "" {
		return nil, fmt.Errorf("stripe: incomplete session response")
	}
	return &session, nil
}

// GetSession re-reads the session from the processor; callbacks are never
// trusted without this check.
func (s *StripeClient) GetSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	resp, err := s.http.R().
		SetContext(ctx).
		SetAuthToken(s.secretKey).
		Get("/v1/checkout/sessions/" + sessionID)
	if err != nil {
		return nil, fmt.Errorf("stripe: get session: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("stripe: get session failed with status %d: %s", resp.StatusCode(), resp.Body())
	}

	var session CheckoutSession
	if err := json.Unmarshal(resp.Body(), &session); err != nil {
		return nil, fmt.Errorf("stripe: parse session response: %w", err)
	}
	return &session, nil
}

func toMinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}
