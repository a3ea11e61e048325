package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// PayPalClient creates payment resources and returns approval links. It is
// deliberately independent of StripeClient; the two processors share no
// abstraction.
type PayPalClient struct {
	http          *resty.Client
	clientID      string
	secret        string
	publicBaseURL string
}

type PayPalConfig struct {
	BaseURL       string
	ClientID      string
	Secret        string
	PublicBaseURL string
}

func NewPayPalClient(cfg PayPalConfig) *PayPalClient {
	return &PayPalClient{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(30 * time.Second),
		clientID:      cfg.ClientID,
		secret:        cfg.Secret,
		publicBaseURL: cfg.PublicBaseURL,
	}
}

type PayPalOrder struct {
	ID         string
	Status     string
	ApproveURL string
}

func (p *PayPalClient) accessToken(ctx context.Context) (string, error) {
	resp, err := p.http.R().
		SetContext(ctx).
		SetBasicAuth(p.clientID, p.secret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		Post("/v1/oauth2/token")
	if err != nil {
		return "", fmt.Errorf("paypal: token request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("paypal: token request failed with status %d: %s", resp.StatusCode(), resp.Body())
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return "", fmt.Errorf("paypal: parse token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("paypal: token missing in response")
	}
	return body.AccessToken, nil
}

func (p *PayPalClient) CreateOrder(ctx context.Context, orderID uint, amount float64, currency string) (*PayPalOrder, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{{
			"custom_id": fmt.Sprint(orderID),
			"amount": map[string]any{
				"currency_code": currency,
				"value":         fmt.Sprintf("%.2f", amount),
			},
		}},
		"application_context": map[string]any{
			"return_url": p.publicBaseURL + "/api/v1/payments/paypal/return",
			"cancel_url": p.publicBaseURL + "/api/v1/payments/paypal/cancel",
		},
	}

	resp, err := p.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post("/v2/checkout/orders")
	if err != nil {
		return nil, fmt.Errorf("paypal: create order: %w", err)
	}
	if resp.StatusCode() != 200 && resp.StatusCode() != 201 {
		return nil, fmt.Errorf("paypal: create order failed with status %d: %s", resp.StatusCode(), resp.Body())
	}

	return parsePayPalOrder(resp.Body())
}

// CaptureOrder settles an approved payment and reports the final status.
func (p *PayPalClient) CaptureOrder(ctx context.Context, paypalOrderID string) (*PayPalOrder, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := p.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		Post("/v2/checkout/orders/" + paypalOrderID + "/capture")
	if err != nil {
		return nil, fmt.Errorf("paypal: capture order: %w", err)
	}
	if resp.StatusCode() != 200 && resp.StatusCode() != 201 {
		return nil, fmt.Errorf("paypal: capture failed with status %d: %s", resp.StatusCode(), resp.Body())
	}

	return parsePayPalOrder(resp.Body())
}

func parsePayPalOrder(body []byte) (*PayPalOrder, error) {
	var raw struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Links  []struct {
			Href string `json:"href"`
			Rel  string `json:"rel"`
		} `json:"links"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("paypal: parse order response: %w", err)
	}
	if raw.ID == "" {
		return nil, fmt.Errorf("paypal: order id missing in response")
	}

	order := &PayPalOrder{ID: raw.ID, Status: raw.Status}
	for _, link := range raw.Links {
		if link.Rel == "approve" {
			order.ApproveURL = link.Href
		}
	}
	return order, nil
}
