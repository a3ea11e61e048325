package payment

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/order"
)

type HTTP struct {
	Stripe   *StripeClient
	PayPal   *PayPalClient
	Orders   *order.Service
	Producer events.Publisher
}

type checkoutRequest struct {
	OrderID  uint   `json:"order_id"`
	Currency string `json:"currency"`
}

// StripeCheckout opens a hosted session for a pending order and returns the
// redirect URL. Nothing but the session reference is written locally.
func (h *HTTP) StripeCheckout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.stripe_checkout")

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	req, ord, err := h.bindCheckout(c, userID)
	if err != nil {
		return err
	}

	session, err := h.Stripe.CreateCheckoutSession(ctx, ord.ID, req.Currency, ord.Items)
	if err != nil {
		l.Error("stripe_checkout_failed", "status", 500, "order_id", ord.ID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to initiate payment")
	}

	if err := h.Orders.AttachTransaction(ctx, ord.ID, session.ID, "stripe"); err != nil {
		if errors.Is(err, order.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, "order already processed")
		}
		l.Error("stripe_checkout_failed", "status", 500, "reason", "cannot attach transaction", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to initiate payment")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"order_id":     ord.ID,
		"session_id":   session.ID,
		"redirect_url": session.URL,
	})
}

// StripeCallback verifies the session against the processor before touching
// the order; the notification body itself is never trusted.
func (h *HTTP) StripeCallback(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.stripe_callback")

	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		var payload struct {
			Data struct {
				Object struct {
					ID string `json:"id"`
				} `json:"object"`
			} `json:"data"`
		}
		if err := c.Bind(&payload); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid notification")
		}
		sessionID = payload.Data.Object.ID
	}
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing session id")
	}

	session, err := h.Stripe.GetSession(ctx, sessionID)
	if err != nil {
		l.Error("stripe_callback_failed", "status", 500, "session_id", sessionID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to check payment status")
	}

	ord, err := h.Orders.GetByTransaction(ctx, sessionID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "unknown transaction")
		}
		l.Error("stripe_callback_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	switch {
	case session.PaymentStatus == "paid":
		return h.settle(c, ord, sessionID, true)
	case session.Status == "expired":
		return h.settle(c, ord, sessionID, false)
	default:
		// still awaiting payment
		return c.JSON(http.StatusOK, map[string]any{"order_id": ord.ID, "payment_status": ord.PaymentStatus})
	}
}

// PayPalCreate opens a payment resource for a pending order and returns the
// approval URL.
func (h *HTTP) PayPalCreate(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.paypal_create")

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	req, ord, err := h.bindCheckout(c, userID)
	if err != nil {
		return err
	}

	ppOrder, err := h.PayPal.CreateOrder(ctx, ord.ID, ord.TotalAmount, req.Currency)
	if err != nil {
		l.Error("paypal_create_failed", "status", 500, "order_id", ord.ID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to initiate payment")
	}

	if err := h.Orders.AttachTransaction(ctx, ord.ID, ppOrder.ID, "paypal"); err != nil {
		if errors.Is(err, order.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, "order already processed")
		}
		l.Error("paypal_create_failed", "status", 500, "reason", "cannot attach transaction", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to initiate payment")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"order_id":     ord.ID,
		"paypal_id":    ppOrder.ID,
		"redirect_url": ppOrder.ApproveURL,
	})
}

// PayPalCallback captures the approved payment and settles the order from
// the capture result.
func (h *HTTP) PayPalCallback(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.paypal_callback")

	paypalID := c.QueryParam("token")
	if paypalID == "" {
		var payload struct {
			PayPalID string `json:"paypal_id"`
		}
		if err := c.Bind(&payload); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid notification")
		}
		paypalID = payload.PayPalID
	}
	if paypalID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing token")
	}

	ord, err := h.Orders.GetByTransaction(ctx, paypalID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "unknown transaction")
		}
		l.Error("paypal_callback_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	// A capture error is a transport or processor failure, not a decline;
	// the order stays pending so the capture can be retried.
	captured, err := h.PayPal.CaptureOrder(ctx, paypalID)
	if err != nil {
		l.Error("paypal_callback_failed", "status", 502, "reason", "capture failed", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "payment processor unavailable")
	}

	switch captured.Status {
	case "COMPLETED":
		return h.settle(c, ord, paypalID, true)
	case "DECLINED", "VOIDED":
		return h.settle(c, ord, paypalID, false)
	default:
		// not a final answer from the processor
		return c.JSON(http.StatusOK, map[string]any{"order_id": ord.ID, "payment_status": ord.PaymentStatus})
	}
}

// Cancel lands the shopper back after abandoning a hosted checkout page.
// The order was never settled, so there is nothing to update.
func (h *HTTP) Cancel(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"payment_status": models.PaymentStatusPending, "detail": "payment cancelled"})
}

func (h *HTTP) bindCheckout(c echo.Context, userID uint) (*checkoutRequest, *models.Order, error) {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.checkout")

	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_failed", "status", 400, "reason", "invalid body", "error", err)
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Currency == "" {
		req.Currency = "usd"
	}

	ord, err := h.Orders.Get(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return nil, nil, echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		l.Error("checkout_failed", "status", 500, "error", err)
		return nil, nil, echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if ord.UserID != userID && middleware.Role(c) != models.RoleAdmin {
		return nil, nil, echo.NewHTTPError(http.StatusForbidden, "not your order")
	}
	if ord.PaymentStatus != models.PaymentStatusPending {
		return nil, nil, echo.NewHTTPError(http.StatusConflict, "order already processed")
	}

	return &req, ord, nil
}

func (h *HTTP) settle(c echo.Context, ord *models.Order, txID string, paid bool) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.settle", "order_id", ord.ID)

	var (
		settled *models.Order
		err     error
	)
	if paid {
		settled, err = h.Orders.MarkPaid(ctx, ord.ID, txID)
	} else {
		settled, err = h.Orders.MarkFailed(ctx, ord.ID, txID)
	}
	if err != nil {
		if errors.Is(err, order.ErrConflict) {
			// Another callback already settled this order; report the
			// stored state rather than the one read before the attempt.
			current, getErr := h.Orders.Get(ctx, ord.ID)
			if getErr != nil {
				l.Error("settle_failed", "status", 500, "error", getErr)
				return echo.NewHTTPError(http.StatusInternalServerError, "failed to load order")
			}
			return c.JSON(http.StatusOK, map[string]any{"order_id": current.ID, "payment_status": current.PaymentStatus})
		}
		l.Error("settle_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update order")
	}

	h.publish(c, map[string]any{
		"type":           "order_payment_settled",
		"order_id":       settled.ID,
		"payment_status": settled.PaymentStatus,
		"transaction_id": txID,
	})

	return c.JSON(http.StatusOK, map[string]any{
		"order_id":       settled.ID,
		"payment_status": settled.PaymentStatus,
	})
}

func (h *HTTP) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx := c.Request().Context()
	if err := h.Producer.PublishEvent(ctx, events.TopicOrderEvents, fmt.Sprint(event["order_id"]), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "error", err)
	}
}
