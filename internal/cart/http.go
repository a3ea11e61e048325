package cart

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware"
)

type HTTP struct {
	Svc      *Service
	Producer events.Publisher
}

func (h *HTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get_cart")

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	cart, err := h.Svc.Get(ctx, userID)
	if err != nil {
		l.Error("get_cart_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get cart")
	}

	return c.JSON(http.StatusOK, cart)
}

func (h *HTTP) UpsertItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.upsert_item")

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req ItemInput
	if err := c.Bind(&req); err != nil {
		l.Warn("upsert_item_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	cart, err := h.Svc.UpsertItem(ctx, userID, req)
	if err != nil {
		return h.mapError(l, "upsert_item_failed", err)
	}

	h.publish(c, map[string]any{
		"type":       "cart_item_upserted",
		"user_id":    userID,
		"product_id": req.ProductID,
		"quantity":   req.Quantity,
	}, userID)

	return c.JSON(http.StatusOK, cart)
}

func (h *HTTP) BatchUpsert(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.batch_upsert")

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		Items []ItemInput `json:"items"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("batch_upsert_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	cart, err := h.Svc.BatchUpsert(ctx, userID, req.Items)
	if err != nil {
		return h.mapError(l, "batch_upsert_failed", err)
	}

	h.publish(c, map[string]any{
		"type":    "cart_synced",
		"user_id": userID,
		"items":   len(req.Items),
	}, userID)

	return c.JSON(http.StatusOK, cart)
}

func (h *HTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	productID, err := strconv.ParseUint(c.Param("productID"), 10, 64)
	if err != nil {
		l.Warn("remove_item_failed", "status", 400, "reason", "invalid product id")
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	cart, err := h.Svc.RemoveItem(ctx, userID, uint(productID))
	if err != nil {
		return h.mapError(l, "remove_item_failed", err)
	}

	h.publish(c, map[string]any{
		"type":       "cart_item_removed",
		"user_id":    userID,
		"product_id": uint(productID),
	}, userID)

	return c.JSON(http.StatusOK, cart)
}

func (h *HTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	cart, err := h.Svc.Clear(ctx, userID)
	if err != nil {
		l.Error("clear_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot clear cart")
	}

	h.publish(c, map[string]any{
		"type":    "cart_cleared",
		"user_id": userID,
	}, userID)

	return c.JSON(http.StatusOK, cart)
}

func (h *HTTP) mapError(l *slog.Logger, op string, err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		l.Warn(op, "status", 400, "reason", "invalid input", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		l.Warn(op, "status", 404, "reason", "not found", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		l.Error(op, "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func (h *HTTP) publish(c echo.Context, event map[string]any, userID uint) {
	if h.Producer == nil {
		return
	}
	ctx := c.Request().Context()
	if err := h.Producer.PublishEvent(ctx, events.TopicCartEvents, fmt.Sprint(userID), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "error", err)
	}
}
