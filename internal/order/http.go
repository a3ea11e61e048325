package order

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
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/util"
)

type HTTP struct {
	Svc      *Service
	Producer events.Publisher
}

func (h *HTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req CreateInput
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.Create(ctx, userID, req)
	if err != nil {
		return h.mapError(l, "create_order_failed", err)
	}

	h.publish(c, map[string]any{
		"type":     "order_created",
		"order_id": order.ID,
		"user_id":  userID,
		"total":    order.TotalAmount,
	})

	return c.JSON(http.StatusCreated, order)
}

func (h *HTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		l.Warn("get_order_failed", "status", 400, "reason", "invalid id")
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	order, err := h.Svc.Get(ctx, uint(id))
	if err != nil {
		return h.mapError(l, "get_order_failed", err)
	}

	if order.UserID != userID && middleware.Role(c) != models.RoleAdmin {
		l.Warn("get_order_failed", "status", 403, "reason", "not owner")
		return echo.NewHTTPError(http.StatusForbidden, "not your order")
	}

	return c.JSON(http.StatusOK, order)
}

func (h *HTTP) ListMine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_mine")

	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, orders, err := h.Svc.ListMine(ctx, userID, offset, limit)
	if err != nil {
		l.Error("list_mine_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list orders")
	}

	return c.JSON(http.StatusOK, listResponse(orders, page, limit, offset, total))
}

func (h *HTTP) ListAll(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_all")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, orders, err := h.Svc.ListAll(ctx, offset, limit)
	if err != nil {
		l.Error("list_all_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list orders")
	}

	return c.JSON(http.StatusOK, listResponse(orders, page, limit, offset, total))
}

func (h *HTTP) MarkPaid(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.mark_paid")

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		l.Warn("mark_paid_failed", "status", 400, "reason", "invalid id")
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var req struct {
		TransactionID string `json:"transaction_id"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("mark_paid_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.MarkPaid(ctx, uint(id), req.TransactionID)
	if err != nil {
		return h.mapError(l, "mark_paid_failed", err)
	}

	h.publish(c, map[string]any{
		"type":           "order_paid",
		"order_id":       order.ID,
		"transaction_id": req.TransactionID,
	})

	return c.JSON(http.StatusOK, order)
}

func (h *HTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		l.Warn("update_status_failed", "status", 400, "reason", "invalid id")
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("update_status_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.UpdateStatus(ctx, uint(id), req.Status); err != nil {
		return h.mapError(l, "update_status_failed", err)
	}

	h.publish(c, map[string]any{
		"type":     "order_status_updated",
		"order_id": uint(id),
		"status":   req.Status,
	})

	return c.JSON(http.StatusOK, map[string]any{"message": "order status updated"})
}

func (h *HTTP) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.delete_order")

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		l.Warn("delete_order_failed", "status", 400, "reason", "invalid id")
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	if err := h.Svc.Delete(ctx, uint(id)); err != nil {
		return h.mapError(l, "delete_order_failed", err)
	}

	return c.NoContent(http.StatusNoContent)
}

func listResponse(orders []models.Order, page, limit, offset int, total int64) map[string]any {
	return map[string]any{
		"data": orders,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	}
}

func (h *HTTP) mapError(l *slog.Logger, op string, err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		l.Warn(op, "status", 400, "reason", "invalid input", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		l.Warn(op, "status", 404, "reason", "not found", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrConflict):
		l.Warn(op, "status", 409, "reason", "already processed", "error", err)
		return echo.NewHTTPError(http.StatusConflict, "order already processed")
	default:
		l.Error(op, "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
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
