// Package admin exposes the back-office dashboard aggregates.
package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/contact"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/order"
	"github.com/Skotchmaster/storefront/internal/user"
)

type HTTP struct {
	Users    *user.GormRepo
	Products *catalog.GormRepo
	Orders   *order.GormRepo
	Messages *contact.GormRepo
}

// Counts returns the headline totals for the dashboard in one call.
func (h *HTTP) Counts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.counts")

	users, err := h.Users.Count(ctx)
	if err != nil {
		l.Error("counts_failed", "status", 500, "table", "users", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	products, err := h.Products.CountProducts(ctx)
	if err != nil {
		l.Error("counts_failed", "status", 500, "table", "products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	orders, err := h.Orders.CountAll(ctx)
	if err != nil {
		l.Error("counts_failed", "status", 500, "table", "orders", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	unfulfilled, err := h.Orders.CountUnfulfilled(ctx)
	if err != nil {
		l.Error("counts_failed", "status", 500, "table", "orders", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	messages, err := h.Messages.Count(ctx)
	if err != nil {
		l.Error("counts_failed", "status", 500, "table", "contact_messages", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"users":              users,
		"products":           products,
		"orders":             orders,
		"orders_unfulfilled": unfulfilled,
		"messages":           messages,
	})
}
