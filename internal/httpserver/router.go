// Package httpserver wires the HTTP handlers onto the echo router.
package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/admin"
	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/contact"
	"github.com/Skotchmaster/storefront/internal/middleware"
	"github.com/Skotchmaster/storefront/internal/order"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/user"
)

type Deps struct {
	JWTSecret []byte

	Auth     *auth.HTTP
	Catalog  *catalog.HTTP
	Cart     *cart.HTTP
	Orders   *order.HTTP
	Payments *payment.HTTP
	Users    *user.HTTP
	Contact  *contact.HTTP
	Admin    *admin.HTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authMW := middleware.NewAuthMiddleware(d.JWTSecret)

	api := e.Group("/api/v1")

	api.POST("/auth/register", d.Auth.Register)
	api.POST("/auth/login", d.Auth.Login)

	products := api.Group("/products")
	products.GET("", d.Catalog.GetProducts)
	products.GET("/search", d.Catalog.SearchProducts)
	products.GET("/:id", d.Catalog.GetProduct)
	products.POST("", d.Catalog.CreateProduct, authMW.RequireAdmin)
	products.PATCH("/:id", d.Catalog.PatchProduct, authMW.RequireAdmin)
	products.DELETE("/:id", d.Catalog.DeleteProduct, authMW.RequireAdmin)

	carts := api.Group("/cart", authMW.RequireAuth)
	carts.GET("", d.Cart.GetCart)
	carts.POST("/items", d.Cart.UpsertItem)
	carts.POST("/items/batch", d.Cart.BatchUpsert)
	carts.DELETE("/items/:productID", d.Cart.RemoveItem)
	carts.DELETE("", d.Cart.Clear)

	orders := api.Group("/orders", authMW.RequireAuth)
	orders.POST("", d.Orders.CreateOrder)
	orders.GET("", d.Orders.ListMine)
	orders.GET("/:id", d.Orders.GetOrder)
	orders.GET("/all", d.Orders.ListAll, authMW.RequireAdmin)
	orders.POST("/:id/paid", d.Orders.MarkPaid, authMW.RequireAdmin)
	orders.PATCH("/:id/status", d.Orders.UpdateStatus, authMW.RequireAdmin)
	orders.DELETE("/:id", d.Orders.DeleteOrder, authMW.RequireAdmin)

	payments := api.Group("/payments")
	payments.POST("/stripe/checkout", d.Payments.StripeCheckout, authMW.RequireAuth)
	payments.GET("/stripe/return", d.Payments.StripeCallback)
	payments.GET("/stripe/cancel", d.Payments.Cancel)
	payments.POST("/stripe/webhook", d.Payments.StripeCallback)
	payments.POST("/paypal/create", d.Payments.PayPalCreate, authMW.RequireAuth)
	payments.GET("/paypal/return", d.Payments.PayPalCallback)
	payments.GET("/paypal/cancel", d.Payments.Cancel)
	payments.POST("/paypal/webhook", d.Payments.PayPalCallback)

	users := api.Group("/users", authMW.RequireAuth)
	users.GET("/me", d.Users.Me)
	users.POST("/me/password", d.Users.ChangePassword)
	users.POST("/me/avatar", d.Users.UploadAvatar)
	users.GET("", d.Users.ListUsers, authMW.RequireAdmin)
	users.GET("/:id", d.Users.GetUser, authMW.RequireAdmin)
	users.PATCH("/:id", d.Users.UpdateUser)
	users.DELETE("/:id", d.Users.DeleteUser, authMW.RequireAdmin)

	api.POST("/contact", d.Contact.Submit)
	api.GET("/contact", d.Contact.ListMessages, authMW.RequireAdmin)
	api.DELETE("/contact/:id", d.Contact.DeleteMessage, authMW.RequireAdmin)

	api.GET("/admin/counts", d.Admin.Counts, authMW.RequireAdmin)
}
