package server

import (
	"net/http"
	"time"

	"oifit/internal/config"
	"oifit/internal/handler"
	"oifit/internal/middleware"

	"github.com/labstack/echo/v4"
)

// 各handlerのルート
type Handlers struct {
	Products      *handler.ProductHandler
	Users         *handler.UserHandler
	Addresses     *handler.AddressHandler
	Cart          *handler.CartHandler
	Payment       *handler.PaymentHandler
	Orders        *handler.OrderHandler
	AdminOrders   *handler.AdminOrderHandler
	AdminProducts *handler.AdminProductHandler
	AdminUsers    *handler.AdminUserHandler
	AdminAudit    *handler.AdminAuditHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, users middleware.UserProvisioner, h Handlers) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "oifit-api",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	h.Products.RegisterRoutes(e)
	h.Users.RegisterRoutes(e, cfg, users)
	h.Addresses.RegisterRoutes(e, cfg, users)
	h.Cart.RegisterRoutes(e, cfg, users)
	h.Payment.RegisterRoutes(e, cfg, users)
	h.Orders.RegisterRoutes(e, cfg, users)
	h.AdminOrders.RegisterRoutes(e, cfg, users)
	h.AdminProducts.RegisterRoutes(e, cfg, users)
	h.AdminUsers.RegisterRoutes(e, cfg, users)
	h.AdminAudit.RegisterRoutes(e, cfg, users)
}
