package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/access"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

func Register(api *echo.Group, h *OrderHTTP, authMW *middleware.BearerMiddleware) {
	orders := api.Group("/orders", authMW.RequireAuth)
	orders.GET("", h.GetOrders)
	orders.GET("/:id", h.GetOrder)
	orders.POST("", h.CreateOrder, authMW.RequireCapability(string(access.OrdersCreate)))
	orders.PUT("/:id", h.UpdateOrderStatus, authMW.RequireCapability(string(access.OrdersUpdateStatus)))
}
