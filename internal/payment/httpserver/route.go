package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/access"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

func Register(api *echo.Group, h *PaymentHTTP, authMW *middleware.BearerMiddleware) {
	payment := api.Group("/payment")
	payment.POST("/create-order", h.CreateOrder, authMW.RequireCapability(string(access.PaymentsCreate)))
	payment.POST("/verify", h.Verify, authMW.RequireCapability(string(access.PaymentsVerify)))
	payment.POST("/failure", h.Failure, authMW.RequireCapability(string(access.PaymentsVerify)))
}
