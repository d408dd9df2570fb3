package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/access"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

func Register(api *echo.Group, h *CatalogHTTP, authMW *middleware.BearerMiddleware) {
	products := api.Group("/products")
	products.GET("/search", h.SearchProducts)
	products.GET("", h.GetProducts)
	products.GET("/:id", h.GetProduct)

	admin := products.Group("", authMW.RequireCapability(string(access.ProductsWrite)))
	admin.POST("", h.CreateProduct)
	admin.PATCH("/:id", h.PatchProduct)
	admin.DELETE("/:id", h.DeleteProduct)
}
