package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/access"
	"github.com/Skotchmaster/storefront/internal/apperr"
	cataloghttp "github.com/Skotchmaster/storefront/internal/catalog/httpserver"
	orderhttp "github.com/Skotchmaster/storefront/internal/order/httpserver"
	paymenthttp "github.com/Skotchmaster/storefront/internal/payment/httpserver"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
)

type Deps struct {
	DB        *gorm.DB
	Logger    *slog.Logger
	JWTSecret []byte

	CatalogHandler *cataloghttp.CatalogHTTP
	OrderHandler   *orderhttp.OrderHTTP
	PaymentHandler *paymenthttp.PaymentHTTP
}

func Common(logger *slog.Logger) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		echomw.Recover(),
		echomw.RequestID(),
		loggingmw.RequestLogger(logger),
		echomw.Secure(),
		echomw.BodyLimit("1M"),
	}
}

func New(d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler

	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e.Pre(echomw.RemoveTrailingSlash())
	for _, m := range Common(logger) {
		e.Use(m)
	}

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", ready(d.DB))

	authMW := middleware.NewBearerMiddleware(d.JWTSecret, access.Policy{})

	api := e.Group("/api/v1")
	cataloghttp.Register(api, d.CatalogHandler, authMW)
	orderhttp.Register(api, d.OrderHandler, authMW)
	paymenthttp.Register(api, d.PaymentHandler, authMW)
}

func ready(db *gorm.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		if db == nil {
			return c.NoContent(http.StatusOK)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(ctx); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	}
}
