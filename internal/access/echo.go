package access

import (
	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

// FromEcho returns the principal the auth middleware stored on c.
func FromEcho(c echo.Context) Principal {
	return Principal{UserID: middleware.UserID(c), Role: middleware.Role(c)}
}
