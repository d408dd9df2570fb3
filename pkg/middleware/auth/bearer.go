package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// Authorizer decides whether a role holds a capability.
type Authorizer interface {
	Allows(role, capability string) bool
}

type BearerMiddleware struct {
	JWTSecret []byte
	Policy    Authorizer
}

func NewBearerMiddleware(secret []byte, policy Authorizer) *BearerMiddleware {
	return &BearerMiddleware{
		JWTSecret: secret,
		Policy:    policy,
	}
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

func (m *BearerMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

// RequireCapability authenticates the caller and rejects it with 403 unless
// its role holds capability.
func (m *BearerMiddleware) RequireCapability(capability string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return m.requireAuthWithValidator(next, func(claims *tokens.AccessClaims) error {
			if m.Policy == nil || !m.Policy.Allows(claims.Role, capability) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
			}
			return nil
		})
	}
}

func (m *BearerMiddleware) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("middleware", "auth")

		raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			l.Warn("auth_error", "status", 401, "reason", "missing access token")
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil {
			reason := "invalid access token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				reason = "access token expired"
			}
			l.Warn("auth_error", "status", 401, "reason", reason, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, reason)
		}

		if validator != nil {
			if vErr := validator(claims); vErr != nil {
				l.Warn("auth_error", "status", 403, "reason", "insufficient permissions", "user_id", claims.Subject, "role", claims.Role)
				return vErr
			}
		}

		setUserContext(c, claims)
		return next(c)
	}
}

func bearerToken(header string) (string, bool) {
	scheme, tok, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set(ContextUserID, claims.Subject)
	c.Set(ContextRole, claims.Role)

	l := logging.FromContext(c.Request().Context()).With("user_id", claims.Subject)
	c.SetRequest(c.Request().WithContext(logging.IntoContext(c.Request().Context(), l)))
}

// UserID and Role read what the middleware stored; empty when unauthenticated.
func UserID(c echo.Context) string {
	s, _ := c.Get(ContextUserID).(string)
	return s
}

func Role(c echo.Context) string {
	s, _ := c.Get(ContextRole).(string)
	return s
}
