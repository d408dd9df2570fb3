package apperr

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Kind    string `json:"kind"`
}

func kindFromStatus(code int) Kind {
	switch code {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusBadGateway:
		return KindUpstreamGateway
	}
	if code >= 400 && code < 500 {
		return KindValidation
	}
	return KindInternal
}

// ToResponse maps any handler error onto the wire contract.
func ToResponse(err error) (int, Response) {
	var he *echo.HTTPError
	if errors.As(err, &he) && KindOf(err) == KindInternal {
		kind := kindFromStatus(he.Code)
		msg := fmt.Sprint(he.Message)
		if kind == KindInternal {
			msg = "internal error"
		}
		return he.Code, Response{Error: msg, Kind: kind.String()}
	}

	kind := KindOf(err)
	return kind.HTTPStatus(), Response{Error: PublicMessage(err), Kind: kind.String()}
}

// HTTPErrorHandler is installed as echo's error handler.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, body := ToResponse(err)
	if code >= http.StatusInternalServerError {
		logging.FromContext(c.Request().Context()).Error("unhandled_error", "status", code, "error", err)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, body)
	}
	if werr != nil {
		logging.FromContext(c.Request().Context()).Error("write_error_response_failed", "error", werr)
	}
}

// Log records a failed operation at a level matching its eventual status.
func Log(l *slog.Logger, event string, err error) {
	code, body := ToResponse(err)
	if code >= http.StatusInternalServerError {
		l.Error(event, "status", code, "reason", body.Error, "error", err)
		return
	}
	l.Warn(event, "status", code, "reason", body.Error, "error", err)
}
