package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/access"
	"github.com/Skotchmaster/storefront/internal/apperr"
	"github.com/Skotchmaster/storefront/internal/payment/service"
	"github.com/Skotchmaster/storefront/internal/payment/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type PaymentHTTP struct {
	Svc *service.PaymentService
}

func (h *PaymentHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.create_order")

	var req transport.CreateIntentRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_payment_error", "status", 400, "reason", "invalid body", "error", err)
		return apperr.Wrap(apperr.KindValidation, err, "invalid body")
	}

	resp, err := h.Svc.CreateIntent(ctx, access.FromEcho(c), req)
	if err != nil {
		apperr.Log(l, "create_payment_error", err)
		return err
	}

	l.Info("create_payment_success", "gateway_order_id", resp.OrderID, "amount", resp.Amount)
	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHTTP) Verify(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.verify")

	var req transport.VerifyRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("verify_payment_error", "status", 400, "reason", "invalid body", "error", err)
		return apperr.Wrap(apperr.KindValidation, err, "invalid body")
	}

	order, err := h.Svc.Verify(ctx, access.FromEcho(c), req)
	if err != nil {
		apperr.Log(l, "verify_payment_error", err)
		return err
	}

	l.Info("verify_payment_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "order": order})
}

func (h *PaymentHTTP) Failure(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.failure")

	var req transport.FailureRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("payment_failure_error", "status", 400, "reason", "invalid body", "error", err)
		return apperr.Wrap(apperr.KindValidation, err, "invalid body")
	}

	order, err := h.Svc.ReportFailure(ctx, access.FromEcho(c), req)
	if err != nil {
		apperr.Log(l, "payment_failure_error", err)
		return err
	}

	l.Info("payment_failure_recorded", "order_id", order.ID)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "order": order})
}
