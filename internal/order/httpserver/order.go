package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/access"
	"github.com/Skotchmaster/storefront/internal/apperr"
	"github.com/Skotchmaster/storefront/internal/order/models"
	"github.com/Skotchmaster/storefront/internal/order/service"
	"github.com/Skotchmaster/storefront/internal/order/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/util"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperr.Wrap(apperr.KindValidation, err, "id is not a uuid")
	}
	return id, nil
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return apperr.Wrap(apperr.KindValidation, err, "invalid body")
	}

	order, err := h.Svc.CreateOrder(ctx, access.FromEcho(c), req)
	if err != nil {
		apperr.Log(l, "create_order_error", err)
		return err
	}

	l.Info("create_order_success", "order_id", order.ID, "total", order.TotalAmount.String())
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "order": order})
}

func (h *OrderHTTP) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_orders")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, orders, err := h.Svc.ListOrders(ctx, access.FromEcho(c), models.OrderStatus(c.QueryParam("status")), offset, limit)
	if err != nil {
		apperr.Log(l, "get_orders_error", err)
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"orders":     orders,
		"pagination": util.NewMeta(page, offset, limit, total),
	})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	id, err := parseID(c)
	if err != nil {
		apperr.Log(l, "get_order_error", err)
		return err
	}

	order, err := h.Svc.GetOrder(ctx, access.FromEcho(c), id)
	if err != nil {
		apperr.Log(l, "get_order_error", err)
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "order": order})
}

func (h *OrderHTTP) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, err := parseID(c)
	if err != nil {
		apperr.Log(l, "update_status_error", err)
		return err
	}

	var req transport.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_status_error", "status", 400, "reason", "invalid body", "error", err)
		return apperr.Wrap(apperr.KindValidation, err, "invalid body")
	}

	order, err := h.Svc.UpdateStatus(ctx, access.FromEcho(c), id, req.OrderStatus)
	if err != nil {
		apperr.Log(l, "update_status_error", err)
		return err
	}

	l.Info("update_status_success", "order_id", id, "order_status", order.OrderStatus)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "order": order})
}
