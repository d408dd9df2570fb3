package httpserver

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/apperr"
	"github.com/Skotchmaster/storefront/internal/catalog/service"
	"github.com/Skotchmaster/storefront/internal/catalog/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/util"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperr.Wrap(apperr.KindValidation, err, "id is not a uuid")
	}
	return id, nil
}

func parseDecimalParam(c echo.Context, name string) (*decimal.Decimal, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, name+" is not a number")
	}
	return &d, nil
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := parseID(c)
	if err != nil {
		apperr.Log(l, "get_product_error", err)
		return err
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		apperr.Log(l, "get_product_error", err)
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "product": product})
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	minPrice, err := parseDecimalParam(c, "minPrice")
	if err != nil {
		apperr.Log(l, "get_products_error", err)
		return err
	}
	maxPrice, err := parseDecimalParam(c, "maxPrice")
	if err != nil {
		apperr.Log(l, "get_products_error", err)
		return err
	}

	filter := transport.ListFilter{
		Category: strings.TrimSpace(c.QueryParam("category")),
		Search:   c.QueryParam("search"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Featured: c.QueryParam("featured") == "true",
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.ListProducts(ctx, filter, offset, limit)
	if err != nil {
		apperr.Log(l, "get_products_error", err)
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"products":   items,
		"pagination": util.NewMeta(page, offset, limit, total),
	})
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search_products")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), offset, limit)
	if err != nil {
		apperr.Log(l, "search_products_error", err)
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"products":   items,
		"pagination": util.NewMeta(page, offset, limit, total),
	})
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_product_error", "status", 400, "reason", "invalid body", "error", err)
		return apperr.Wrap(apperr.KindValidation, err, "invalid body")
	}

	product, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		apperr.Log(l, "create_product_error", err)
		return err
	}

	l.Info("create_product_success", "product_id", product.ID)
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "product": product})
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch_product")

	id, err := parseID(c)
	if err != nil {
		apperr.Log(l, "patch_product_error", err)
		return err
	}

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("patch_product_error", "status", 400, "reason", "invalid body", "error", err)
		return apperr.Wrap(apperr.KindValidation, err, "invalid body")
	}

	product, err := h.Svc.PatchProduct(ctx, id, req)
	if err != nil {
		apperr.Log(l, "patch_product_error", err)
		return err
	}

	l.Info("patch_product_success", "product_id", id)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "product": product})
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	id, err := parseID(c)
	if err != nil {
		apperr.Log(l, "delete_product_error", err)
		return err
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		apperr.Log(l, "delete_product_error", err)
		return err
	}

	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}
