package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := parseID(c, l, "get_product_failed", "id")
	if err != nil {
		return err
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return serviceError(l, "get_product_failed", err, "cannot get product")
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	var category *uint
	if raw := c.QueryParam("category"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			l.Warn("get_products_failed", "status", 400, "reason", "category is not an integer", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "invalid category")
		}
		id := uint(v)
		category = &id
	}

	items, err := h.Svc.ListProducts(ctx, category)
	if err != nil {
		return serviceError(l, "get_products_failed", err, "cannot get products")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)
	if page < 1 {
		page = 1
	}

	total, items, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), offset, limit)
	if err != nil {
		return serviceError(l, "search_products_failed", err, "cannot search products")
	}

	l.Info("search_products_success", "total", total)
	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": util.TotalPages(total, limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	var req transport.ProductRequest
	if err := bindAndValidate(c, l, "create_product_failed", &req); err != nil {
		return err
	}

	created, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		return serviceError(l, "create_product_failed", err, "cannot create product")
	}

	l.Info("create_product_success", "product_id", created.ID)
	return c.JSON(http.StatusCreated, created)
}

func (h *CatalogHTTP) ReplaceProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.replace_product")

	id, err := parseID(c, l, "replace_product_failed", "id")
	if err != nil {
		return err
	}
	var req transport.ProductRequest
	if err := bindAndValidate(c, l, "replace_product_failed", &req); err != nil {
		return err
	}

	saved, err := h.Svc.ReplaceProduct(ctx, id, req)
	if err != nil {
		return serviceError(l, "replace_product_failed", err, "cannot update product")
	}

	l.Info("replace_product_success", "product_id", saved.ID)
	return c.JSON(http.StatusOK, saved)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	id, err := parseID(c, l, "delete_product_failed", "id")
	if err != nil {
		return err
	}

	deleted, err := h.Svc.DeleteProduct(ctx, id)
	if err != nil {
		return serviceError(l, "delete_product_failed", err, "cannot delete product")
	}

	l.Info("delete_product_success", "product_id", id)
	return c.JSON(http.StatusOK, map[string]any{
		"message": "product deleted",
		"product": deleted,
	})
}
