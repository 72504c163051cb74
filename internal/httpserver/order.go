package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	who, err := caller(c)
	if err != nil {
		return err
	}

	order, err := h.Svc.CreateFromCart(ctx, who)
	if err != nil {
		return serviceError(l, "create_order_failed", err, "cannot create order")
	}

	l.Info("create_order_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	who, err := caller(c)
	if err != nil {
		return err
	}

	orders, err := h.Svc.ListOrders(ctx, who)
	if err != nil {
		return serviceError(l, "list_orders_failed", err, "cannot list orders")
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	who, err := caller(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, l, "get_order_failed", "orderId")
	if err != nil {
		return err
	}

	view, err := h.Svc.GetOrder(ctx, who, id)
	if err != nil {
		return serviceError(l, "get_order_failed", err, "cannot get order")
	}
	return c.JSON(http.StatusOK, view)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	who, err := caller(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, l, "update_order_status_failed", "id")
	if err != nil {
		return err
	}
	var req transport.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_order_status_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.UpdateStatus(ctx, who, id, req.Status)
	if err != nil {
		return serviceError(l, "update_order_status_failed", err, "cannot update order status")
	}

	l.Info("update_order_status_success", "order_id", id, "status", order.Status)
	return c.JSON(http.StatusOK, map[string]any{
		"message": "order status updated",
		"order":   order,
	})
}
