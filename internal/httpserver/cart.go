package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CartHTTP struct {
	Svc    *service.CartService
	Orders *service.OrderService
}

func (h *CartHTTP) CreateOrGetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.create_or_get")

	who, err := caller(c)
	if err != nil {
		return err
	}

	cart, created, err := h.Svc.CreateOrGet(ctx, who)
	if err != nil {
		return serviceError(l, "create_cart_failed", err, "cannot create cart")
	}
	if created {
		return c.JSON(http.StatusCreated, cart)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	who, err := caller(c)
	if err != nil {
		return err
	}
	cartID, err := parseID(c, l, "get_cart_failed", "cartId")
	if err != nil {
		return err
	}

	view, err := h.Svc.GetCart(ctx, who, cartID)
	if err != nil {
		return serviceError(l, "get_cart_failed", err, "cannot get cart")
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_item")

	who, err := caller(c)
	if err != nil {
		return err
	}
	cartID, err := parseID(c, l, "add_cart_item_failed", "cartId")
	if err != nil {
		return err
	}
	var req transport.AddCartItemRequest
	if err := bindAndValidate(c, l, "add_cart_item_failed", &req); err != nil {
		return err
	}

	item, created, err := h.Svc.AddItem(ctx, who, cartID, req)
	if err != nil {
		return serviceError(l, "add_cart_item_failed", err, "cannot add item to cart")
	}

	l.Info("add_cart_item_success", "cart_id", cartID, "product_id", item.ProductID, "created", created)
	if created {
		return c.JSON(http.StatusCreated, item)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	who, err := caller(c)
	if err != nil {
		return err
	}
	cartID, err := parseID(c, l, "remove_cart_item_failed", "cartId")
	if err != nil {
		return err
	}
	itemID, err := parseID(c, l, "remove_cart_item_failed", "itemId")
	if err != nil {
		return err
	}

	item, err := h.Svc.RemoveItem(ctx, who, cartID, itemID)
	if err != nil {
		return serviceError(l, "remove_cart_item_failed", err, "cannot remove item from cart")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": "item removed from cart",
		"item":    item,
	})
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	who, err := caller(c)
	if err != nil {
		return err
	}
	cartID, err := parseID(c, l, "clear_cart_failed", "cartId")
	if err != nil {
		return err
	}

	n, err := h.Svc.Clear(ctx, who, cartID)
	if err != nil {
		return serviceError(l, "clear_cart_failed", err, "cannot clear cart")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":       "cart cleared",
		"deleted_count": n,
	})
}

func (h *CartHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.checkout")

	who, err := caller(c)
	if err != nil {
		return err
	}
	cartID, err := parseID(c, l, "checkout_failed", "cartId")
	if err != nil {
		return err
	}

	order, err := h.Orders.Checkout(ctx, who, cartID)
	if err != nil {
		return serviceError(l, "checkout_failed", err, "checkout failed")
	}

	l.Info("checkout_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, map[string]any{
		"message": "checkout successful, order placed",
		"order":   order,
	})
}
