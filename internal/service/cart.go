package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CartService struct {
	Repo   *repo.GormRepo
	Events mykafka.Publisher
}

// ownedCart hides carts of other users behind the same not-found as a missing cart.
func ownedCart(ctx context.Context, r *repo.GormRepo, caller Caller, cartID uint) (*models.Cart, error) {
	cart, err := r.GetCart(ctx, cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	if !caller.CanAccess(cart.UserID) {
		return nil, ErrCartNotFound
	}
	return cart, nil
}

func (s *CartService) CreateOrGet(ctx context.Context, caller Caller) (*models.Cart, bool, error) {
	l := logging.FromContext(ctx).With("svc", "cart.create_or_get")

	cart, created, err := s.Repo.GetOrCreateCart(ctx, caller.UserID)
	if err != nil {
		return nil, false, fmt.Errorf("get or create cart: %w", err)
	}
	if created {
		l.Info("cart_created", "cart_id", cart.ID, "user_id", caller.UserID)
	}
	return cart, created, nil
}

func (s *CartService) GetCart(ctx context.Context, caller Caller, cartID uint) (*transport.CartView, error) {
	cart, err := ownedCart(ctx, s.Repo, caller, cartID)
	if err != nil {
		return nil, err
	}
	items, err := s.Repo.CartLines(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("load cart items: %w", err)
	}
	return &transport.CartView{Cart: cart, Items: items}, nil
}

// AddItem increments the quantity when the product is already in the cart.
// created reports whether a new cart item row was inserted.
func (s *CartService) AddItem(ctx context.Context, caller Caller, cartID uint, req transport.AddCartItemRequest) (*models.CartItem, bool, error) {
	l := logging.FromContext(ctx).With("svc", "cart.add_item", "cart_id", cartID)

	if req.ProductID == 0 {
		return nil, false, fmt.Errorf("product_id is required: %w", ErrValidation)
	}
	if req.Quantity < 1 {
		return nil, false, fmt.Errorf("quantity must be a positive integer: %w", ErrValidation)
	}

	cart, err := ownedCart(ctx, s.Repo, caller, cartID)
	if err != nil {
		return nil, false, err
	}

	item, created, err := s.Repo.AddCartItem(ctx, cart.ID, req.ProductID, req.Quantity)
	if err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			return nil, false, ErrProductNotFound
		}
		return nil, false, fmt.Errorf("add cart item: %w", err)
	}

	publish(ctx, s.Events, l, mykafka.TopicCartEvents, strconv.FormatUint(uint64(cart.UserID), 10), map[string]any{
		"type":      "cart_item_added",
		"cartID":    cart.ID,
		"productID": item.ProductID,
		"quantity":  req.Quantity,
	})
	return item, created, nil
}

func (s *CartService) RemoveItem(ctx context.Context, caller Caller, cartID, itemID uint) (*models.CartItem, error) {
	l := logging.FromContext(ctx).With("svc", "cart.remove_item", "cart_id", cartID)

	cart, err := ownedCart(ctx, s.Repo, caller, cartID)
	if err != nil {
		return nil, err
	}

	item, err := s.Repo.RemoveCartItem(ctx, cart.ID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("remove cart item: %w", err)
	}

	publish(ctx, s.Events, l, mykafka.TopicCartEvents, strconv.FormatUint(uint64(cart.UserID), 10), map[string]any{
		"type":      "cart_item_removed",
		"cartID":    cart.ID,
		"productID": item.ProductID,
	})
	return item, nil
}

func (s *CartService) Clear(ctx context.Context, caller Caller, cartID uint) (int64, error) {
	l := logging.FromContext(ctx).With("svc", "cart.clear", "cart_id", cartID)

	cart, err := ownedCart(ctx, s.Repo, caller, cartID)
	if err != nil {
		return 0, err
	}

	n, err := s.Repo.ClearCart(ctx, cart.ID)
	if err != nil {
		return 0, fmt.Errorf("clear cart: %w", err)
	}

	publish(ctx, s.Events, l, mykafka.TopicCartEvents, strconv.FormatUint(uint64(cart.UserID), 10), map[string]any{
		"type":    "cart_cleared",
		"cartID":  cart.ID,
		"deleted": n,
	})
	return n, nil
}
