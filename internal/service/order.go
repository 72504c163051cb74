package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type OrderService struct {
	Repo   *repo.GormRepo
	Events mykafka.Publisher
	// Pay charges the order total inside the order transaction. Defaults to SimulatePayment.
	Pay repo.PaymentFunc
}

// SimulatePayment always succeeds; there is no payment gateway.
func SimulatePayment(ctx context.Context, userID uint, total decimal.Decimal) error {
	logging.FromContext(ctx).Info("payment_simulated", "user_id", userID, "total", total.StringFixed(2))
	return nil
}

func (s *OrderService) pay() repo.PaymentFunc {
	if s.Pay != nil {
		return s.Pay
	}
	return SimulatePayment
}

// Checkout places a paid order from the given cart.
func (s *OrderService) Checkout(ctx context.Context, caller Caller, cartID uint) (*models.Order, error) {
	cart, err := ownedCart(ctx, s.Repo, caller, cartID)
	if err != nil {
		return nil, err
	}
	return s.placeOrder(ctx, cart, models.OrderStatusPaid)
}

// CreateFromCart places a pending order from the caller's own cart.
func (s *OrderService) CreateFromCart(ctx context.Context, caller Caller) (*models.Order, error) {
	cart, err := s.Repo.FindCartByUser(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart not found: %w", ErrValidation)
		}
		return nil, err
	}
	return s.placeOrder(ctx, cart, models.OrderStatusPending)
}

func (s *OrderService) placeOrder(ctx context.Context, cart *models.Cart, status models.OrderStatus) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.place", "cart_id", cart.ID, "status", status)

	order, err := s.Repo.PlaceOrder(ctx, cart.ID, status, s.pay())
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrEmptyCart):
			return nil, ErrEmptyCart
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("place order: %w", err)
	}

	l.Info("order_placed", "order_id", order.ID, "total", order.TotalPrice.StringFixed(2), "items", len(order.Items))
	publish(ctx, s.Events, l, mykafka.TopicOrderEvents, strconv.FormatUint(uint64(order.UserID), 10), map[string]any{
		"type":    "order_placed",
		"orderID": order.ID,
		"userID":  order.UserID,
		"total":   order.TotalPrice.StringFixed(2),
		"status":  order.Status,
	})
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, caller Caller) ([]models.Order, error) {
	return s.Repo.ListOrders(ctx, caller.UserID)
}

// GetOrder answers ErrOrderNotFound both for missing orders and for orders of other users.
func (s *OrderService) GetOrder(ctx context.Context, caller Caller, id uint) (*transport.OrderView, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !caller.CanAccess(order.UserID) {
		return nil, ErrOrderNotFound
	}

	items, err := s.Repo.OrderLines(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	return &transport.OrderView{Order: order, Items: items}, nil
}

// UpdateStatus checks the status value before touching the store.
func (s *OrderService) UpdateStatus(ctx context.Context, caller Caller, id uint, status string) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.update_status", "order_id", id)

	next := models.OrderStatus(status)
	if !next.Valid() {
		return nil, fmt.Errorf("invalid status %q: %w", status, ErrValidation)
	}

	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !caller.CanAccess(order.UserID) {
		return nil, ErrForbidden
	}

	updated, err := s.Repo.UpdateOrderStatus(ctx, id, next)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	publish(ctx, s.Events, l, mykafka.TopicOrderEvents, strconv.FormatUint(uint64(updated.UserID), 10), map[string]any{
		"type":    "order_status_updated",
		"orderID": updated.ID,
		"from":    order.Status,
		"to":      updated.Status,
	})
	return updated, nil
}
