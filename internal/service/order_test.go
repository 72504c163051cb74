package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type orderFixture struct {
	orders *OrderService
	carts  *CartService
	events *testutil.RecordingPublisher
	owner  Caller
	other  Caller
	admin  Caller
	cartID uint
}

// newOrderFixture fills the owner's cart with 2 x 10.00 and 1 x 5.50.
func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	db := testutil.InitTestDB(t)
	r := repo.New(db)
	events := &testutil.RecordingPublisher{}
	f := &orderFixture{
		orders: &OrderService{Repo: r, Events: events},
		carts:  &CartService{Repo: r},
		events: events,
	}

	owner := testutil.CreateUser(t, db, "owner", "owner@example.com", "pw", models.RoleUser)
	other := testutil.CreateUser(t, db, "other", "other@example.com", "pw", models.RoleUser)
	admin := testutil.CreateUser(t, db, "admin", "admin@example.com", "pw", models.RoleAdmin)
	f.owner = Caller{UserID: owner.ID, Role: owner.Role}
	f.other = Caller{UserID: other.ID, Role: other.Role}
	f.admin = Caller{UserID: admin.ID, Role: admin.Role}

	a := testutil.CreateProduct(t, db, "A", "10.00", 10)
	b := testutil.CreateProduct(t, db, "B", "5.50", 10)

	ctx := context.Background()
	cart, _, err := f.carts.CreateOrGet(ctx, f.owner)
	require.NoError(t, err)
	f.cartID = cart.ID
	_, _, err = f.carts.AddItem(ctx, f.owner, cart.ID, transport.AddCartItemRequest{ProductID: a.ID, Quantity: 2})
	require.NoError(t, err)
	_, _, err = f.carts.AddItem(ctx, f.owner, cart.ID, transport.AddCartItemRequest{ProductID: b.ID, Quantity: 1})
	require.NoError(t, err)
	return f
}

func TestOrderService_Checkout(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	ctx := context.Background()

	order, err := f.orders.Checkout(ctx, f.owner, f.cartID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.Equal(t, "25.50", order.TotalPrice.StringFixed(2))
	assert.Len(t, order.Items, 2)

	view, err := f.carts.GetCart(ctx, f.owner, f.cartID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	_, err = f.orders.Checkout(ctx, f.owner, f.cartID)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, []string{"order_placed"}, f.events.Types())
}

func TestOrderService_CheckoutForeignCart(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	_, err := f.orders.Checkout(context.Background(), f.other, f.cartID)
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestOrderService_PaymentFailureRollsBack(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	ctx := context.Background()
	declined := errors.New("card declined")

	var charged decimal.Decimal
	f.orders.Pay = func(_ context.Context, _ uint, total decimal.Decimal) error {
		charged = total
		return declined
	}

	_, err := f.orders.Checkout(ctx, f.owner, f.cartID)
	require.ErrorIs(t, err, declined)
	assert.Equal(t, "25.50", charged.StringFixed(2))

	view, err := f.carts.GetCart(ctx, f.owner, f.cartID)
	require.NoError(t, err)
	assert.Len(t, view.Items, 2)

	orders, err := f.orders.ListOrders(ctx, f.owner)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, f.events.Types())
}

func TestOrderService_CreateFromCart(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	ctx := context.Background()

	order, err := f.orders.CreateFromCart(ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, "25.50", order.TotalPrice.StringFixed(2))

	// the other user has never created a cart
	_, err = f.orders.CreateFromCart(ctx, f.other)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "cart not found")
}

func TestOrderService_GetOrderAccess(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	ctx := context.Background()
	order, err := f.orders.Checkout(ctx, f.owner, f.cartID)
	require.NoError(t, err)

	view, err := f.orders.GetOrder(ctx, f.owner, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, view.Order.ID)
	require.Len(t, view.Items, 2)
	assert.Equal(t, "A", view.Items[0].Name)

	_, err = f.orders.GetOrder(ctx, f.other, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = f.orders.GetOrder(ctx, f.admin, order.ID)
	assert.NoError(t, err)

	_, err = f.orders.GetOrder(ctx, f.owner, 9999)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	mine, err := f.orders.ListOrders(ctx, f.owner)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	theirs, err := f.orders.ListOrders(ctx, f.other)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	ctx := context.Background()
	order, err := f.orders.CreateFromCart(ctx, f.owner)
	require.NoError(t, err)

	tests := []struct {
		name    string
		caller  Caller
		id      uint
		status  string
		wantErr error
	}{
		{name: "invalid status before lookup", caller: f.owner, id: 9999, status: "lost", wantErr: ErrValidation},
		{name: "missing order", caller: f.owner, id: 9999, status: "paid", wantErr: ErrOrderNotFound},
		{name: "not owner", caller: f.other, id: order.ID, status: "cancelled", wantErr: ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.orders.UpdateStatus(ctx, tt.caller, tt.id, tt.status)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	updated, err := f.orders.UpdateStatus(ctx, f.owner, order.ID, "shipped")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)

	updated, err = f.orders.UpdateStatus(ctx, f.admin, order.ID, "delivered")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, updated.Status)

	assert.Equal(t, []string{"order_placed", "order_status_updated", "order_status_updated"}, f.events.Types())
}
