package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/testutil"
)

func fillCart(t *testing.T, r *GormRepo, db *gorm.DB, userID uint) (*models.Cart, *models.Product, *models.Product) {
	t.Helper()
	ctx := context.Background()

	a := testutil.CreateProduct(t, db, "A", "10.00", 10)
	b := testutil.CreateProduct(t, db, "B", "5.50", 10)
	cart, _, err := r.GetOrCreateCart(ctx, userID)
	require.NoError(t, err)
	_, _, err = r.AddCartItem(ctx, cart.ID, a.ID, 2)
	require.NoError(t, err)
	_, _, err = r.AddCartItem(ctx, cart.ID, b.ID, 1)
	require.NoError(t, err)
	return cart, a, b
}

func TestPlaceOrder_ComputesTotalAndEmptiesCart(t *testing.T) {
	t.Parallel()

	db := testutil.InitTestDB(t)
	r := New(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "Ann", "ann@example.com", "pw", models.RoleUser)
	cart, a, _ := fillCart(t, r, db, u.ID)

	var charged decimal.Decimal
	order, err := r.PlaceOrder(ctx, cart.ID, models.OrderStatusPaid, func(_ context.Context, userID uint, total decimal.Decimal) error {
		assert.Equal(t, u.ID, userID)
		charged = total
		return nil
	})
	require.NoError(t, err)

	want := decimal.RequireFromString("25.50")
	assert.True(t, want.Equal(order.TotalPrice), order.TotalPrice.String())
	assert.True(t, want.Equal(charged))
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.Equal(t, u.ID, order.UserID)
	require.Len(t, order.Items, 2)

	lines, err := r.CartLines(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	// later price changes do not touch the stored order
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", a.ID).Update("price", "99.00").Error)
	stored, err := r.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, want.Equal(stored.TotalPrice))

	orderLines, err := r.OrderLines(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, orderLines, 2)
	assert.Equal(t, "10.00", orderLines[0].Price.StringFixed(2))
	assert.Equal(t, "A", orderLines[0].Name)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	t.Parallel()

	db := testutil.InitTestDB(t)
	r := New(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "Ann", "ann@example.com", "pw", models.RoleUser)
	cart, _, err := r.GetOrCreateCart(ctx, u.ID)
	require.NoError(t, err)

	_, err = r.PlaceOrder(ctx, cart.ID, models.OrderStatusPaid, nil)
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = r.PlaceOrder(ctx, 12345, models.OrderStatusPaid, nil)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPlaceOrder_PaymentFailureRollsBack(t *testing.T) {
	t.Parallel()

	db := testutil.InitTestDB(t)
	r := New(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "Ann", "ann@example.com", "pw", models.RoleUser)
	cart, _, _ := fillCart(t, r, db, u.ID)

	declined := errors.New("declined")
	_, err := r.PlaceOrder(ctx, cart.ID, models.OrderStatusPaid, func(context.Context, uint, decimal.Decimal) error {
		return declined
	})
	assert.ErrorIs(t, err, declined)

	var orders, items int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&items).Error)
	assert.Zero(t, orders)
	assert.Zero(t, items)

	lines, err := r.CartLines(ctx, cart.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestListOrders_NewestFirst(t *testing.T) {
	t.Parallel()

	db := testutil.InitTestDB(t)
	r := New(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "Ann", "ann@example.com", "pw", models.RoleUser)
	other := testutil.CreateUser(t, db, "Bob", "bob@example.com", "pw", models.RoleUser)

	for i := 0; i < 2; i++ {
		cart, _, _ := fillCart(t, r, db, u.ID)
		_, err := r.PlaceOrder(ctx, cart.ID, models.OrderStatusPending, nil)
		require.NoError(t, err)
	}
	cart, _, _ := fillCart(t, r, db, other.ID)
	_, err := r.PlaceOrder(ctx, cart.ID, models.OrderStatusPending, nil)
	require.NoError(t, err)

	orders, err := r.ListOrders(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Greater(t, orders[0].ID, orders[1].ID)
	for _, o := range orders {
		assert.Equal(t, u.ID, o.UserID)
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	t.Parallel()

	db := testutil.InitTestDB(t)
	r := New(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "Ann", "ann@example.com", "pw", models.RoleUser)
	cart, _, _ := fillCart(t, r, db, u.ID)
	order, err := r.PlaceOrder(ctx, cart.ID, models.OrderStatusPaid, nil)
	require.NoError(t, err)

	updated, err := r.UpdateOrderStatus(ctx, order.ID, models.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)

	_, err = r.UpdateOrderStatus(ctx, 999, models.OrderStatusShipped)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
