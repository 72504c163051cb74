package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/testutil"
)

func TestGetOrCreateCart_Idempotent(t *testing.T) {
	t.Parallel()

	db := testutil.InitTestDB(t)
	r := New(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "Ann", "ann@example.com", "pw", models.RoleUser)

	first, created, err := r.GetOrCreateCart(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := r.GetOrCreateCart(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.Cart{}).Where("user_id = ?", u.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAddCartItem_UpsertsSameProduct(t *testing.T) {
	t.Parallel()

	db := testutil.InitTestDB(t)
	r := New(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "Ann", "ann@example.com", "pw", models.RoleUser)
	p := testutil.CreateProduct(t, db, "Lamp", "10.00", 5)
	cart, _, err := r.GetOrCreateCart(ctx, u.ID)
	require.NoError(t, err)

	item, created, err := r.AddCartItem(ctx, cart.ID, p.ID, 2)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 2, item.Quantity)

	item2, created, err := r.AddCartItem(ctx, cart.ID, p.ID, 3)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, item.ID, item2.ID)
	assert.Equal(t, 5, item2.Quantity)

	var rows []models.CartItem
	require.NoError(t, db.Where("cart_id = ?", cart.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, 5, rows[0].Quantity)
}

func TestAddCartItem_UnknownProduct(t *testing.T) {
	t.Parallel()

	db := testutil.InitTestDB(t)
	r := New(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "Ann", "ann@example.com", "pw", models.RoleUser)
	cart, _, err := r.GetOrCreateCart(ctx, u.ID)
	require.NoError(t, err)

	_, _, err = r.AddCartItem(ctx, cart.ID, 999, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCartLines_ReflectCurrentPrice(t *testing.T) {
	t.Parallel()

	db := testutil.InitTestDB(t)
	r := New(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "Ann", "ann@example.com", "pw", models.RoleUser)
	p := testutil.CreateProduct(t, db, "Lamp", "10.00", 5)
	cart, _, err := r.GetOrCreateCart(ctx, u.ID)
	require.NoError(t, err)
	_, _, err = r.AddCartItem(ctx, cart.ID, p.ID, 1)
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", p.ID).Update("price", "12.25").Error)

	lines, err := r.CartLines(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Lamp", lines[0].Name)
	assert.Equal(t, "12.25", lines[0].Price.StringFixed(2))
}

func TestRemoveCartItem_And_ClearCart(t *testing.T) {
	t.Parallel()

	db := testutil.InitTestDB(t)
	r := New(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "Ann", "ann@example.com", "pw", models.RoleUser)
	a := testutil.CreateProduct(t, db, "A", "1.00", 5)
	b := testutil.CreateProduct(t, db, "B", "2.00", 5)
	cart, _, err := r.GetOrCreateCart(ctx, u.ID)
	require.NoError(t, err)
	itemA, _, err := r.AddCartItem(ctx, cart.ID, a.ID, 1)
	require.NoError(t, err)
	_, _, err = r.AddCartItem(ctx, cart.ID, b.ID, 1)
	require.NoError(t, err)

	removed, err := r.RemoveCartItem(ctx, cart.ID, itemA.ID)
	require.NoError(t, err)
	assert.Equal(t, itemA.ID, removed.ID)

	_, err = r.RemoveCartItem(ctx, cart.ID, itemA.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	n, err := r.ClearCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = r.ClearCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}
