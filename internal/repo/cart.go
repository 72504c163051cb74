package repo

import (
	"context"
	"errors"

	"github.com/Skotchmaster/storefront/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetOrCreateCart returns the user's oldest cart, creating one when none exists.
func (r *GormRepo) GetOrCreateCart(ctx context.Context, userID uint) (*models.Cart, bool, error) {
	var cart models.Cart
	created := false

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", userID).Order("id ASC").First(&cart).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		cart = models.Cart{UserID: userID}
		if err := tx.Create(&cart).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &cart, created, nil
}

func (r *GormRepo) GetCart(ctx context.Context, cartID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := r.DB.WithContext(ctx).Where("id = ?", cartID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *GormRepo) FindCartByUser(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func cartLines(tx *gorm.DB, cartID uint) ([]models.CartLine, error) {
	lines := make([]models.CartLine, 0)
	err := tx.Table("cart_items AS ci").
		Select("ci.id, ci.cart_id, ci.product_id, ci.quantity, p.name, p.price, COALESCE(p.image_url, '') AS image_url").
		Joins("JOIN products p ON p.id = ci.product_id").
		Where("ci.cart_id = ?", cartID).
		Order("ci.id ASC").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// CartLines joins the cart's items to the products' current name, price and image.
func (r *GormRepo) CartLines(ctx context.Context, cartID uint) ([]models.CartLine, error) {
	return cartLines(r.DB.WithContext(ctx), cartID)
}

// AddCartItem is a single INSERT ... ON CONFLICT DO UPDATE keyed by (cart_id, product_id).
// created is true when the statement inserted a new row.
func (r *GormRepo) AddCartItem(ctx context.Context, cartID, productID uint, quantity int) (*models.CartItem, bool, error) {
	var saved models.CartItem

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Product{}).Where("id = ?", productID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return ErrProductNotFound
		}

		item := models.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity": gorm.Expr("cart_items.quantity + excluded.quantity"),
			}),
		}).Create(&item).Error; err != nil {
			return err
		}

		return tx.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&saved).Error
	})
	if err != nil {
		return nil, false, err
	}

	// quantities are positive, so an updated row always ends above the requested amount
	return &saved, saved.Quantity == quantity, nil
}

func (r *GormRepo) RemoveCartItem(ctx context.Context, cartID, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND cart_id = ?", itemID, cartID).First(&item).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND cart_id = ?", itemID, cartID).Delete(&models.CartItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) ClearCart(ctx context.Context, cartID uint) (int64, error) {
	res := r.DB.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}
