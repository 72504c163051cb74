package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"   json:"id"`
	Name         string    `gorm:"not null"                   json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"       json:"email"`
	PasswordHash string    `gorm:"not null"                   json:"-"`
	Role         string    `gorm:"not null;default:user"      json:"role"`
	CreatedAt    time.Time `                                  json:"created_at"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"         json:"id"`
	Name        string          `gorm:"not null"                         json:"name"`
	Description string          `                                        json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"      json:"price"`
	Stock       int             `gorm:"not null;default:0;check:stock>=0" json:"stock"`
	ImageURL    string          `                                        json:"image_url"`
	CategoryID  *uint           `gorm:"index"                            json:"category_id"`
	CreatedAt   time.Time       `                                        json:"created_at"`
	UpdatedAt   time.Time       `                                        json:"updated_at"`
}

type Cart struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"index;not null"           json:"user_id"`
	CreatedAt time.Time `                                json:"created_at"`
}

type CartItem struct {
	ID        uint `gorm:"primaryKey;autoIncrement"                json:"id"`
	CartID    uint `gorm:"uniqueIndex:idx_cart_product;not null"   json:"cart_id"`
	ProductID uint `gorm:"uniqueIndex:idx_cart_product;not null"   json:"product_id"`
	Quantity  int  `gorm:"not null;check:quantity>0"               json:"quantity"`
}

// CartLine is a cart item joined to the product's current display fields.
type CartLine struct {
	ID        uint            `json:"id"`
	CartID    uint            `json:"cart_id"`
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"image_url"`
}

type Order struct {
	ID         uint            `gorm:"primaryKey;autoIncrement"           json:"id"`
	UserID     uint            `gorm:"index;not null"                     json:"user_id"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"        json:"total_price"`
	Status     OrderStatus     `gorm:"type:varchar(16);not null;default:pending" json:"status"`
	CreatedAt  time.Time       `gorm:"index"                              json:"created_at"`
	Items      []OrderItem     `gorm:"foreignKey:OrderID"                 json:"items,omitempty"`
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	OrderID   uint            `gorm:"index;not null"              json:"order_id"`
	ProductID uint            `gorm:"not null"                    json:"product_id"`
	Quantity  int             `gorm:"not null;check:quantity>0"   json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
}

// OrderLine is an order item with the product's display fields, empty once the product is gone.
type OrderLine struct {
	ID        uint            `json:"id"`
	OrderID   uint            `json:"order_id"`
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url"`
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &Product{}, &Cart{}, &CartItem{}, &Order{}, &OrderItem{})
}
