package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is a product snapshot embedded in a cart's jsonb items column.
type CartItem struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Qty       int             `json:"qty"`
}

// CartItems is the jsonb-serialized collection of cart line items.
type CartItems []CartItem

// Cart represents an open shopping cart. A cart belongs to a guest session
// until the shopper signs in, at which point UserID is set.
type Cart struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        *uuid.UUID      `gorm:"column:user_id;type:uuid;index"`
	SessionCartID string          `gorm:"column:session_cart_id;type:text;not null;index"`
	Items         CartItems       `gorm:"column:items;type:jsonb;serializer:json;not null"`
	ItemsPrice    decimal.Decimal `gorm:"column:items_price;type:numeric(12,2);not null;default:0"`
	ShippingPrice decimal.Decimal `gorm:"column:shipping_price;type:numeric(12,2);not null;default:0"`
	TaxPrice      decimal.Decimal `gorm:"column:tax_price;type:numeric(12,2);not null;default:0"`
	TotalPrice    decimal.Decimal `gorm:"column:total_price;type:numeric(12,2);not null;default:0"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
