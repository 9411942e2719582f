package models

import "time"

// Product is an admin-managed catalog record. FinalPrice is derived from
// Price and DiscountPercent on every create/update that touches either.
type Product struct {
	ID              string    `json:"id" bson:"id"`
	Name            string    `json:"name" bson:"name"`
	Category        string    `json:"category" bson:"category"`
	Price           float64   `json:"price" bson:"price"`
	DiscountPercent float64   `json:"discountPercent" bson:"discountPercent"`
	FinalPrice      float64   `json:"finalPrice" bson:"finalPrice"`
	Stock           int       `json:"stock" bson:"stock"`
	IsActive        bool      `json:"isActive" bson:"isActive"`
	Image           string    `json:"image,omitempty" bson:"image,omitempty"` // data URI or external URL
	Thumbnail       string    `json:"thumbnail,omitempty" bson:"thumbnail,omitempty"`
	UpdatedAt       time.Time `json:"updatedAt" bson:"updatedAt"`
}

// LowStockThreshold flags products running out on the admin listing.
const LowStockThreshold = 5

func (p Product) LowStock() bool {
	return p.Stock < LowStockThreshold
}

// ProductPatch is a typed partial update. Nil fields are left untouched,
// so unknown or extra fields can never enter the persisted record.
type ProductPatch struct {
	Name            *string  `json:"name,omitempty"`
	Category        *string  `json:"category,omitempty"`
	Price           *float64 `json:"price,omitempty"`
	DiscountPercent *float64 `json:"discountPercent,omitempty"`
	Stock           *int     `json:"stock,omitempty"`
	IsActive        *bool    `json:"isActive,omitempty"`
	Image           *string  `json:"image,omitempty"`
}

// ProductSnapshot carries the display fields a cart line item denormalizes
// at add time. It is deliberately source-agnostic: both admin products and
// remote catalog records reduce to this shape.
type ProductSnapshot struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Thumbnail string  `json:"thumbnail,omitempty"`
}

// CartItem is a single line in the cart. At most one line exists per
// product id; Qty is always positive.
type CartItem struct {
	ProductID string    `json:"productId" bson:"productId"`
	Title     string    `json:"title" bson:"title"`
	Price     float64   `json:"price" bson:"price"`
	Thumbnail string    `json:"thumbnail,omitempty" bson:"thumbnail,omitempty"`
	Qty       int       `json:"qty" bson:"qty"`
	AddedAt   time.Time `json:"addedAt" bson:"addedAt"`
}
