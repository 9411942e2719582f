package models

import "time"

// Order statuses. Transitions are deliberately unrestricted so an admin
// can correct a mis-set status in either direction.
const (
	StatusPlaced    = "PLACED"
	StatusConfirmed = "CONFIRMED"
	StatusShipped   = "SHIPPED"
	StatusDelivered = "DELIVERED"
	StatusCancelled = "CANCELLED"
)

var OrderStatuses = []string{
	StatusPlaced,
	StatusConfirmed,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

func ValidOrderStatus(s string) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Payment methods. Labels only; no processing behind them.
const (
	PaymentCOD  = "COD"
	PaymentCard = "CARD"
	PaymentUPI  = "UPI"
)

var PaymentMethods = []string{PaymentCOD, PaymentCard, PaymentUPI}

func ValidPaymentMethod(m string) bool {
	for _, v := range PaymentMethods {
		if v == m {
			return true
		}
	}
	return false
}

// OrderItem is a point-in-time snapshot of a purchased line. It never
// re-syncs with the catalog or the cart after the order is placed.
type OrderItem struct {
	ProductID string  `json:"productId" bson:"productId"`
	Name      string  `json:"name" bson:"name"`
	Price     float64 `json:"price" bson:"price"`
	Qty       int     `json:"qty" bson:"qty"`
	Image     string  `json:"image,omitempty" bson:"image,omitempty"`
}

type ShippingAddress struct {
	Address string `json:"address" bson:"address"`
	City    string `json:"city" bson:"city"`
	Pincode string `json:"pincode" bson:"pincode"`
}

// Order is append-only: after creation only Status may change.
type Order struct {
	OrderID         string          `json:"orderId" bson:"orderId"`
	UserID          string          `json:"userId" bson:"userId"`
	UserName        string          `json:"userName" bson:"userName"`
	Items           []OrderItem     `json:"items" bson:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress" bson:"shippingAddress"`
	TotalAmount     float64         `json:"totalAmount" bson:"totalAmount"`
	PaymentMethod   string          `json:"paymentMethod" bson:"paymentMethod"`
	Status          string          `json:"status" bson:"status"`
	CreatedAt       time.Time       `json:"createdAt" bson:"createdAt"`
}
