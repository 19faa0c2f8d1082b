package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus enumerates order lifecycle states.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusDelivered, OrderStatusCanceled:
		return true
	}
	return false
}

// Product is a catalog item.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	IsActive    bool
}

// Cart holds not-yet-ordered items. Each user owns at most one cart.
type Cart struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	Items     []CartItem
}

// CartItem is a (product, quantity) line inside a cart, unique per product.
type CartItem struct {
	ID        string
	CartID    string
	ProductID string
	Quantity  int
}

// CartLine is a cart item joined with its product snapshot, as loaded by the
// checkout transaction.
type CartLine struct {
	ItemID      string
	ProductID   string
	ProductName string
	Price       decimal.Decimal
	Stock       int
	Quantity    int
}

// Order is the snapshot created atomically from a cart at checkout.
type Order struct {
	ID          string
	UserID      string
	Status      OrderStatus
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
	Items       []OrderItem
}

// OrderItem freezes the product price at purchase time; later price changes
// never alter it.
type OrderItem struct {
	ID              string
	OrderID         string
	ProductID       string
	Quantity        int
	PriceAtPurchase decimal.Decimal
}
