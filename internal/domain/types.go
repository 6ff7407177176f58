package domain

import (
	"time"
)

// StockLevel is the derived availability category shown on the storefront.
type StockLevel string

const (
	// StockLevelInStock means the product has comfortable availability.
	StockLevelInStock StockLevel = "IN_STOCK"
	// StockLevelRunningLow means the product is below the low-stock threshold.
	StockLevelRunningLow StockLevel = "RUNNING_LOW"
	// StockLevelOutOfStock means no units remain on hand.
	StockLevelOutOfStock StockLevel = "OUT_OF_STOCK"
)

// lowStockThreshold mirrors the storefront badge cutoff.
const lowStockThreshold = 20

// StockLevelFor derives the availability category from an on-hand quantity.
func StockLevelFor(quantity int) StockLevel {
	switch {
	case quantity <= 0:
		return StockLevelOutOfStock
	case quantity < lowStockThreshold:
		return StockLevelRunningLow
	default:
		return StockLevelInStock
	}
}

// OrderStatus enumerates the lifecycle states of an order.
type OrderStatus string

const (
	// OrderStatusPending is the initial state assigned at creation.
	OrderStatusPending OrderStatus = "PENDING"
	// OrderStatusProcessing means the order is being prepared.
	OrderStatusProcessing OrderStatus = "PROCESSING"
	// OrderStatusShipped means the order left the warehouse.
	OrderStatusShipped OrderStatus = "SHIPPED"
	// OrderStatusDelivered means the order reached the customer.
	OrderStatusDelivered OrderStatus = "DELIVERED"
	// OrderStatusCancelled means the order was cancelled and its stock restored.
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// ValidOrderStatus reports whether raw names one of the fixed order states.
func ValidOrderStatus(raw string) bool {
	switch OrderStatus(raw) {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// PaymentMethod enumerates the accepted payment instruments.
type PaymentMethod string

const (
	// PaymentMethodCOD is cash on delivery.
	PaymentMethodCOD PaymentMethod = "cod"
	// PaymentMethodCard is the on-site card form.
	PaymentMethodCard PaymentMethod = "card"
	// PaymentMethodVNPay is the gateway redirect flow.
	PaymentMethodVNPay PaymentMethod = "vnpay"
)

// PaymentStatus enumerates payment record states.
type PaymentStatus string

const (
	// PaymentStatusPending means the charge has not been confirmed yet.
	PaymentStatusPending PaymentStatus = "pending"
	// PaymentStatusCompleted means the charge was confirmed.
	PaymentStatusCompleted PaymentStatus = "completed"
	// PaymentStatusFailed means the charge was declined or verification failed.
	PaymentStatusFailed PaymentStatus = "failed"
)

// Product is a catalog entry. Price is an integer amount in VND.
type Product struct {
	ID          string
	Name        string
	Price       int64
	Quantity    int
	Description string
	ImageURL    string
	CategoryID  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Stock returns the product's derived availability category.
func (p Product) Stock() StockLevel {
	return StockLevelFor(p.Quantity)
}

// Category groups products; categories nest one level via ParentID.
type Category struct {
	ID       string
	Name     string
	ParentID *string
	Children []Category
	Products []Product
}

// Address is owned by exactly one customer.
type Address struct {
	ID        int64
	Street    string
	Ward      string
	District  string
	City      string
	Country   string
	Apartment string
}

// Customer is created lazily on first order and keyed by unique email.
type Customer struct {
	ID          int64
	FullName    string
	Email       string
	Gender      string
	DateOfBirth string
	Address     Address
	CreatedAt   time.Time
}

// OrderItem records the quantity of a product reserved by an order at
// creation time. Immutable once written.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID string
	Quantity  int
	Product   *Product
}

// Order is created once with status PENDING and never deleted.
type Order struct {
	ID         int64
	CustomerID int64
	Status     OrderStatus
	Items      []OrderItem
	Customer   *Customer
	Payment    *Payment
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Payment is the authoritative record of the amount charged for an order.
type Payment struct {
	ID        string
	OrderID   int64
	Amount    int64
	Method    PaymentMethod
	Status    PaymentStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartLine is a single requested product/quantity pair from the storefront cart.
type CartLine struct {
	ProductID string
	Quantity  int
}

// RangeQuery represents inclusive range filters for numeric or timestamp fields.
type RangeQuery[T comparable] struct {
	Min *T
	Max *T
}

// PriceRange reports the catalog-wide price bounds used by storefront filters.
type PriceRange struct {
	Min int64
	Max int64
}
