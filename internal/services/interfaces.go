package services

import (
	"context"

	domain "github.com/paperloft/api/internal/domain"
	"github.com/paperloft/api/internal/repositories"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Product       = domain.Product
	Category      = domain.Category
	Customer      = domain.Customer
	Address       = domain.Address
	Order         = domain.Order
	OrderItem     = domain.OrderItem
	OrderStatus   = domain.OrderStatus
	Payment       = domain.Payment
	PaymentMethod = domain.PaymentMethod
	CartLine      = domain.CartLine
	PriceRange    = domain.PriceRange
)

// OrderService orchestrates order placement and status transitions against inventory.
type OrderService interface {
	PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (PlacedOrder, error)
	GetOrder(ctx context.Context, orderID int64) (Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, cmd UpdateOrderStatusCommand) (Order, error)
}

// CatalogService exposes product and category reads plus admin catalog writes.
type CatalogService interface {
	CreateProduct(ctx context.Context, cmd UpsertProductCommand) (Product, error)
	UpdateProduct(ctx context.Context, productID string, cmd UpsertProductCommand) (Product, error)
	DeleteProduct(ctx context.Context, productID string) error
	GetProduct(ctx context.Context, productID string) (Product, error)
	ListProducts(ctx context.Context, query ProductListQuery) ([]Product, error)
	PriceRange(ctx context.Context) (PriceRange, error)
	SearchProducts(ctx context.Context, query string) ([]Product, error)
	ListCategories(ctx context.Context) ([]Category, error)
	CategoryByName(ctx context.Context, name string) (Category, error)
}

// CustomerService provides back-office customer views with order aggregates.
type CustomerService interface {
	ListCustomers(ctx context.Context) ([]CustomerSummary, error)
	CustomerByEmail(ctx context.Context, email string) (Customer, error)
	CustomerOrders(ctx context.Context, customerID int64) ([]Order, error)
}

// PaymentService bridges orders to the hosted payment gateway.
type PaymentService interface {
	PaymentURL(ctx context.Context, cmd PaymentURLCommand) (string, error)
	HandleReturn(ctx context.Context, cmd PaymentReturnCommand) (PaymentReturn, error)
}

// CustomerInput carries the shopper profile submitted with an order.
type CustomerInput struct {
	FullName    string
	Email       string
	Gender      string
	DateOfBirth string
	Address     Address
}

// PaymentInput carries the payment details submitted with an order. The
// amount is the authoritative total charged; it is persisted as given rather
// than recomputed from product prices.
type PaymentInput struct {
	Amount int64
	Method string
	Status string
}

// PlaceOrderCommand captures one storefront order submission.
type PlaceOrderCommand struct {
	Customer CustomerInput
	Lines    []CartLine
	Payment  PaymentInput
}

// PlacedOrder bundles the created order with the owning customer record.
type PlacedOrder struct {
	Order    Order
	Customer Customer
}

// UpdateOrderStatusCommand names the order and the status to apply.
type UpdateOrderStatusCommand struct {
	OrderID int64
	Status  string
}

// UpsertProductCommand carries the admin-editable product fields.
type UpsertProductCommand struct {
	Name        string
	Price       int64
	Quantity    int
	Description string
	ImageURL    string
	CategoryID  *string
}

// ProductListQuery narrows and orders storefront product listings.
type ProductListQuery struct {
	Name     string
	MinPrice *int64
	MaxPrice *int64
	Sort     repositories.ProductSort
	Limit    int
}

// CustomerSummary augments a customer with order aggregates for admin views.
type CustomerSummary struct {
	Customer   Customer
	OrderCount int
	TotalSpent int64
}

// PaymentURLCommand requests a hosted payment page URL for an order. When
// Amount is positive it is charged as given; otherwise the order's persisted
// payment amount is used.
type PaymentURLCommand struct {
	OrderID   int64
	Provider  string
	Amount    int64
	OrderInfo string
	ClientIP  string
	Locale    string
}

// PaymentReturnCommand carries the raw gateway return parameters.
type PaymentReturnCommand struct {
	Provider string
	Params   map[string][]string
}

// PaymentReturn reports the verified outcome of a gateway redirect.
type PaymentReturn struct {
	OrderID   int64
	Succeeded bool
	Payment   Payment
}
