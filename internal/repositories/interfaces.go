package repositories

import (
	"context"

	domain "github.com/paperloft/api/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Products() ProductRepository
	Categories() CategoryRepository
	Customers() CustomerRepository
	Orders() OrderRepository
	Payments() PaymentRepository
	UnitOfWork
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// UnitOfWork groups repository operations in a single atomic transaction.
// Every repository call made with the ctx passed to fn joins that
// transaction; fn returning an error rolls back everything.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ProductRepository persists catalog entries and owns the stock counters.
type ProductRepository interface {
	Insert(ctx context.Context, product domain.Product) (domain.Product, error)
	Update(ctx context.Context, product domain.Product) (domain.Product, error)
	Delete(ctx context.Context, productID string) error
	FindByID(ctx context.Context, productID string) (domain.Product, error)
	List(ctx context.Context, filter ProductListFilter) ([]domain.Product, error)
	PriceRange(ctx context.Context) (domain.PriceRange, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Product, error)

	// AdjustQuantity changes on-hand stock by delta. A negative delta
	// must fail with a conflict error instead of driving the quantity
	// below zero. Honors an ambient transaction from UnitOfWork.
	AdjustQuantity(ctx context.Context, productID string, delta int) error
}

// ProductSort names the supported catalog orderings.
type ProductSort string

const (
	// ProductSortNewest orders by creation time, newest first.
	ProductSortNewest ProductSort = "newest"
	// ProductSortPriceAsc orders by unit price, cheapest first.
	ProductSortPriceAsc ProductSort = "price-asc"
	// ProductSortPriceDesc orders by unit price, most expensive first.
	ProductSortPriceDesc ProductSort = "price-desc"
)

// ProductListFilter narrows and orders catalog listings.
type ProductListFilter struct {
	NameContains string
	Price        domain.RangeQuery[int64]
	Sort         ProductSort
	Limit        int
}

// CategoryRepository reads the category tree.
type CategoryRepository interface {
	ListRoots(ctx context.Context) ([]domain.Category, error)
	FindByName(ctx context.Context, name string) (domain.Category, error)
}

// CustomerRepository stores customer profiles with their owned address.
type CustomerRepository interface {
	Insert(ctx context.Context, customer domain.Customer) (domain.Customer, error)
	FindByEmail(ctx context.Context, email string) (domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
}

// OrderRepository persists order headers and line items.
type OrderRepository interface {
	Insert(ctx context.Context, order domain.Order) (domain.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error
	// FindByID loads the order with its items and each item's product.
	FindByID(ctx context.Context, orderID int64) (domain.Order, error)
	// List returns all orders newest-first with customer, payment and
	// item/product associations populated.
	List(ctx context.Context) ([]domain.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error)
}

// PaymentRepository stores the payment record created alongside each order.
type PaymentRepository interface {
	Insert(ctx context.Context, payment domain.Payment) (domain.Payment, error)
	UpdateStatus(ctx context.Context, orderID int64, status domain.PaymentStatus) error
	FindByOrder(ctx context.Context, orderID int64) (domain.Payment, error)
}
