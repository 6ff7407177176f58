package services

import (
	"context"
	"fmt"

	domain "github.com/paperloft/api/internal/domain"
	"github.com/paperloft/api/internal/repositories"
)

type stubProductRepository struct {
	insertFn         func(ctx context.Context, product domain.Product) (domain.Product, error)
	updateFn         func(ctx context.Context, product domain.Product) (domain.Product, error)
	deleteFn         func(ctx context.Context, productID string) error
	findByIDFn       func(ctx context.Context, productID string) (domain.Product, error)
	listFn           func(ctx context.Context, filter repositories.ProductListFilter) ([]domain.Product, error)
	priceRangeFn     func(ctx context.Context) (domain.PriceRange, error)
	searchFn         func(ctx context.Context, query string, limit int) ([]domain.Product, error)
	adjustQuantityFn func(ctx context.Context, productID string, delta int) error
}

func (s *stubProductRepository) Insert(ctx context.Context, product domain.Product) (domain.Product, error) {
	if s.insertFn != nil {
		return s.insertFn(ctx, product)
	}
	return product, nil
}

func (s *stubProductRepository) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, product)
	}
	return product, nil
}

func (s *stubProductRepository) Delete(ctx context.Context, productID string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, productID)
	}
	return nil
}

func (s *stubProductRepository) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	if s.findByIDFn != nil {
		return s.findByIDFn(ctx, productID)
	}
	return domain.Product{ID: productID}, nil
}

func (s *stubProductRepository) List(ctx context.Context, filter repositories.ProductListFilter) ([]domain.Product, error) {
	if s.listFn != nil {
		return s.listFn(ctx, filter)
	}
	return nil, nil
}

func (s *stubProductRepository) PriceRange(ctx context.Context) (domain.PriceRange, error) {
	if s.priceRangeFn != nil {
		return s.priceRangeFn(ctx)
	}
	return domain.PriceRange{}, nil
}

func (s *stubProductRepository) Search(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	if s.searchFn != nil {
		return s.searchFn(ctx, query, limit)
	}
	return nil, nil
}

func (s *stubProductRepository) AdjustQuantity(ctx context.Context, productID string, delta int) error {
	if s.adjustQuantityFn != nil {
		return s.adjustQuantityFn(ctx, productID, delta)
	}
	return nil
}

type stubCategoryRepository struct {
	listRootsFn  func(ctx context.Context) ([]domain.Category, error)
	findByNameFn func(ctx context.Context, name string) (domain.Category, error)
}

func (s *stubCategoryRepository) ListRoots(ctx context.Context) ([]domain.Category, error) {
	if s.listRootsFn != nil {
		return s.listRootsFn(ctx)
	}
	return nil, nil
}

func (s *stubCategoryRepository) FindByName(ctx context.Context, name string) (domain.Category, error) {
	if s.findByNameFn != nil {
		return s.findByNameFn(ctx, name)
	}
	return domain.Category{Name: name}, nil
}

type stubCustomerRepository struct {
	insertFn      func(ctx context.Context, customer domain.Customer) (domain.Customer, error)
	findByEmailFn func(ctx context.Context, email string) (domain.Customer, error)
	listFn        func(ctx context.Context) ([]domain.Customer, error)
}

func (s *stubCustomerRepository) Insert(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	if s.insertFn != nil {
		return s.insertFn(ctx, customer)
	}
	customer.ID = 1
	return customer, nil
}

func (s *stubCustomerRepository) FindByEmail(ctx context.Context, email string) (domain.Customer, error) {
	if s.findByEmailFn != nil {
		return s.findByEmailFn(ctx, email)
	}
	return domain.Customer{}, notFoundErr("customers.find_by_email")
}

func (s *stubCustomerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

type stubOrderRepository struct {
	insertFn         func(ctx context.Context, order domain.Order) (domain.Order, error)
	updateStatusFn   func(ctx context.Context, orderID int64, status domain.OrderStatus) error
	findByIDFn       func(ctx context.Context, orderID int64) (domain.Order, error)
	listFn           func(ctx context.Context) ([]domain.Order, error)
	listByCustomerFn func(ctx context.Context, customerID int64) ([]domain.Order, error)
}

func (s *stubOrderRepository) Insert(ctx context.Context, order domain.Order) (domain.Order, error) {
	if s.insertFn != nil {
		return s.insertFn(ctx, order)
	}
	order.ID = 1
	return order, nil
}

func (s *stubOrderRepository) UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	if s.updateStatusFn != nil {
		return s.updateStatusFn(ctx, orderID, status)
	}
	return nil
}

func (s *stubOrderRepository) FindByID(ctx context.Context, orderID int64) (domain.Order, error) {
	if s.findByIDFn != nil {
		return s.findByIDFn(ctx, orderID)
	}
	return domain.Order{ID: orderID}, nil
}

func (s *stubOrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

func (s *stubOrderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error) {
	if s.listByCustomerFn != nil {
		return s.listByCustomerFn(ctx, customerID)
	}
	return nil, nil
}

type stubPaymentRepository struct {
	insertFn       func(ctx context.Context, payment domain.Payment) (domain.Payment, error)
	updateStatusFn func(ctx context.Context, orderID int64, status domain.PaymentStatus) error
	findByOrderFn  func(ctx context.Context, orderID int64) (domain.Payment, error)
}

func (s *stubPaymentRepository) Insert(ctx context.Context, payment domain.Payment) (domain.Payment, error) {
	if s.insertFn != nil {
		return s.insertFn(ctx, payment)
	}
	return payment, nil
}

func (s *stubPaymentRepository) UpdateStatus(ctx context.Context, orderID int64, status domain.PaymentStatus) error {
	if s.updateStatusFn != nil {
		return s.updateStatusFn(ctx, orderID, status)
	}
	return nil
}

func (s *stubPaymentRepository) FindByOrder(ctx context.Context, orderID int64) (domain.Payment, error) {
	if s.findByOrderFn != nil {
		return s.findByOrderFn(ctx, orderID)
	}
	return domain.Payment{OrderID: orderID}, nil
}

type recordingUnitOfWork struct {
	calls int
	err   error
}

func (u *recordingUnitOfWork) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	u.calls++
	if u.err != nil {
		return u.err
	}
	return fn(ctx)
}

func notFoundErr(op string) error {
	return repositories.NewError(op, repositories.ErrorKindNotFound, "not found", nil)
}

func conflictErr(op string) error {
	return repositories.NewError(op, repositories.ErrorKindConflict, "conflict", nil)
}

type quantityAdjustment struct {
	productID string
	delta     int
}

func (a quantityAdjustment) String() string {
	return fmt.Sprintf("%s:%d", a.productID, a.delta)
}
