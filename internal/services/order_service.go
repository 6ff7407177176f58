package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/paperloft/api/internal/domain"
	"github.com/paperloft/api/internal/platform/debounce"
	"github.com/paperloft/api/internal/repositories"
)

var (
	// ErrOrderInvalidInput signals the caller provided invalid data.
	ErrOrderInvalidInput = errors.New("order: invalid input")
	// ErrOrderNotFound indicates the order could not be located.
	ErrOrderNotFound = errors.New("order: not found")
	// ErrOrderDuplicateAttempt indicates an identical order was submitted within the debounce window.
	ErrOrderDuplicateAttempt = errors.New("order: duplicate attempt")
	// ErrOrderInsufficientStock indicates a line would drive a product's quantity below zero.
	ErrOrderInsufficientStock = errors.New("order: insufficient stock")
	// ErrOrderConflict indicates a persistence conflict outside the stock path.
	ErrOrderConflict = errors.New("order: conflict")
)

// OrderServiceDeps bundles collaborators required to construct the order service.
type OrderServiceDeps struct {
	Products    repositories.ProductRepository
	Customers   repositories.CustomerRepository
	Orders      repositories.OrderRepository
	Payments    repositories.PaymentRepository
	Guard       debounce.Guard
	UnitOfWork  repositories.UnitOfWork
	Window      time.Duration
	Clock       func() time.Time
	IDGenerator func() string
}

type orderService struct {
	products   repositories.ProductRepository
	customers  repositories.CustomerRepository
	orders     repositories.OrderRepository
	payments   repositories.PaymentRepository
	guard      debounce.Guard
	unitOfWork repositories.UnitOfWork
	window     time.Duration
	clock      func() time.Time
	newID      func() string
}

// NewOrderService wires dependencies into a concrete OrderService implementation.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Products == nil {
		return nil, errors.New("order service: product repository is required")
	}
	if deps.Customers == nil {
		return nil, errors.New("order service: customer repository is required")
	}
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}
	if deps.Payments == nil {
		return nil, errors.New("order service: payment repository is required")
	}
	if deps.Guard == nil {
		return nil, errors.New("order service: debounce guard is required")
	}

	unit := deps.UnitOfWork
	if unit == nil {
		unit = noopUnitOfWork{}
	}

	window := deps.Window
	if window <= 0 {
		window = debounce.DefaultWindow
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return ulid.Make().String()
		}
	}

	return &orderService{
		products:   deps.Products,
		customers:  deps.Customers,
		orders:     deps.Orders,
		payments:   deps.Payments,
		guard:      deps.Guard,
		unitOfWork: unit,
		window:     window,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID: idGen,
	}, nil
}

// PlaceOrder runs the storefront checkout: debounce duplicate submissions,
// find or create the customer, then decrement stock and record the order,
// its items, and its payment as one transaction.
func (s *orderService) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (PlacedOrder, error) {
	if err := validatePlaceOrder(cmd); err != nil {
		return PlacedOrder{}, err
	}

	now := s.clock()

	key := debounce.Fingerprint(cmd.Customer.Email, cmd.Lines)
	reserved, err := s.guard.Reserve(ctx, key, now, s.window)
	if err != nil {
		return PlacedOrder{}, fmt.Errorf("order: debounce reserve: %w", err)
	}
	if !reserved {
		return PlacedOrder{}, fmt.Errorf("%w: identical order submitted within %s", ErrOrderDuplicateAttempt, s.window)
	}

	placed, err := s.placeReserved(ctx, cmd, now)
	if err != nil {
		// Free the debounce slot so a corrected retry is not penalised.
		_ = s.guard.Release(ctx, key)
		return PlacedOrder{}, err
	}
	return placed, nil
}

func (s *orderService) placeReserved(ctx context.Context, cmd PlaceOrderCommand, now time.Time) (PlacedOrder, error) {
	customer, err := s.findOrCreateCustomer(ctx, cmd.Customer, now)
	if err != nil {
		return PlacedOrder{}, err
	}

	method := domain.PaymentMethod(strings.ToLower(strings.TrimSpace(cmd.Payment.Method)))
	status := paymentStatusOrPending(cmd.Payment.Status)

	var created domain.Order
	err = s.runInTx(ctx, func(ctx context.Context) error {
		for _, line := range cmd.Lines {
			if err := s.products.AdjustQuantity(ctx, line.ProductID, -line.Quantity); err != nil {
				if isConflict(err) {
					return fmt.Errorf("%w: product %s", ErrOrderInsufficientStock, line.ProductID)
				}
				if isNotFound(err) {
					return fmt.Errorf("%w: unknown product %s", ErrOrderInvalidInput, line.ProductID)
				}
				return s.mapRepositoryError(err)
			}
		}

		order := domain.Order{
			CustomerID: customer.ID,
			Status:     domain.OrderStatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		for _, line := range cmd.Lines {
			order.Items = append(order.Items, domain.OrderItem{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
			})
		}

		inserted, err := s.orders.Insert(ctx, order)
		if err != nil {
			return s.mapRepositoryError(err)
		}

		// The submitted amount is the authoritative total charged.
		_, err = s.payments.Insert(ctx, domain.Payment{
			ID:        s.newID(),
			OrderID:   inserted.ID,
			Amount:    cmd.Payment.Amount,
			Method:    method,
			Status:    status,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return s.mapRepositoryError(err)
		}

		created = inserted
		return nil
	})
	if err != nil {
		return PlacedOrder{}, err
	}

	return PlacedOrder{Order: created, Customer: customer}, nil
}

func (s *orderService) findOrCreateCustomer(ctx context.Context, input CustomerInput, now time.Time) (domain.Customer, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	customer, err := s.customers.FindByEmail(ctx, email)
	if err == nil {
		return customer, nil
	}
	if !isNotFound(err) {
		return domain.Customer{}, s.mapRepositoryError(err)
	}

	created, err := s.customers.Insert(ctx, domain.Customer{
		FullName:    strings.TrimSpace(input.FullName),
		Email:       email,
		Gender:      strings.TrimSpace(input.Gender),
		DateOfBirth: strings.TrimSpace(input.DateOfBirth),
		Address:     input.Address,
		CreatedAt:   now,
	})
	if err != nil {
		// A concurrent submission may have inserted the same email first.
		if isConflict(err) {
			return s.fetchExistingCustomer(ctx, email)
		}
		return domain.Customer{}, s.mapRepositoryError(err)
	}
	return created, nil
}

func (s *orderService) fetchExistingCustomer(ctx context.Context, email string) (domain.Customer, error) {
	customer, err := s.customers.FindByEmail(ctx, email)
	if err != nil {
		return domain.Customer{}, s.mapRepositoryError(err)
	}
	return customer, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID int64) (Order, error) {
	if orderID <= 0 {
		return Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return Order{}, s.mapRepositoryError(err)
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context) ([]Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return orders, nil
}

// UpdateStatus applies the target status. Entering CANCELLED restores every
// item's quantity in the same transaction as the status flip; re-cancelling
// an already cancelled order is a no-op on inventory.
func (s *orderService) UpdateStatus(ctx context.Context, cmd UpdateOrderStatusCommand) (Order, error) {
	if cmd.OrderID <= 0 {
		return Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	target := strings.ToUpper(strings.TrimSpace(cmd.Status))
	if !domain.ValidOrderStatus(target) {
		return Order{}, fmt.Errorf("%w: unknown status %q", ErrOrderInvalidInput, cmd.Status)
	}
	status := domain.OrderStatus(target)

	order, err := s.orders.FindByID(ctx, cmd.OrderID)
	if err != nil {
		return Order{}, s.mapRepositoryError(err)
	}

	restock := status == domain.OrderStatusCancelled && order.Status != domain.OrderStatusCancelled

	err = s.runInTx(ctx, func(ctx context.Context) error {
		if restock {
			for _, item := range order.Items {
				if err := s.products.AdjustQuantity(ctx, item.ProductID, item.Quantity); err != nil {
					return s.mapRepositoryError(err)
				}
			}
		}
		if err := s.orders.UpdateStatus(ctx, order.ID, status); err != nil {
			return s.mapRepositoryError(err)
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}

	order.Status = status
	return order, nil
}

func (s *orderService) runInTx(ctx context.Context, fn func(context.Context) error) error {
	if s.unitOfWork == nil {
		return fn(ctx)
	}
	return s.unitOfWork.RunInTx(ctx, fn)
}

func (s *orderService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrOrderNotFound, err)
		case repoErr.IsConflict():
			return fmt.Errorf("%w: %v", ErrOrderConflict, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("order: repository unavailable: %w", err)
		}
	}

	return err
}

func validatePlaceOrder(cmd PlaceOrderCommand) error {
	if strings.TrimSpace(cmd.Customer.Email) == "" {
		return fmt.Errorf("%w: customer email is required", ErrOrderInvalidInput)
	}
	if strings.TrimSpace(cmd.Customer.FullName) == "" {
		return fmt.Errorf("%w: customer name is required", ErrOrderInvalidInput)
	}
	if len(cmd.Lines) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", ErrOrderInvalidInput)
	}
	seen := make(map[string]struct{}, len(cmd.Lines))
	for _, line := range cmd.Lines {
		if strings.TrimSpace(line.ProductID) == "" {
			return fmt.Errorf("%w: item product id is required", ErrOrderInvalidInput)
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: item quantity must be positive", ErrOrderInvalidInput)
		}
		if _, dup := seen[line.ProductID]; dup {
			return fmt.Errorf("%w: duplicate item for product %s", ErrOrderInvalidInput, line.ProductID)
		}
		seen[line.ProductID] = struct{}{}
	}
	if cmd.Payment.Amount <= 0 {
		return fmt.Errorf("%w: payment amount must be positive", ErrOrderInvalidInput)
	}
	switch domain.PaymentMethod(strings.ToLower(strings.TrimSpace(cmd.Payment.Method))) {
	case domain.PaymentMethodCOD, domain.PaymentMethodCard, domain.PaymentMethodVNPay:
	default:
		return fmt.Errorf("%w: unknown payment method %q", ErrOrderInvalidInput, cmd.Payment.Method)
	}
	if status := strings.TrimSpace(cmd.Payment.Status); status != "" {
		switch domain.PaymentStatus(strings.ToLower(status)) {
		case domain.PaymentStatusPending, domain.PaymentStatusCompleted, domain.PaymentStatusFailed:
		default:
			return fmt.Errorf("%w: unknown payment status %q", ErrOrderInvalidInput, cmd.Payment.Status)
		}
	}
	return nil
}

// paymentStatusOrPending normalises the submitted payment status, defaulting
// to pending when the storefront omits it.
func paymentStatusOrPending(raw string) domain.PaymentStatus {
	status := strings.ToLower(strings.TrimSpace(raw))
	if status == "" {
		return domain.PaymentStatusPending
	}
	return domain.PaymentStatus(status)
}

func isNotFound(err error) bool {
	var repoErr repositories.RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

func isConflict(err error) bool {
	var repoErr repositories.RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsConflict()
}

type noopUnitOfWork struct{}

func (noopUnitOfWork) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}
