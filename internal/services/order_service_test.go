package services

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/paperloft/api/internal/domain"
	"github.com/paperloft/api/internal/platform/debounce"
)

func fixedClock() func() time.Time {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func placeCmd() PlaceOrderCommand {
	return PlaceOrderCommand{
		Customer: CustomerInput{
			FullName: "Linh Tran",
			Email:    "linh@example.com",
			Address:  domain.Address{Street: "12 Hang Gai", City: "Hanoi", Country: "VN"},
		},
		Lines: []CartLine{
			{ProductID: "prod-notebook", Quantity: 2},
			{ProductID: "prod-pen", Quantity: 1},
		},
		Payment: PaymentInput{Amount: 102000, Method: "cod"},
	}
}

func newTestOrderService(t *testing.T, deps OrderServiceDeps) OrderService {
	t.Helper()
	if deps.Products == nil {
		deps.Products = &stubProductRepository{}
	}
	if deps.Customers == nil {
		deps.Customers = &stubCustomerRepository{}
	}
	if deps.Orders == nil {
		deps.Orders = &stubOrderRepository{}
	}
	if deps.Payments == nil {
		deps.Payments = &stubPaymentRepository{}
	}
	if deps.Guard == nil {
		deps.Guard = debounce.NewMemoryGuard()
	}
	if deps.Clock == nil {
		deps.Clock = fixedClock()
	}
	if deps.IDGenerator == nil {
		deps.IDGenerator = func() string { return "pay-0001" }
	}
	svc, err := NewOrderService(deps)
	if err != nil {
		t.Fatalf("NewOrderService returned error: %v", err)
	}
	return svc
}

func TestPlaceOrderSuccess(t *testing.T) {
	var adjustments []quantityAdjustment
	var insertedOrder domain.Order
	var insertedPayment domain.Payment
	var createdCustomer domain.Customer
	unit := &recordingUnitOfWork{}

	svc := newTestOrderService(t, OrderServiceDeps{
		Products: &stubProductRepository{
			adjustQuantityFn: func(_ context.Context, id string, delta int) error {
				adjustments = append(adjustments, quantityAdjustment{productID: id, delta: delta})
				return nil
			},
		},
		Customers: &stubCustomerRepository{
			insertFn: func(_ context.Context, customer domain.Customer) (domain.Customer, error) {
				customer.ID = 7
				createdCustomer = customer
				return customer, nil
			},
		},
		Orders: &stubOrderRepository{
			insertFn: func(_ context.Context, order domain.Order) (domain.Order, error) {
				order.ID = 41
				insertedOrder = order
				return order, nil
			},
		},
		Payments: &stubPaymentRepository{
			insertFn: func(_ context.Context, payment domain.Payment) (domain.Payment, error) {
				insertedPayment = payment
				return payment, nil
			},
		},
		UnitOfWork: unit,
	})

	placed, err := svc.PlaceOrder(context.Background(), placeCmd())
	if err != nil {
		t.Fatalf("PlaceOrder returned error: %v", err)
	}

	if unit.calls != 1 {
		t.Errorf("expected a single transaction, got %d", unit.calls)
	}
	if placed.Order.ID != 41 {
		t.Errorf("unexpected order id: %d", placed.Order.ID)
	}
	if placed.Customer.ID != 7 {
		t.Errorf("unexpected customer id: %d", placed.Customer.ID)
	}
	if createdCustomer.Email != "linh@example.com" {
		t.Errorf("unexpected stored customer email: %s", createdCustomer.Email)
	}

	if insertedOrder.Status != domain.OrderStatusPending {
		t.Errorf("expected order status PENDING, got %s", insertedOrder.Status)
	}
	if len(insertedOrder.Items) != 2 {
		t.Fatalf("expected 2 order items, got %d", len(insertedOrder.Items))
	}
	if insertedOrder.CustomerID != 7 {
		t.Errorf("expected order bound to customer 7, got %d", insertedOrder.CustomerID)
	}

	if len(adjustments) != 2 {
		t.Fatalf("expected 2 stock decrements, got %d", len(adjustments))
	}
	if adjustments[0].productID != "prod-notebook" || adjustments[0].delta != -2 {
		t.Errorf("unexpected first decrement: %v", adjustments[0])
	}
	if adjustments[1].productID != "prod-pen" || adjustments[1].delta != -1 {
		t.Errorf("unexpected second decrement: %v", adjustments[1])
	}

	if insertedPayment.Amount != 102000 {
		t.Errorf("expected payment amount 102000, got %d", insertedPayment.Amount)
	}
	if insertedPayment.Method != domain.PaymentMethodCOD {
		t.Errorf("unexpected payment method: %s", insertedPayment.Method)
	}
	if insertedPayment.Status != domain.PaymentStatusPending {
		t.Errorf("unexpected payment status: %s", insertedPayment.Status)
	}
	if insertedPayment.OrderID != 41 {
		t.Errorf("expected payment bound to order 41, got %d", insertedPayment.OrderID)
	}
}

func TestPlaceOrderPersistsSubmittedPayment(t *testing.T) {
	var insertedPayment domain.Payment
	svc := newTestOrderService(t, OrderServiceDeps{
		Payments: &stubPaymentRepository{
			insertFn: func(_ context.Context, payment domain.Payment) (domain.Payment, error) {
				insertedPayment = payment
				return payment, nil
			},
		},
	})

	cmd := placeCmd()
	cmd.Payment = PaymentInput{Amount: 999, Method: "COD", Status: "completed"}
	if _, err := svc.PlaceOrder(context.Background(), cmd); err != nil {
		t.Fatalf("PlaceOrder returned error: %v", err)
	}

	// The storefront's figures are authoritative, not a recomputed total.
	if insertedPayment.Amount != 999 {
		t.Errorf("expected submitted amount 999, got %d", insertedPayment.Amount)
	}
	if insertedPayment.Status != domain.PaymentStatusCompleted {
		t.Errorf("expected submitted status completed, got %s", insertedPayment.Status)
	}
	if insertedPayment.Method != domain.PaymentMethodCOD {
		t.Errorf("unexpected payment method: %s", insertedPayment.Method)
	}
}

func TestPlaceOrderReusesExistingCustomer(t *testing.T) {
	inserts := 0
	svc := newTestOrderService(t, OrderServiceDeps{
		Products: &stubProductRepository{
			findByIDFn: func(_ context.Context, id string) (domain.Product, error) {
				return domain.Product{ID: id, Price: 1000}, nil
			},
		},
		Customers: &stubCustomerRepository{
			findByEmailFn: func(_ context.Context, email string) (domain.Customer, error) {
				return domain.Customer{ID: 3, Email: email}, nil
			},
			insertFn: func(_ context.Context, customer domain.Customer) (domain.Customer, error) {
				inserts++
				return customer, nil
			},
		},
	})

	placed, err := svc.PlaceOrder(context.Background(), placeCmd())
	if err != nil {
		t.Fatalf("PlaceOrder returned error: %v", err)
	}
	if inserts != 0 {
		t.Errorf("expected no customer insert for existing email, got %d", inserts)
	}
	if placed.Customer.ID != 3 {
		t.Errorf("expected existing customer to be reused, got id %d", placed.Customer.ID)
	}
}

func TestPlaceOrderDuplicateWithinWindow(t *testing.T) {
	guard := debounce.NewMemoryGuard()
	svc := newTestOrderService(t, OrderServiceDeps{
		Guard:  guard,
		Window: 5 * time.Second,
		Products: &stubProductRepository{
			findByIDFn: func(_ context.Context, id string) (domain.Product, error) {
				return domain.Product{ID: id, Price: 1000}, nil
			},
		},
	})

	if _, err := svc.PlaceOrder(context.Background(), placeCmd()); err != nil {
		t.Fatalf("first PlaceOrder returned error: %v", err)
	}

	_, err := svc.PlaceOrder(context.Background(), placeCmd())
	if !errors.Is(err, ErrOrderDuplicateAttempt) {
		t.Fatalf("expected ErrOrderDuplicateAttempt, got %v", err)
	}

	// A different cart from the same shopper is not a duplicate.
	other := placeCmd()
	other.Lines = []CartLine{{ProductID: "prod-notebook", Quantity: 1}}
	if _, err := svc.PlaceOrder(context.Background(), other); err != nil {
		t.Errorf("expected distinct cart to pass the guard, got %v", err)
	}
}

func TestPlaceOrderInsufficientStockReleasesGuard(t *testing.T) {
	guard := debounce.NewMemoryGuard()
	fail := true
	svc := newTestOrderService(t, OrderServiceDeps{
		Guard: guard,
		Products: &stubProductRepository{
			findByIDFn: func(_ context.Context, id string) (domain.Product, error) {
				return domain.Product{ID: id, Price: 1000}, nil
			},
			adjustQuantityFn: func(_ context.Context, id string, delta int) error {
				if fail {
					return conflictErr("products.adjust_quantity")
				}
				return nil
			},
		},
	})

	_, err := svc.PlaceOrder(context.Background(), placeCmd())
	if !errors.Is(err, ErrOrderInsufficientStock) {
		t.Fatalf("expected ErrOrderInsufficientStock, got %v", err)
	}

	// The failed attempt released its debounce slot, so an immediate retry goes through.
	fail = false
	if _, err := svc.PlaceOrder(context.Background(), placeCmd()); err != nil {
		t.Errorf("expected retry after failure to succeed, got %v", err)
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	svc := newTestOrderService(t, OrderServiceDeps{})
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*PlaceOrderCommand)
	}{
		{"missing email", func(cmd *PlaceOrderCommand) { cmd.Customer.Email = " " }},
		{"missing name", func(cmd *PlaceOrderCommand) { cmd.Customer.FullName = "" }},
		{"empty cart", func(cmd *PlaceOrderCommand) { cmd.Lines = nil }},
		{"zero quantity", func(cmd *PlaceOrderCommand) { cmd.Lines[0].Quantity = 0 }},
		{"negative quantity", func(cmd *PlaceOrderCommand) { cmd.Lines[0].Quantity = -1 }},
		{"blank product id", func(cmd *PlaceOrderCommand) { cmd.Lines[0].ProductID = "" }},
		{"duplicate line", func(cmd *PlaceOrderCommand) { cmd.Lines[1].ProductID = cmd.Lines[0].ProductID }},
		{"unknown payment method", func(cmd *PlaceOrderCommand) { cmd.Payment.Method = "barter" }},
		{"zero payment amount", func(cmd *PlaceOrderCommand) { cmd.Payment.Amount = 0 }},
		{"negative payment amount", func(cmd *PlaceOrderCommand) { cmd.Payment.Amount = -500 }},
		{"unknown payment status", func(cmd *PlaceOrderCommand) { cmd.Payment.Status = "refunded" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := placeCmd()
			tc.mutate(&cmd)
			if _, err := svc.PlaceOrder(ctx, cmd); !errors.Is(err, ErrOrderInvalidInput) {
				t.Errorf("expected ErrOrderInvalidInput, got %v", err)
			}
		})
	}
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	svc := newTestOrderService(t, OrderServiceDeps{
		Products: &stubProductRepository{
			adjustQuantityFn: func(_ context.Context, id string, delta int) error {
				return notFoundErr("products.adjust_quantity")
			},
		},
	})

	if _, err := svc.PlaceOrder(context.Background(), placeCmd()); !errors.Is(err, ErrOrderInvalidInput) {
		t.Errorf("expected ErrOrderInvalidInput for unknown product, got %v", err)
	}
}

func cancelFixture() domain.Order {
	return domain.Order{
		ID:         41,
		CustomerID: 7,
		Status:     domain.OrderStatusPending,
		Items: []domain.OrderItem{
			{ProductID: "prod-notebook", Quantity: 4},
			{ProductID: "prod-pen", Quantity: 1},
		},
	}
}

func TestUpdateStatusCancelRestocks(t *testing.T) {
	var adjustments []quantityAdjustment
	var applied domain.OrderStatus
	unit := &recordingUnitOfWork{}

	svc := newTestOrderService(t, OrderServiceDeps{
		Products: &stubProductRepository{
			adjustQuantityFn: func(_ context.Context, id string, delta int) error {
				adjustments = append(adjustments, quantityAdjustment{productID: id, delta: delta})
				return nil
			},
		},
		Orders: &stubOrderRepository{
			findByIDFn: func(_ context.Context, orderID int64) (domain.Order, error) {
				return cancelFixture(), nil
			},
			updateStatusFn: func(_ context.Context, orderID int64, status domain.OrderStatus) error {
				applied = status
				return nil
			},
		},
		UnitOfWork: unit,
	})

	order, err := svc.UpdateStatus(context.Background(), UpdateOrderStatusCommand{OrderID: 41, Status: "CANCELLED"})
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}

	if unit.calls != 1 {
		t.Errorf("expected restock and status flip in one transaction, got %d", unit.calls)
	}
	if applied != domain.OrderStatusCancelled {
		t.Errorf("expected CANCELLED applied, got %s", applied)
	}
	if order.Status != domain.OrderStatusCancelled {
		t.Errorf("expected returned order CANCELLED, got %s", order.Status)
	}
	if len(adjustments) != 2 {
		t.Fatalf("expected 2 restocks, got %d", len(adjustments))
	}
	if adjustments[0].productID != "prod-notebook" || adjustments[0].delta != 4 {
		t.Errorf("unexpected first restock: %v", adjustments[0])
	}
	if adjustments[1].productID != "prod-pen" || adjustments[1].delta != 1 {
		t.Errorf("unexpected second restock: %v", adjustments[1])
	}
}

func TestUpdateStatusCancelIdempotent(t *testing.T) {
	var adjustments []quantityAdjustment

	order := cancelFixture()
	order.Status = domain.OrderStatusCancelled

	svc := newTestOrderService(t, OrderServiceDeps{
		Products: &stubProductRepository{
			adjustQuantityFn: func(_ context.Context, id string, delta int) error {
				adjustments = append(adjustments, quantityAdjustment{productID: id, delta: delta})
				return nil
			},
		},
		Orders: &stubOrderRepository{
			findByIDFn: func(_ context.Context, orderID int64) (domain.Order, error) {
				return order, nil
			},
		},
	})

	result, err := svc.UpdateStatus(context.Background(), UpdateOrderStatusCommand{OrderID: 41, Status: "CANCELLED"})
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if result.Status != domain.OrderStatusCancelled {
		t.Errorf("expected status to stay CANCELLED, got %s", result.Status)
	}
	if len(adjustments) != 0 {
		t.Errorf("re-cancelling must not touch inventory, got %v", adjustments)
	}
}

func TestUpdateStatusPlainTransition(t *testing.T) {
	var adjustments []quantityAdjustment
	var applied domain.OrderStatus

	svc := newTestOrderService(t, OrderServiceDeps{
		Products: &stubProductRepository{
			adjustQuantityFn: func(_ context.Context, id string, delta int) error {
				adjustments = append(adjustments, quantityAdjustment{productID: id, delta: delta})
				return nil
			},
		},
		Orders: &stubOrderRepository{
			findByIDFn: func(_ context.Context, orderID int64) (domain.Order, error) {
				return cancelFixture(), nil
			},
			updateStatusFn: func(_ context.Context, orderID int64, status domain.OrderStatus) error {
				applied = status
				return nil
			},
		},
	})

	order, err := svc.UpdateStatus(context.Background(), UpdateOrderStatusCommand{OrderID: 41, Status: "shipped"})
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if applied != domain.OrderStatusShipped {
		t.Errorf("expected SHIPPED applied, got %s", applied)
	}
	if order.Status != domain.OrderStatusShipped {
		t.Errorf("expected returned order SHIPPED, got %s", order.Status)
	}
	if len(adjustments) != 0 {
		t.Errorf("plain transitions must not touch inventory, got %v", adjustments)
	}
}

func TestUpdateStatusValidation(t *testing.T) {
	svc := newTestOrderService(t, OrderServiceDeps{})
	ctx := context.Background()

	if _, err := svc.UpdateStatus(ctx, UpdateOrderStatusCommand{OrderID: 0, Status: "PENDING"}); !errors.Is(err, ErrOrderInvalidInput) {
		t.Errorf("expected ErrOrderInvalidInput for missing id, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, UpdateOrderStatusCommand{OrderID: 41, Status: "RETURNED"}); !errors.Is(err, ErrOrderInvalidInput) {
		t.Errorf("expected ErrOrderInvalidInput for unknown status, got %v", err)
	}
}

func TestUpdateStatusOrderNotFound(t *testing.T) {
	svc := newTestOrderService(t, OrderServiceDeps{
		Orders: &stubOrderRepository{
			findByIDFn: func(_ context.Context, orderID int64) (domain.Order, error) {
				return domain.Order{}, notFoundErr("orders.find")
			},
		},
	})

	if _, err := svc.UpdateStatus(context.Background(), UpdateOrderStatusCommand{OrderID: 99, Status: "CANCELLED"}); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}
