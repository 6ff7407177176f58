package services

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	domain "github.com/paperloft/api/internal/domain"
	"github.com/paperloft/api/internal/payments"
)

func newTestGateway(t *testing.T) *payments.Manager {
	t.Helper()
	provider, err := payments.NewVNPayProvider(payments.VNPayConfig{
		PayURL:     "https://sandbox.gateway.example/paymentv2/vpcpay.html",
		TmnCode:    "PAPERLFT",
		HashSecret: "tophash",
		ReturnURL:  "https://shop.example/payment/return",
	})
	if err != nil {
		t.Fatalf("NewVNPayProvider returned error: %v", err)
	}
	manager, err := payments.NewManager(map[string]payments.Provider{"vnpay": provider})
	if err != nil {
		t.Fatalf("NewManager returned error: %v", err)
	}
	return manager
}

func TestPaymentURLUsesStoredAmount(t *testing.T) {
	svc, err := NewPaymentService(PaymentServiceDeps{
		Orders: &stubOrderRepository{},
		Payments: &stubPaymentRepository{
			findByOrderFn: func(_ context.Context, orderID int64) (domain.Payment, error) {
				return domain.Payment{ID: "pay-1", OrderID: orderID, Amount: 150000}, nil
			},
		},
		Gateway: newTestGateway(t),
		Clock: func() time.Time {
			return time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
		},
	})
	if err != nil {
		t.Fatalf("NewPaymentService returned error: %v", err)
	}

	raw, err := svc.PaymentURL(context.Background(), PaymentURLCommand{OrderID: 42, ClientIP: "203.0.113.7"})
	if err != nil {
		t.Fatalf("PaymentURL returned error: %v", err)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("payment url does not parse: %v", err)
	}
	query := parsed.Query()
	if got := query.Get("vnp_Amount"); got != "15000000" {
		t.Errorf("expected stored amount x100, got %s", got)
	}
	if got := query.Get("vnp_TxnRef"); got != "42" {
		t.Errorf("unexpected txn ref: %s", got)
	}
}

func TestPaymentURLUsesSubmittedAmount(t *testing.T) {
	svc, err := NewPaymentService(PaymentServiceDeps{
		Orders: &stubOrderRepository{},
		Payments: &stubPaymentRepository{
			findByOrderFn: func(_ context.Context, orderID int64) (domain.Payment, error) {
				t.Error("expected submitted amount to skip the payment lookup")
				return domain.Payment{}, nil
			},
		},
		Gateway: newTestGateway(t),
	})
	if err != nil {
		t.Fatalf("NewPaymentService returned error: %v", err)
	}

	raw, err := svc.PaymentURL(context.Background(), PaymentURLCommand{OrderID: 42, Amount: 75000, ClientIP: "203.0.113.7"})
	if err != nil {
		t.Fatalf("PaymentURL returned error: %v", err)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("payment url does not parse: %v", err)
	}
	if got := parsed.Query().Get("vnp_Amount"); got != "7500000" {
		t.Errorf("expected submitted amount x100, got %s", got)
	}
}

func TestPaymentURLUnknownOrder(t *testing.T) {
	svc, err := NewPaymentService(PaymentServiceDeps{
		Orders: &stubOrderRepository{
			findByIDFn: func(_ context.Context, orderID int64) (domain.Order, error) {
				return domain.Order{}, notFoundErr("orders.find_by_id")
			},
		},
		Payments: &stubPaymentRepository{},
		Gateway:  newTestGateway(t),
	})
	if err != nil {
		t.Fatalf("NewPaymentService returned error: %v", err)
	}

	if _, err := svc.PaymentURL(context.Background(), PaymentURLCommand{OrderID: 9000, Amount: 75000}); !errors.Is(err, ErrPaymentNotFound) {
		t.Errorf("expected ErrPaymentNotFound, got %v", err)
	}
}

func TestPaymentURLOrderWithoutPayment(t *testing.T) {
	svc, err := NewPaymentService(PaymentServiceDeps{
		Orders: &stubOrderRepository{},
		Payments: &stubPaymentRepository{
			findByOrderFn: func(_ context.Context, orderID int64) (domain.Payment, error) {
				return domain.Payment{}, notFoundErr("payments.find_by_order")
			},
		},
		Gateway: newTestGateway(t),
	})
	if err != nil {
		t.Fatalf("NewPaymentService returned error: %v", err)
	}

	if _, err := svc.PaymentURL(context.Background(), PaymentURLCommand{OrderID: 42}); !errors.Is(err, ErrPaymentNotFound) {
		t.Errorf("expected ErrPaymentNotFound, got %v", err)
	}
}

func TestHandleReturnCompletesPayment(t *testing.T) {
	var updatedStatus domain.PaymentStatus
	var updatedOrder int64

	gateway := newTestGateway(t)
	svc, err := NewPaymentService(PaymentServiceDeps{
		Orders: &stubOrderRepository{},
		Payments: &stubPaymentRepository{
			updateStatusFn: func(_ context.Context, orderID int64, status domain.PaymentStatus) error {
				updatedOrder = orderID
				updatedStatus = status
				return nil
			},
			findByOrderFn: func(_ context.Context, orderID int64) (domain.Payment, error) {
				return domain.Payment{ID: "pay-1", OrderID: orderID, Amount: 150000, Status: domain.PaymentStatusCompleted}, nil
			},
		},
		Gateway: gateway,
	})
	if err != nil {
		t.Fatalf("NewPaymentService returned error: %v", err)
	}

	params := payments.SignReturnParams(map[string]string{
		"vnp_TxnRef":        "42",
		"vnp_Amount":        "15000000",
		"vnp_ResponseCode":  "00",
		"vnp_TransactionNo": "14422574",
	}, "tophash")

	result, err := svc.HandleReturn(context.Background(), PaymentReturnCommand{Params: params})
	if err != nil {
		t.Fatalf("HandleReturn returned error: %v", err)
	}
	if !result.Succeeded {
		t.Error("expected successful return")
	}
	if updatedOrder != 42 || updatedStatus != domain.PaymentStatusCompleted {
		t.Errorf("expected payment for order 42 completed, got %d/%s", updatedOrder, updatedStatus)
	}
	if result.Payment.ID != "pay-1" {
		t.Errorf("unexpected payment: %+v", result.Payment)
	}
}

func TestHandleReturnFailureCodeMarksFailed(t *testing.T) {
	var updatedStatus domain.PaymentStatus
	svc, err := NewPaymentService(PaymentServiceDeps{
		Orders: &stubOrderRepository{},
		Payments: &stubPaymentRepository{
			updateStatusFn: func(_ context.Context, orderID int64, status domain.PaymentStatus) error {
				updatedStatus = status
				return nil
			},
		},
		Gateway: newTestGateway(t),
	})
	if err != nil {
		t.Fatalf("NewPaymentService returned error: %v", err)
	}

	params := payments.SignReturnParams(map[string]string{
		"vnp_TxnRef":       "42",
		"vnp_Amount":       "15000000",
		"vnp_ResponseCode": "24",
	}, "tophash")

	result, err := svc.HandleReturn(context.Background(), PaymentReturnCommand{Params: params})
	if err != nil {
		t.Fatalf("HandleReturn returned error: %v", err)
	}
	if result.Succeeded {
		t.Error("expected failed return")
	}
	if updatedStatus != domain.PaymentStatusFailed {
		t.Errorf("expected payment marked failed, got %s", updatedStatus)
	}
}

func TestHandleReturnRejectsBadSignature(t *testing.T) {
	svc, err := NewPaymentService(PaymentServiceDeps{
		Orders:   &stubOrderRepository{},
		Payments: &stubPaymentRepository{},
		Gateway:  newTestGateway(t),
	})
	if err != nil {
		t.Fatalf("NewPaymentService returned error: %v", err)
	}

	params := payments.SignReturnParams(map[string]string{
		"vnp_TxnRef":       "42",
		"vnp_Amount":       "15000000",
		"vnp_ResponseCode": "00",
	}, "wrong-secret")

	if _, err := svc.HandleReturn(context.Background(), PaymentReturnCommand{Params: params}); !errors.Is(err, ErrPaymentRejected) {
		t.Errorf("expected ErrPaymentRejected, got %v", err)
	}
}
