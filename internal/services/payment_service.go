package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	domain "github.com/paperloft/api/internal/domain"
	"github.com/paperloft/api/internal/payments"
	"github.com/paperloft/api/internal/repositories"
)

var (
	// ErrPaymentNotFound indicates the order or its payment record is missing.
	ErrPaymentNotFound = errors.New("payment: not found")
	// ErrPaymentRejected indicates the gateway callback failed verification.
	ErrPaymentRejected = errors.New("payment: rejected")
)

// PaymentServiceDeps bundles collaborators required to construct the payment service.
type PaymentServiceDeps struct {
	Orders   repositories.OrderRepository
	Payments repositories.PaymentRepository
	Gateway  *payments.Manager
	Clock    func() time.Time
}

type paymentService struct {
	orders      repositories.OrderRepository
	paymentRepo repositories.PaymentRepository
	gateway     *payments.Manager
	clock       func() time.Time
}

// NewPaymentService wires dependencies into a concrete PaymentService implementation.
func NewPaymentService(deps PaymentServiceDeps) (PaymentService, error) {
	if deps.Orders == nil {
		return nil, errors.New("payment service: order repository is required")
	}
	if deps.Payments == nil {
		return nil, errors.New("payment service: payment repository is required")
	}
	if deps.Gateway == nil {
		return nil, errors.New("payment service: gateway manager is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &paymentService{
		orders:      deps.Orders,
		paymentRepo: deps.Payments,
		gateway:     deps.Gateway,
		clock:       clock,
	}, nil
}

// PaymentURL builds the signed hosted-payment-page URL for a pending order.
// The submitted amount is charged as given; when absent, the order's
// persisted payment amount fills in.
func (s *paymentService) PaymentURL(ctx context.Context, cmd PaymentURLCommand) (string, error) {
	if _, err := s.orders.FindByID(ctx, cmd.OrderID); err != nil {
		return "", s.mapRepositoryError(err)
	}

	amount := cmd.Amount
	if amount <= 0 {
		payment, err := s.paymentRepo.FindByOrder(ctx, cmd.OrderID)
		if err != nil {
			return "", s.mapRepositoryError(err)
		}
		amount = payment.Amount
	}

	return s.gateway.PaymentURL(ctx, cmd.Provider, payments.PaymentURLRequest{
		OrderID:   cmd.OrderID,
		Amount:    amount,
		OrderInfo: cmd.OrderInfo,
		ClientIP:  cmd.ClientIP,
		Locale:    cmd.Locale,
		CreatedAt: s.clock(),
	})
}

// HandleReturn verifies the gateway redirect and records the outcome on the
// order's payment record.
func (s *paymentService) HandleReturn(ctx context.Context, cmd PaymentReturnCommand) (PaymentReturn, error) {
	result, err := s.gateway.VerifyReturn(ctx, cmd.Provider, url.Values(cmd.Params))
	if err != nil {
		if errors.Is(err, payments.ErrInvalidSignature) {
			return PaymentReturn{}, fmt.Errorf("%w: %v", ErrPaymentRejected, err)
		}
		return PaymentReturn{}, err
	}

	status := domain.PaymentStatusCompleted
	if !result.Succeeded {
		status = domain.PaymentStatusFailed
	}
	if err := s.paymentRepo.UpdateStatus(ctx, result.OrderID, status); err != nil {
		return PaymentReturn{}, s.mapRepositoryError(err)
	}

	payment, err := s.paymentRepo.FindByOrder(ctx, result.OrderID)
	if err != nil {
		return PaymentReturn{}, s.mapRepositoryError(err)
	}

	return PaymentReturn{
		OrderID:   result.OrderID,
		Succeeded: result.Succeeded,
		Payment:   payment,
	}, nil
}

func (s *paymentService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrPaymentNotFound, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("payment: repository unavailable: %w", err)
		}
	}

	return err
}
