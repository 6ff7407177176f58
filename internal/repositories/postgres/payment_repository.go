package postgres

import (
	"context"

	domain "github.com/paperloft/api/internal/domain"
	"github.com/paperloft/api/internal/repositories"
)

// PaymentRepository stores the payment record created alongside each order.
type PaymentRepository struct {
	registry *Registry
}

func (r *PaymentRepository) Insert(ctx context.Context, payment domain.Payment) (domain.Payment, error) {
	model := paymentModel{
		ID:        payment.ID,
		OrderID:   payment.OrderID,
		Amount:    payment.Amount,
		Method:    string(payment.Method),
		Status:    string(payment.Status),
		CreatedAt: payment.CreatedAt,
		UpdatedAt: payment.UpdatedAt,
	}
	if err := r.registry.conn(ctx).Create(&model).Error; err != nil {
		return domain.Payment{}, mapError("payments.insert", err)
	}
	return model.toDomain(), nil
}

func (r *PaymentRepository) UpdateStatus(ctx context.Context, orderID int64, status domain.PaymentStatus) error {
	result := r.registry.conn(ctx).
		Model(&paymentModel{}).
		Where("order_id = ?", orderID).
		Update("status", string(status))
	if result.Error != nil {
		return mapError("payments.update_status", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.NewError("payments.update_status", repositories.ErrorKindNotFound, "payment not found", nil)
	}
	return nil
}

func (r *PaymentRepository) FindByOrder(ctx context.Context, orderID int64) (domain.Payment, error) {
	var model paymentModel
	err := r.registry.conn(ctx).First(&model, "order_id = ?", orderID).Error
	if err != nil {
		return domain.Payment{}, mapError("payments.find_by_order", err)
	}
	return model.toDomain(), nil
}

var _ repositories.PaymentRepository = (*PaymentRepository)(nil)
