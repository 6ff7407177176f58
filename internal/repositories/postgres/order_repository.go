package postgres

import (
	"context"

	domain "github.com/paperloft/api/internal/domain"
	"github.com/paperloft/api/internal/repositories"
)

// OrderRepository persists order headers and line items.
type OrderRepository struct {
	registry *Registry
}

func (r *OrderRepository) Insert(ctx context.Context, order domain.Order) (domain.Order, error) {
	model := orderModel{
		CustomerID: order.CustomerID,
		Status:     string(order.Status),
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
	}
	for _, item := range order.Items {
		model.Items = append(model.Items, orderItemModel{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	if err := r.registry.conn(ctx).Create(&model).Error; err != nil {
		return domain.Order{}, mapError("orders.insert", err)
	}
	return model.toDomain(), nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	result := r.registry.conn(ctx).
		Model(&orderModel{}).
		Where("id = ?", orderID).
		Update("status", string(status))
	if result.Error != nil {
		return mapError("orders.update_status", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.NewError("orders.update_status", repositories.ErrorKindNotFound, "order not found", nil)
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, orderID int64) (domain.Order, error) {
	var model orderModel
	err := r.registry.conn(ctx).
		Preload("Items").
		Preload("Items.Product").
		First(&model, "id = ?", orderID).Error
	if err != nil {
		return domain.Order{}, mapError("orders.find", err)
	}
	return model.toDomain(), nil
}

func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	var models []orderModel
	err := r.registry.conn(ctx).
		Preload("Items").
		Preload("Items.Product").
		Preload("Customer").
		Preload("Customer.Address").
		Preload("Payment").
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, mapError("orders.list", err)
	}
	orders := make([]domain.Order, 0, len(models))
	for _, model := range models {
		orders = append(orders, model.toDomain())
	}
	return orders, nil
}

func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error) {
	var models []orderModel
	err := r.registry.conn(ctx).
		Preload("Items").
		Preload("Items.Product").
		Preload("Payment").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, mapError("orders.list_by_customer", err)
	}
	orders := make([]domain.Order, 0, len(models))
	for _, model := range models {
		orders = append(orders, model.toDomain())
	}
	return orders, nil
}

var _ repositories.OrderRepository = (*OrderRepository)(nil)
