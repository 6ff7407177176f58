package postgres

import (
	"context"

	domain "github.com/paperloft/api/internal/domain"
	"github.com/paperloft/api/internal/repositories"
)

// CustomerRepository stores customer profiles with their owned address.
type CustomerRepository struct {
	registry *Registry
}

func (r *CustomerRepository) Insert(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	model := customerModel{
		FullName:    customer.FullName,
		Email:       customer.Email,
		Gender:      customer.Gender,
		DateOfBirth: customer.DateOfBirth,
		Address: addressModel{
			Street:    customer.Address.Street,
			Ward:      customer.Address.Ward,
			District:  customer.Address.District,
			City:      customer.Address.City,
			Country:   customer.Address.Country,
			Apartment: customer.Address.Apartment,
		},
		CreatedAt: customer.CreatedAt,
	}
	if err := r.registry.conn(ctx).Create(&model).Error; err != nil {
		return domain.Customer{}, mapError("customers.insert", err)
	}
	return model.toDomain(), nil
}

func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (domain.Customer, error) {
	var model customerModel
	err := r.registry.conn(ctx).
		Preload("Address").
		First(&model, "email = ?", email).Error
	if err != nil {
		return domain.Customer{}, mapError("customers.find_by_email", err)
	}
	return model.toDomain(), nil
}

func (r *CustomerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	var models []customerModel
	err := r.registry.conn(ctx).
		Preload("Address").
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, mapError("customers.list", err)
	}
	customers := make([]domain.Customer, 0, len(models))
	for _, model := range models {
		customers = append(customers, model.toDomain())
	}
	return customers, nil
}

var _ repositories.CustomerRepository = (*CustomerRepository)(nil)
