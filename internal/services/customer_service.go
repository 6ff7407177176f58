package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "github.com/paperloft/api/internal/domain"
	"github.com/paperloft/api/internal/repositories"
)

// ErrCustomerNotFound indicates the customer could not be located.
var ErrCustomerNotFound = errors.New("customer: not found")

// CustomerServiceDeps bundles collaborators required to construct the customer service.
type CustomerServiceDeps struct {
	Customers repositories.CustomerRepository
	Orders    repositories.OrderRepository
}

type customerService struct {
	customers repositories.CustomerRepository
	orders    repositories.OrderRepository
}

// NewCustomerService wires dependencies into a concrete CustomerService implementation.
func NewCustomerService(deps CustomerServiceDeps) (CustomerService, error) {
	if deps.Customers == nil {
		return nil, errors.New("customer service: customer repository is required")
	}
	if deps.Orders == nil {
		return nil, errors.New("customer service: order repository is required")
	}
	return &customerService{customers: deps.Customers, orders: deps.Orders}, nil
}

// ListCustomers returns every customer with order count and lifetime spend,
// newest first.
func (s *customerService) ListCustomers(ctx context.Context) ([]CustomerSummary, error) {
	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}

	summaries := make([]CustomerSummary, 0, len(customers))
	for _, customer := range customers {
		orders, err := s.orders.ListByCustomer(ctx, customer.ID)
		if err != nil {
			return nil, s.mapRepositoryError(err)
		}

		var spent int64
		for _, order := range orders {
			if order.Payment == nil || order.Status == domain.OrderStatusCancelled {
				continue
			}
			spent += order.Payment.Amount
		}

		summaries = append(summaries, CustomerSummary{
			Customer:   customer,
			OrderCount: len(orders),
			TotalSpent: spent,
		})
	}
	return summaries, nil
}

func (s *customerService) CustomerByEmail(ctx context.Context, email string) (Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return Customer{}, fmt.Errorf("%w: email is required", ErrCustomerNotFound)
	}
	customer, err := s.customers.FindByEmail(ctx, email)
	if err != nil {
		return Customer{}, s.mapRepositoryError(err)
	}
	return customer, nil
}

func (s *customerService) CustomerOrders(ctx context.Context, customerID int64) ([]Order, error) {
	if customerID <= 0 {
		return nil, fmt.Errorf("%w: customer id is required", ErrCustomerNotFound)
	}
	orders, err := s.orders.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return orders, nil
}

func (s *customerService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrCustomerNotFound, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("customer: repository unavailable: %w", err)
		}
	}

	return err
}
