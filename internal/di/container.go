package di

import (
	"context"
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/paperloft/api/internal/payments"
	"github.com/paperloft/api/internal/platform/auth"
	"github.com/paperloft/api/internal/platform/config"
	"github.com/paperloft/api/internal/platform/debounce"
	"github.com/paperloft/api/internal/repositories"
	"github.com/paperloft/api/internal/services"
)

// Services bundles the service-layer contracts that handlers rely upon.
type Services struct {
	Orders    services.OrderService
	Catalog   services.CatalogService
	Customers services.CustomerService
	Payments  services.PaymentService
}

// Container wires repositories, services, and supporting infrastructure for runtime use.
type Container struct {
	Config        config.Config
	Repositories  repositories.Registry
	Guard         debounce.Guard
	Gateway       *payments.Manager
	Authenticator *auth.AdminAuthenticator
	Services      Services
}

// NewContainer constructs the runtime dependencies. Production wiring provides the
// gorm-backed registry and a Redis guard; tests can supply in-memory substitutes.
func NewContainer(cfg config.Config, reg repositories.Registry, guard debounce.Guard) (*Container, error) {
	if reg == nil {
		return nil, errors.New("repositories registry is required")
	}
	if guard == nil {
		guard = debounce.NewMemoryGuard()
	}

	gateway, err := buildGateway(cfg)
	if err != nil {
		return nil, err
	}

	authenticator := auth.NewAdminAuthenticator(
		cfg.Admin.Email,
		cfg.Admin.PasswordHash,
		cfg.Admin.JWTSecret,
		auth.WithTokenTTL(cfg.Admin.TokenTTL),
	)

	svc, err := buildServices(cfg, reg, guard, gateway)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:        cfg,
		Repositories:  reg,
		Guard:         guard,
		Gateway:       gateway,
		Authenticator: authenticator,
		Services:      svc,
	}, nil
}

// Close releases repository resources.
func (c *Container) Close(ctx context.Context) error {
	if c == nil || c.Repositories == nil {
		return nil
	}
	return c.Repositories.Close(ctx)
}

func buildGateway(cfg config.Config) (*payments.Manager, error) {
	vnpay, err := payments.NewVNPayProvider(payments.VNPayConfig{
		PayURL:     cfg.Gateway.PayURL,
		TmnCode:    cfg.Gateway.TmnCode,
		HashSecret: cfg.Gateway.HashSecret,
		ReturnURL:  cfg.Gateway.ReturnURL,
		Version:    cfg.Gateway.Version,
		Currency:   cfg.Gateway.Currency,
	})
	if err != nil {
		return nil, fmt.Errorf("payment gateway: %w", err)
	}
	return payments.NewManager(map[string]payments.Provider{
		"vnpay": vnpay,
	})
}

func buildServices(cfg config.Config, reg repositories.Registry, guard debounce.Guard, gateway *payments.Manager) (Services, error) {
	var svc Services

	orderSvc, err := services.NewOrderService(services.OrderServiceDeps{
		Products:    reg.Products(),
		Customers:   reg.Customers(),
		Orders:      reg.Orders(),
		Payments:    reg.Payments(),
		Guard:       guard,
		UnitOfWork:  reg,
		Window:      cfg.Debounce.Window,
		IDGenerator: newID,
	})
	if err != nil {
		return svc, fmt.Errorf("order service: %w", err)
	}
	svc.Orders = orderSvc

	catalogSvc, err := services.NewCatalogService(services.CatalogServiceDeps{
		Products:    reg.Products(),
		Categories:  reg.Categories(),
		SearchLimit: cfg.Search.Limit,
		IDGenerator: newID,
	})
	if err != nil {
		return svc, fmt.Errorf("catalog service: %w", err)
	}
	svc.Catalog = catalogSvc

	customerSvc, err := services.NewCustomerService(services.CustomerServiceDeps{
		Customers: reg.Customers(),
		Orders:    reg.Orders(),
	})
	if err != nil {
		return svc, fmt.Errorf("customer service: %w", err)
	}
	svc.Customers = customerSvc

	paymentSvc, err := services.NewPaymentService(services.PaymentServiceDeps{
		Orders:   reg.Orders(),
		Payments: reg.Payments(),
		Gateway:  gateway,
	})
	if err != nil {
		return svc, fmt.Errorf("payment service: %w", err)
	}
	svc.Payments = paymentSvc

	return svc, nil
}

func newID() string {
	return ulid.Make().String()
}
