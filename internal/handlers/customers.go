package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/paperloft/api/internal/platform/auth"
	"github.com/paperloft/api/internal/platform/httpx"
	"github.com/paperloft/api/internal/services"
)

// CustomerHandlers exposes back-office customer views. Every route
// requires an admin session.
type CustomerHandlers struct {
	authn     *auth.AdminAuthenticator
	customers services.CustomerService
}

// NewCustomerHandlers constructs a new CustomerHandlers instance.
func NewCustomerHandlers(authn *auth.AdminAuthenticator, customers services.CustomerService) *CustomerHandlers {
	return &CustomerHandlers{
		authn:     authn,
		customers: customers,
	}
}

// Routes registers the /customers endpoints.
func (h *CustomerHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(auth.RequireAdmin(h.authn))
	}
	r.Get("/", h.listCustomers)
	r.Get("/by-email", h.customerByEmail)
	r.Get("/{customerID}/orders", h.customerOrders)
}

func (h *CustomerHandlers) listCustomers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.customers == nil {
		httpx.WriteError(ctx, w, httpx.ServiceUnavailable("customer"))
		return
	}

	summaries, err := h.customers.ListCustomers(ctx)
	if err != nil {
		writeCustomerError(ctx, w, err)
		return
	}

	items := make([]customerSummaryPayload, 0, len(summaries))
	for _, summary := range summaries {
		items = append(items, customerSummaryPayload{
			Customer:   buildCustomerPayload(summary.Customer),
			OrderCount: summary.OrderCount,
			TotalSpent: summary.TotalSpent,
		})
	}
	writeDataResponse(w, http.StatusOK, items)
}

func (h *CustomerHandlers) customerByEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.customers == nil {
		httpx.WriteError(ctx, w, httpx.ServiceUnavailable("customer"))
		return
	}

	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "email query parameter is required", http.StatusBadRequest))
		return
	}

	customer, err := h.customers.CustomerByEmail(ctx, email)
	if err != nil {
		writeCustomerError(ctx, w, err)
		return
	}
	writeDataResponse(w, http.StatusOK, buildCustomerPayload(customer))
}

func (h *CustomerHandlers) customerOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.customers == nil {
		httpx.WriteError(ctx, w, httpx.ServiceUnavailable("customer"))
		return
	}

	customerID, ok := int64URLParam(r, "customerID")
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "customer id must be a positive integer", http.StatusBadRequest))
		return
	}

	orders, err := h.customers.CustomerOrders(ctx, customerID)
	if err != nil {
		writeCustomerError(ctx, w, err)
		return
	}

	items := make([]orderPayload, 0, len(orders))
	for _, order := range orders {
		items = append(items, buildOrderPayload(order))
	}
	writeDataResponse(w, http.StatusOK, items)
}

type customerSummaryPayload struct {
	Customer   customerPayload `json:"customer"`
	OrderCount int             `json:"orderCount"`
	TotalSpent int64           `json:"totalSpent"`
}

func writeCustomerError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrCustomerNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("customer_not_found", "customer not found", http.StatusNotFound))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("customer_error", "failed to process customer request", http.StatusInternalServerError))
	}
}
