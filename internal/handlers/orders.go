package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	domain "github.com/paperloft/api/internal/domain"
	"github.com/paperloft/api/internal/platform/auth"
	"github.com/paperloft/api/internal/platform/httpx"
	"github.com/paperloft/api/internal/platform/observability"
	"github.com/paperloft/api/internal/platform/requestctx"
	"github.com/paperloft/api/internal/services"
)

const maxOrderBodySize = 64 * 1024

type cartItemRequest struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

type addressRequest struct {
	Street    string `json:"street"`
	Ward      string `json:"ward"`
	District  string `json:"district"`
	City      string `json:"city"`
	Country   string `json:"country"`
	Apartment string `json:"apartment"`
}

type userDetailsRequest struct {
	FullName    string         `json:"fullName"`
	Email       string         `json:"email"`
	Gender      string         `json:"gender"`
	DateOfBirth string         `json:"dateOfBirth"`
	Address     addressRequest `json:"address"`
}

type paymentDetailsRequest struct {
	Amount int64  `json:"amount"`
	Method string `json:"method"`
	Status string `json:"status"`
}

type placeOrderRequest struct {
	CartItems      []cartItemRequest     `json:"cartItems"`
	UserDetails    userDetailsRequest    `json:"userDetails"`
	PaymentDetails paymentDetailsRequest `json:"paymentDetails"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

// OrderHandlers exposes the storefront order intake and the back-office
// order management endpoints.
type OrderHandlers struct {
	authn  *auth.AdminAuthenticator
	orders services.OrderService
}

// NewOrderHandlers constructs a new OrderHandlers instance.
func NewOrderHandlers(authn *auth.AdminAuthenticator, orders services.OrderService) *OrderHandlers {
	return &OrderHandlers{
		authn:  authn,
		orders: orders,
	}
}

// Routes registers the /orders endpoints. Placement is public; listing,
// detail, and status changes require an admin session.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.placeOrder)
	r.Group(func(admin chi.Router) {
		if h.authn != nil {
			admin.Use(auth.RequireAdmin(h.authn))
		}
		admin.Get("/", h.listOrders)
		admin.Get("/{orderID}", h.getOrder)
		admin.Put("/{orderID}/status", h.updateStatus)
	})
}

func (h *OrderHandlers) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.ServiceUnavailable("order"))
		return
	}

	var req placeOrderRequest
	if err := decodeJSONBody(r, maxOrderBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	lines := make([]services.CartLine, 0, len(req.CartItems))
	for _, item := range req.CartItems {
		lines = append(lines, services.CartLine{
			ProductID: strings.TrimSpace(item.ID),
			Quantity:  item.Quantity,
		})
	}

	cmd := services.PlaceOrderCommand{
		Customer: services.CustomerInput{
			FullName:    req.UserDetails.FullName,
			Email:       req.UserDetails.Email,
			Gender:      req.UserDetails.Gender,
			DateOfBirth: req.UserDetails.DateOfBirth,
			Address: services.Address{
				Street:    strings.TrimSpace(req.UserDetails.Address.Street),
				Ward:      strings.TrimSpace(req.UserDetails.Address.Ward),
				District:  strings.TrimSpace(req.UserDetails.Address.District),
				City:      strings.TrimSpace(req.UserDetails.Address.City),
				Country:   strings.TrimSpace(req.UserDetails.Address.Country),
				Apartment: strings.TrimSpace(req.UserDetails.Address.Apartment),
			},
		},
		Lines: lines,
		Payment: services.PaymentInput{
			Amount: req.PaymentDetails.Amount,
			Method: req.PaymentDetails.Method,
			Status: req.PaymentDetails.Status,
		},
	}

	placed, err := h.orders.PlaceOrder(ctx, cmd)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	requestctx.Logger(ctx).Info("order placed",
		zap.Int64("order_id", placed.Order.ID),
		zap.String("customer_email", observability.SanitizeEmail(placed.Customer.Email)),
		zap.Int("items", len(placed.Order.Items)),
	)

	writeDataResponse(w, http.StatusCreated, placedOrderData{
		Order: buildOrderPayload(placed.Order),
		User:  buildCustomerPayload(placed.Customer),
	})
}

func (h *OrderHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.ServiceUnavailable("order"))
		return
	}

	orders, err := h.orders.ListOrders(ctx)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	items := make([]orderPayload, 0, len(orders))
	for _, order := range orders {
		items = append(items, buildOrderPayload(order))
	}
	writeDataResponse(w, http.StatusOK, items)
}

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.ServiceUnavailable("order"))
		return
	}

	orderID, ok := int64URLParam(r, "orderID")
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "order id must be a positive integer", http.StatusBadRequest))
		return
	}

	order, err := h.orders.GetOrder(ctx, orderID)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	writeDataResponse(w, http.StatusOK, buildOrderPayload(order))
}

func (h *OrderHandlers) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.ServiceUnavailable("order"))
		return
	}

	orderID, ok := int64URLParam(r, "orderID")
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "order id must be a positive integer", http.StatusBadRequest))
		return
	}

	var req updateOrderStatusRequest
	if err := decodeJSONBody(r, maxOrderBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	order, err := h.orders.UpdateStatus(ctx, services.UpdateOrderStatusCommand{
		OrderID: orderID,
		Status:  req.Status,
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	writeDataResponse(w, http.StatusOK, buildOrderPayload(order))
}

type placedOrderData struct {
	Order orderPayload    `json:"order"`
	User  customerPayload `json:"user"`
}

type orderPayload struct {
	ID        int64              `json:"id"`
	Status    string             `json:"status"`
	Items     []orderItemPayload `json:"items"`
	Customer  *customerPayload   `json:"customer,omitempty"`
	Payment   *paymentPayload    `json:"payment,omitempty"`
	CreatedAt string             `json:"createdAt"`
	UpdatedAt string             `json:"updatedAt,omitempty"`
}

type orderItemPayload struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Product   *productPayload `json:"product,omitempty"`
}

type paymentPayload struct {
	ID        string `json:"id"`
	OrderID   int64  `json:"orderId"`
	Amount    int64  `json:"amount"`
	Method    string `json:"method"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

type customerPayload struct {
	ID          int64           `json:"id"`
	FullName    string          `json:"fullName"`
	Email       string          `json:"email"`
	Gender      string          `json:"gender,omitempty"`
	DateOfBirth string          `json:"dateOfBirth,omitempty"`
	Address     *addressPayload `json:"address,omitempty"`
}

type addressPayload struct {
	Street    string `json:"street"`
	Ward      string `json:"ward,omitempty"`
	District  string `json:"district,omitempty"`
	City      string `json:"city"`
	Country   string `json:"country"`
	Apartment string `json:"apartment,omitempty"`
}

func buildOrderPayload(order services.Order) orderPayload {
	payload := orderPayload{
		ID:        order.ID,
		Status:    string(order.Status),
		Items:     make([]orderItemPayload, 0, len(order.Items)),
		CreatedAt: formatTime(order.CreatedAt),
		UpdatedAt: formatTime(order.UpdatedAt),
	}
	for _, item := range order.Items {
		entry := orderItemPayload{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
		if item.Product != nil {
			product := buildProductPayload(*item.Product)
			entry.Product = &product
		}
		payload.Items = append(payload.Items, entry)
	}
	if order.Customer != nil {
		customer := buildCustomerPayload(*order.Customer)
		payload.Customer = &customer
	}
	if order.Payment != nil {
		payload.Payment = &paymentPayload{
			ID:        order.Payment.ID,
			OrderID:   order.Payment.OrderID,
			Amount:    order.Payment.Amount,
			Method:    string(order.Payment.Method),
			Status:    string(order.Payment.Status),
			CreatedAt: formatTime(order.Payment.CreatedAt),
		}
	}
	return payload
}

func buildCustomerPayload(customer services.Customer) customerPayload {
	payload := customerPayload{
		ID:          customer.ID,
		FullName:    customer.FullName,
		Email:       customer.Email,
		Gender:      customer.Gender,
		DateOfBirth: customer.DateOfBirth,
	}
	if customer.Address != (domain.Address{}) {
		payload.Address = &addressPayload{
			Street:    customer.Address.Street,
			Ward:      customer.Address.Ward,
			District:  customer.Address.District,
			City:      customer.Address.City,
			Country:   customer.Address.Country,
			Apartment: customer.Address.Apartment,
		}
	}
	return payload
}

func writeBodyError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
	case errors.Is(err, errEmptyBody):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body is required", http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON body", http.StatusBadRequest))
	}
}

func writeOrderError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrOrderDuplicateAttempt):
		httpx.WriteError(ctx, w, httpx.NewError("order_duplicate", "an identical order was just submitted, please wait a moment", http.StatusTooManyRequests))
	case errors.Is(err, services.ErrOrderInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderInsufficientStock):
		httpx.WriteError(ctx, w, httpx.NewError("insufficient_stock", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
	case errors.Is(err, services.ErrOrderConflict):
		httpx.WriteError(ctx, w, httpx.NewError("order_conflict", err.Error(), http.StatusConflict))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("order_error", "failed to process order request", http.StatusInternalServerError))
	}
}
