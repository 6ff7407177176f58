package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/paperloft/api/internal/payments"
	"github.com/paperloft/api/internal/platform/httpx"
	"github.com/paperloft/api/internal/services"
)

const maxPaymentBodySize = 16 * 1024

type gatewayURLRequest struct {
	OrderID   int64  `json:"orderId"`
	Provider  string `json:"provider"`
	Amount    int64  `json:"amount"`
	OrderInfo string `json:"orderInfo"`
	Locale    string `json:"locale"`
}

// PaymentHandlers bridges checkout to the hosted payment gateway.
type PaymentHandlers struct {
	payments services.PaymentService
}

// NewPaymentHandlers constructs a new PaymentHandlers instance.
func NewPaymentHandlers(payments services.PaymentService) *PaymentHandlers {
	return &PaymentHandlers{payments: payments}
}

// Routes registers the /payments endpoints. The return route accepts both
// GET and POST because the gateway redirects with GET but some sandbox
// tooling posts the callback.
func (h *PaymentHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/gateway-url", h.gatewayURL)
	r.Get("/return", h.handleReturn)
	r.Post("/return", h.handleReturn)
}

func (h *PaymentHandlers) gatewayURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.payments == nil {
		httpx.WriteError(ctx, w, httpx.ServiceUnavailable("payment"))
		return
	}

	var req gatewayURLRequest
	if err := decodeJSONBody(r, maxPaymentBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	if req.OrderID <= 0 {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "orderId must be a positive integer", http.StatusBadRequest))
		return
	}

	redirect, err := h.payments.PaymentURL(ctx, services.PaymentURLCommand{
		OrderID:   req.OrderID,
		Provider:  strings.TrimSpace(req.Provider),
		Amount:    req.Amount,
		OrderInfo: strings.TrimSpace(req.OrderInfo),
		ClientIP:  clientIP(r),
		Locale:    strings.TrimSpace(req.Locale),
	})
	if err != nil {
		writePaymentError(ctx, w, err)
		return
	}
	writeDataResponse(w, http.StatusOK, gatewayURLPayload{PaymentURL: redirect})
}

func (h *PaymentHandlers) handleReturn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.payments == nil {
		httpx.WriteError(ctx, w, httpx.ServiceUnavailable("payment"))
		return
	}

	params := r.URL.Query()
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed return parameters", http.StatusBadRequest))
			return
		}
		params = r.Form
	}

	result, err := h.payments.HandleReturn(ctx, services.PaymentReturnCommand{
		Provider: strings.TrimSpace(params.Get("provider")),
		Params:   params,
	})
	if err != nil {
		writePaymentError(ctx, w, err)
		return
	}

	writeDataResponse(w, http.StatusOK, paymentReturnPayload{
		OrderID:   result.OrderID,
		Succeeded: result.Succeeded,
		Status:    string(result.Payment.Status),
		Amount:    result.Payment.Amount,
	})
}

type gatewayURLPayload struct {
	PaymentURL string `json:"paymentUrl"`
}

type paymentReturnPayload struct {
	OrderID   int64  `json:"orderId"`
	Succeeded bool   `json:"succeeded"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
}

func writePaymentError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrPaymentNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("payment_not_found", "no payment found for order", http.StatusNotFound))
	case errors.Is(err, services.ErrPaymentRejected):
		httpx.WriteError(ctx, w, httpx.NewError("payment_rejected", "payment verification failed", http.StatusBadRequest))
	case errors.Is(err, payments.ErrUnsupportedProvider):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "unsupported payment provider", http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("payment_error", "failed to process payment request", http.StatusInternalServerError))
	}
}
