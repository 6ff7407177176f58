package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/paperloft/api/internal/platform/auth"
	"github.com/paperloft/api/internal/platform/httpx"
)

const maxLoginBodySize = 4 * 1024

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type adminLoginPayload struct {
	Token string `json:"token"`
}

// AdminAuthHandlers issues back-office session tokens.
type AdminAuthHandlers struct {
	authn *auth.AdminAuthenticator
}

// NewAdminAuthHandlers constructs a new AdminAuthHandlers instance.
func NewAdminAuthHandlers(authn *auth.AdminAuthenticator) *AdminAuthHandlers {
	return &AdminAuthHandlers{authn: authn}
}

// Routes registers the /admin endpoints.
func (h *AdminAuthHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/login", h.login)
}

func (h *AdminAuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.authn == nil {
		httpx.WriteError(ctx, w, httpx.NewError("auth_unavailable", "authentication unavailable", http.StatusServiceUnavailable))
		return
	}

	var req adminLoginRequest
	if err := decodeJSONBody(r, maxLoginBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "email and password are required", http.StatusBadRequest))
		return
	}

	token, err := h.authn.Login(ctx, email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_credentials", "invalid email or password", http.StatusUnauthorized))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("auth_error", "failed to process login", http.StatusInternalServerError))
		return
	}

	writeDataResponse(w, http.StatusOK, adminLoginPayload{Token: token})
}
