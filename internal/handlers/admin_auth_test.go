package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newAdminRouter(t *testing.T) (chi.Router, func() string) {
	t.Helper()
	authn := newTestAuthenticator(t)
	r := chi.NewRouter()
	r.Route("/admin", NewAdminAuthHandlers(authn).Routes)
	return r, func() string {
		token, err := authn.Login(context.Background(), "admin@example.com", "letmein")
		if err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
		return token
	}
}

func TestAdminLoginIssuesToken(t *testing.T) {
	router, _ := newAdminRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/admin/login", map[string]any{
		"email":    "admin@example.com",
		"password": "letmein",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	envelope := decodeEnvelope(t, rec)
	data := envelope["data"].(map[string]any)
	token, ok := data["token"].(string)
	if !ok || token == "" {
		t.Fatalf("expected session token, got %v", data)
	}
}

func TestAdminLoginRejectsBadPassword(t *testing.T) {
	router, _ := newAdminRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/admin/login", map[string]any{
		"email":    "admin@example.com",
		"password": "wrong",
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (%s)", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	if envelope["error"] != "invalid_credentials" {
		t.Errorf("unexpected error code: %v", envelope["error"])
	}
}

func TestAdminLoginValidatesBody(t *testing.T) {
	router, _ := newAdminRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/admin/login", map[string]any{"email": "admin@example.com"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
