package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/paperloft/api/internal/services"
)

func TestSearchHandler(t *testing.T) {
	var requested string
	svc := &stubCatalogService{
		searchFn: func(_ context.Context, query string) ([]services.Product, error) {
			requested = query
			return []services.Product{
				{ID: "prod-1", Name: "Sổ tay A5", Price: 45000, Quantity: 12, Description: "hidden from results"},
			}, nil
		},
	}

	r := chi.NewRouter()
	r.Route("/search", NewSearchHandlers(svc).Routes)

	rec := doJSON(t, r, http.MethodGet, "/search?q=so+tay", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if requested != "so tay" {
		t.Errorf("unexpected forwarded query: %q", requested)
	}

	envelope := decodeEnvelope(t, rec)
	data := envelope["data"].([]any)
	if len(data) != 1 {
		t.Fatalf("expected one result, got %v", data)
	}
	result := data[0].(map[string]any)
	if result["id"] != "prod-1" || result["price"] != float64(45000) {
		t.Errorf("unexpected result payload: %v", result)
	}
	if _, present := result["description"]; present {
		t.Errorf("search results must stay compact, got %v", result)
	}
}

func TestSearchHandlerEmptyQuery(t *testing.T) {
	svc := &stubCatalogService{
		searchFn: func(context.Context, string) ([]services.Product, error) {
			return nil, nil
		},
	}
	r := chi.NewRouter()
	r.Route("/search", NewSearchHandlers(svc).Routes)

	rec := doJSON(t, r, http.MethodGet, "/search", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	data, ok := envelope["data"].([]any)
	if !ok || len(data) != 0 {
		t.Errorf("expected empty result list, got %v", envelope)
	}
}
