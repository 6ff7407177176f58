package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/paperloft/api/internal/domain"
	"github.com/paperloft/api/internal/platform/httpx"
	"github.com/paperloft/api/internal/services"
)

// CategoryHandlers serves the public category tree.
type CategoryHandlers struct {
	catalog services.CatalogService
}

// NewCategoryHandlers constructs a new CategoryHandlers instance.
func NewCategoryHandlers(catalog services.CatalogService) *CategoryHandlers {
	return &CategoryHandlers{catalog: catalog}
}

// Routes registers the /categories endpoints.
func (h *CategoryHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.listCategories)
}

func (h *CategoryHandlers) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.ServiceUnavailable("catalog"))
		return
	}

	if name := strings.TrimSpace(r.URL.Query().Get("category")); name != "" {
		category, err := h.catalog.CategoryByName(ctx, name)
		if err != nil {
			writeCategoryError(ctx, w, err)
			return
		}
		writeDataResponse(w, http.StatusOK, buildCategoryPayload(category))
		return
	}

	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		writeCategoryError(ctx, w, err)
		return
	}

	items := make([]categoryPayload, 0, len(categories))
	for _, category := range categories {
		items = append(items, buildCategoryPayload(category))
	}
	writeDataResponse(w, http.StatusOK, items)
}

type categoryPayload struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	ParentID string            `json:"parentId,omitempty"`
	Children []categoryPayload `json:"children,omitempty"`
	Products []productPayload  `json:"products,omitempty"`
}

func buildCategoryPayload(category domain.Category) categoryPayload {
	payload := categoryPayload{
		ID:   category.ID,
		Name: category.Name,
	}
	if category.ParentID != nil {
		payload.ParentID = *category.ParentID
	}
	for _, child := range category.Children {
		payload.Children = append(payload.Children, buildCategoryPayload(child))
	}
	if len(category.Products) > 0 {
		payload.Products = buildProductPayloads(category.Products)
	}
	return payload
}

func writeCategoryError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrCatalogInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCatalogNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("category_not_found", "category not found", http.StatusNotFound))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("catalog_error", "failed to process catalog request", http.StatusInternalServerError))
	}
}
