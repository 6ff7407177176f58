package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/paperloft/api/internal/domain"
	"github.com/paperloft/api/internal/platform/httpx"
	"github.com/paperloft/api/internal/services"
)

// SearchHandlers serves the storefront quick-search box.
type SearchHandlers struct {
	catalog services.CatalogService
}

// NewSearchHandlers constructs a new SearchHandlers instance.
func NewSearchHandlers(catalog services.CatalogService) *SearchHandlers {
	return &SearchHandlers{catalog: catalog}
}

// Routes registers the /search endpoint.
func (h *SearchHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.search)
}

func (h *SearchHandlers) search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.ServiceUnavailable("catalog"))
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	products, err := h.catalog.SearchProducts(ctx, query)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}

	items := make([]searchResultPayload, 0, len(products))
	for _, product := range products {
		items = append(items, buildSearchResult(product))
	}
	writeDataResponse(w, http.StatusOK, items)
}

type searchResultPayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

func buildSearchResult(product domain.Product) searchResultPayload {
	return searchResultPayload{
		ID:       product.ID,
		Name:     product.Name,
		Price:    product.Price,
		Quantity: product.Quantity,
	}
}
