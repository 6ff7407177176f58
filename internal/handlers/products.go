package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/paperloft/api/internal/domain"
	"github.com/paperloft/api/internal/platform/auth"
	"github.com/paperloft/api/internal/platform/httpx"
	"github.com/paperloft/api/internal/repositories"
	"github.com/paperloft/api/internal/services"
)

const (
	maxProductBodySize  = 64 * 1024
	maxProductPageLimit = 100
)

type upsertProductRequest struct {
	Name        string  `json:"name"`
	Price       int64   `json:"price"`
	Quantity    int     `json:"quantity"`
	Description string  `json:"description"`
	ImageURL    string  `json:"imageUrl"`
	CategoryID  *string `json:"categoryId"`
}

// CatalogHandlers exposes product browsing plus the admin-only catalog writes.
type CatalogHandlers struct {
	authn   *auth.AdminAuthenticator
	catalog services.CatalogService
}

// NewCatalogHandlers constructs a new CatalogHandlers instance.
func NewCatalogHandlers(authn *auth.AdminAuthenticator, catalog services.CatalogService) *CatalogHandlers {
	return &CatalogHandlers{
		authn:   authn,
		catalog: catalog,
	}
}

// Routes registers the /products endpoints. Reads are public; mutations
// require an admin session.
func (h *CatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.listProducts)
	r.Get("/price-range", h.priceRange)
	r.Get("/{productID}", h.getProduct)
	r.Group(func(admin chi.Router) {
		if h.authn != nil {
			admin.Use(auth.RequireAdmin(h.authn))
		}
		admin.Post("/", h.createProduct)
		admin.Put("/{productID}", h.updateProduct)
		admin.Delete("/{productID}", h.deleteProduct)
	})
}

func (h *CatalogHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.ServiceUnavailable("catalog"))
		return
	}

	query, err := parseProductListQuery(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	products, err := h.catalog.ListProducts(ctx, query)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeDataResponse(w, http.StatusOK, buildProductPayloads(products))
}

func (h *CatalogHandlers) priceRange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.ServiceUnavailable("catalog"))
		return
	}

	bounds, err := h.catalog.PriceRange(ctx)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeDataResponse(w, http.StatusOK, priceRangePayload{Min: bounds.Min, Max: bounds.Max})
}

func (h *CatalogHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.ServiceUnavailable("catalog"))
		return
	}

	productID := strings.TrimSpace(chi.URLParam(r, "productID"))
	if productID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "product id is required", http.StatusBadRequest))
		return
	}

	product, err := h.catalog.GetProduct(ctx, productID)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeDataResponse(w, http.StatusOK, buildProductPayload(product))
}

func (h *CatalogHandlers) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.ServiceUnavailable("catalog"))
		return
	}

	var req upsertProductRequest
	if err := decodeJSONBody(r, maxProductBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	product, err := h.catalog.CreateProduct(ctx, buildUpsertCommand(req))
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeDataResponse(w, http.StatusCreated, buildProductPayload(product))
}

func (h *CatalogHandlers) updateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.ServiceUnavailable("catalog"))
		return
	}

	productID := strings.TrimSpace(chi.URLParam(r, "productID"))
	if productID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "product id is required", http.StatusBadRequest))
		return
	}

	var req upsertProductRequest
	if err := decodeJSONBody(r, maxProductBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	product, err := h.catalog.UpdateProduct(ctx, productID, buildUpsertCommand(req))
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeDataResponse(w, http.StatusOK, buildProductPayload(product))
}

func (h *CatalogHandlers) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.ServiceUnavailable("catalog"))
		return
	}

	productID := strings.TrimSpace(chi.URLParam(r, "productID"))
	if productID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "product id is required", http.StatusBadRequest))
		return
	}

	if err := h.catalog.DeleteProduct(ctx, productID); err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type productPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
	Stock       string `json:"stock"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	CategoryID  string `json:"categoryId,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

type priceRangePayload struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

func buildProductPayload(product domain.Product) productPayload {
	payload := productPayload{
		ID:          product.ID,
		Name:        product.Name,
		Price:       product.Price,
		Quantity:    product.Quantity,
		Stock:       string(product.Stock()),
		Description: product.Description,
		ImageURL:    product.ImageURL,
		CreatedAt:   formatTime(product.CreatedAt),
		UpdatedAt:   formatTime(product.UpdatedAt),
	}
	if product.CategoryID != nil {
		payload.CategoryID = *product.CategoryID
	}
	return payload
}

func buildProductPayloads(products []domain.Product) []productPayload {
	items := make([]productPayload, 0, len(products))
	for _, product := range products {
		items = append(items, buildProductPayload(product))
	}
	return items
}

func buildUpsertCommand(req upsertProductRequest) services.UpsertProductCommand {
	return services.UpsertProductCommand{
		Name:        req.Name,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
	}
}

func parseProductListQuery(r *http.Request) (services.ProductListQuery, error) {
	values := r.URL.Query()
	query := services.ProductListQuery{
		Name: strings.TrimSpace(values.Get("name")),
	}

	if raw := strings.TrimSpace(values.Get("min_price")); raw != "" {
		price, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || price < 0 {
			return query, errors.New("min_price must be a non-negative integer")
		}
		query.MinPrice = &price
	}
	if raw := strings.TrimSpace(values.Get("max_price")); raw != "" {
		price, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || price < 0 {
			return query, errors.New("max_price must be a non-negative integer")
		}
		query.MaxPrice = &price
	}

	switch sort := strings.TrimSpace(values.Get("sort")); sort {
	case "", string(repositories.ProductSortNewest):
		query.Sort = repositories.ProductSortNewest
	case string(repositories.ProductSortPriceAsc):
		query.Sort = repositories.ProductSortPriceAsc
	case string(repositories.ProductSortPriceDesc):
		query.Sort = repositories.ProductSortPriceDesc
	default:
		return query, errors.New("sort must be one of newest, price-asc, price-desc")
	}

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return query, errors.New("limit must be a positive integer")
		}
		if limit > maxProductPageLimit {
			limit = maxProductPageLimit
		}
		query.Limit = limit
	}

	return query, nil
}

func writeCatalogError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrCatalogInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCatalogNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("catalog_error", "failed to process catalog request", http.StatusInternalServerError))
	}
}
