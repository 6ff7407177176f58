package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	domain "github.com/paperloft/api/internal/domain"
	"github.com/paperloft/api/internal/platform/textutil"
	"github.com/paperloft/api/internal/repositories"
)

const defaultSearchLimit = 5

var (
	// ErrCatalogInvalidInput signals the caller provided invalid data.
	ErrCatalogInvalidInput = errors.New("catalog: invalid input")
	// ErrCatalogNotFound indicates the product or category could not be located.
	ErrCatalogNotFound = errors.New("catalog: not found")
)

// CatalogServiceDeps bundles collaborators required to construct the catalog service.
type CatalogServiceDeps struct {
	Products    repositories.ProductRepository
	Categories  repositories.CategoryRepository
	SearchLimit int
	IDGenerator func() string
}

type catalogService struct {
	products    repositories.ProductRepository
	categories  repositories.CategoryRepository
	searchLimit int
	newID       func() string
}

// NewCatalogService wires dependencies into a concrete CatalogService implementation.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Products == nil {
		return nil, errors.New("catalog service: product repository is required")
	}
	if deps.Categories == nil {
		return nil, errors.New("catalog service: category repository is required")
	}

	limit := deps.SearchLimit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return ulid.Make().String()
		}
	}

	return &catalogService{
		products:    deps.Products,
		categories:  deps.Categories,
		searchLimit: limit,
		newID:       idGen,
	}, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, cmd UpsertProductCommand) (Product, error) {
	if err := validateProduct(cmd); err != nil {
		return Product{}, err
	}

	product, err := s.products.Insert(ctx, domain.Product{
		ID:          s.newID(),
		Name:        strings.TrimSpace(cmd.Name),
		Price:       cmd.Price,
		Quantity:    cmd.Quantity,
		Description: cmd.Description,
		ImageURL:    cmd.ImageURL,
		CategoryID:  cmd.CategoryID,
	})
	if err != nil {
		return Product{}, s.mapRepositoryError(err)
	}
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, productID string, cmd UpsertProductCommand) (Product, error) {
	if strings.TrimSpace(productID) == "" {
		return Product{}, fmt.Errorf("%w: product id is required", ErrCatalogInvalidInput)
	}
	if err := validateProduct(cmd); err != nil {
		return Product{}, err
	}

	product, err := s.products.Update(ctx, domain.Product{
		ID:          productID,
		Name:        strings.TrimSpace(cmd.Name),
		Price:       cmd.Price,
		Quantity:    cmd.Quantity,
		Description: cmd.Description,
		ImageURL:    cmd.ImageURL,
		CategoryID:  cmd.CategoryID,
	})
	if err != nil {
		return Product{}, s.mapRepositoryError(err)
	}
	return product, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, productID string) error {
	if strings.TrimSpace(productID) == "" {
		return fmt.Errorf("%w: product id is required", ErrCatalogInvalidInput)
	}
	if err := s.products.Delete(ctx, productID); err != nil {
		return s.mapRepositoryError(err)
	}
	return nil
}

func (s *catalogService) GetProduct(ctx context.Context, productID string) (Product, error) {
	if strings.TrimSpace(productID) == "" {
		return Product{}, fmt.Errorf("%w: product id is required", ErrCatalogInvalidInput)
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return Product{}, s.mapRepositoryError(err)
	}
	return product, nil
}

func (s *catalogService) ListProducts(ctx context.Context, query ProductListQuery) ([]Product, error) {
	filter := repositories.ProductListFilter{
		NameContains: strings.TrimSpace(query.Name),
		Sort:         query.Sort,
		Limit:        query.Limit,
	}
	filter.Price.Min = query.MinPrice
	filter.Price.Max = query.MaxPrice
	if query.MinPrice != nil && query.MaxPrice != nil && *query.MinPrice > *query.MaxPrice {
		return nil, fmt.Errorf("%w: price range is inverted", ErrCatalogInvalidInput)
	}

	products, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return products, nil
}

func (s *catalogService) PriceRange(ctx context.Context) (PriceRange, error) {
	bounds, err := s.products.PriceRange(ctx)
	if err != nil {
		return PriceRange{}, s.mapRepositoryError(err)
	}
	return bounds, nil
}

// SearchProducts matches product names ignoring case and diacritics, so
// "so tay" finds "Sổ tay". A case-insensitive contains pass runs in the
// database first; the diacritics fold cannot be pushed into the SQL LIKE
// filter, so when that pass comes back empty the candidates are loaded and
// folded in process, capped at the configured limit.
func (s *catalogService) SearchProducts(ctx context.Context, query string) ([]Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Product{}, nil
	}

	direct, err := s.products.Search(ctx, query, s.searchLimit)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	if len(direct) > 0 {
		return direct, nil
	}

	candidates, err := s.products.List(ctx, repositories.ProductListFilter{Sort: repositories.ProductSortNewest})
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}

	matches := make([]Product, 0, s.searchLimit)
	for _, product := range candidates {
		if !textutil.ContainsFold(product.Name, query) {
			continue
		}
		matches = append(matches, product)
		if len(matches) >= s.searchLimit {
			break
		}
	}
	return matches, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]Category, error) {
	categories, err := s.categories.ListRoots(ctx)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return categories, nil
}

func (s *catalogService) CategoryByName(ctx context.Context, name string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, fmt.Errorf("%w: category name is required", ErrCatalogInvalidInput)
	}
	category, err := s.categories.FindByName(ctx, name)
	if err != nil {
		return Category{}, s.mapRepositoryError(err)
	}
	return category, nil
}

func (s *catalogService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrCatalogNotFound, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("catalog: repository unavailable: %w", err)
		}
	}

	return err
}

func validateProduct(cmd UpsertProductCommand) error {
	if strings.TrimSpace(cmd.Name) == "" {
		return fmt.Errorf("%w: product name is required", ErrCatalogInvalidInput)
	}
	if cmd.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrCatalogInvalidInput)
	}
	if cmd.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrCatalogInvalidInput)
	}
	return nil
}
