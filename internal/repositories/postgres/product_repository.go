package postgres

import (
	"context"
	"strings"

	"gorm.io/gorm"

	domain "github.com/paperloft/api/internal/domain"
	"github.com/paperloft/api/internal/repositories"
)

// ProductRepository persists catalog entries in the products table.
type ProductRepository struct {
	registry *Registry
}

func (r *ProductRepository) Insert(ctx context.Context, product domain.Product) (domain.Product, error) {
	model := productFromDomain(product)
	if err := r.registry.conn(ctx).Create(&model).Error; err != nil {
		return domain.Product{}, mapError("products.insert", err)
	}
	return model.toDomain(), nil
}

func (r *ProductRepository) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	model := productFromDomain(product)
	result := r.registry.conn(ctx).
		Model(&productModel{}).
		Where("id = ?", model.ID).
		Select("Name", "Price", "Quantity", "Description", "ImageURL", "CategoryID").
		Updates(&model)
	if result.Error != nil {
		return domain.Product{}, mapError("products.update", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.Product{}, repositories.NewError("products.update", repositories.ErrorKindNotFound, "product not found", nil)
	}
	return r.FindByID(ctx, model.ID)
}

func (r *ProductRepository) Delete(ctx context.Context, productID string) error {
	result := r.registry.conn(ctx).Delete(&productModel{}, "id = ?", productID)
	if result.Error != nil {
		return mapError("products.delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.NewError("products.delete", repositories.ErrorKindNotFound, "product not found", nil)
	}
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	var model productModel
	if err := r.registry.conn(ctx).First(&model, "id = ?", productID).Error; err != nil {
		return domain.Product{}, mapError("products.find", err)
	}
	return model.toDomain(), nil
}

func (r *ProductRepository) List(ctx context.Context, filter repositories.ProductListFilter) ([]domain.Product, error) {
	query := r.registry.conn(ctx).Model(&productModel{})

	if name := strings.TrimSpace(filter.NameContains); name != "" {
		query = query.Where("name ILIKE ?", "%"+name+"%")
	}
	if filter.Price.Min != nil {
		query = query.Where("price >= ?", *filter.Price.Min)
	}
	if filter.Price.Max != nil {
		query = query.Where("price <= ?", *filter.Price.Max)
	}

	switch filter.Sort {
	case repositories.ProductSortPriceAsc:
		query = query.Order("price ASC")
	case repositories.ProductSortPriceDesc:
		query = query.Order("price DESC")
	default:
		query = query.Order("created_at DESC")
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var models []productModel
	if err := query.Find(&models).Error; err != nil {
		return nil, mapError("products.list", err)
	}
	products := make([]domain.Product, 0, len(models))
	for _, model := range models {
		products = append(products, model.toDomain())
	}
	return products, nil
}

func (r *ProductRepository) PriceRange(ctx context.Context) (domain.PriceRange, error) {
	var bounds struct {
		Min int64
		Max int64
	}
	err := r.registry.conn(ctx).
		Model(&productModel{}).
		Select("COALESCE(MIN(price), 0) AS min, COALESCE(MAX(price), 0) AS max").
		Scan(&bounds).Error
	if err != nil {
		return domain.PriceRange{}, mapError("products.price_range", err)
	}
	return domain.PriceRange{Min: bounds.Min, Max: bounds.Max}, nil
}

func (r *ProductRepository) Search(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, nil
	}
	db := r.registry.conn(ctx).
		Model(&productModel{}).
		Where("name ILIKE ?", "%"+trimmed+"%").
		Order("name ASC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	var models []productModel
	if err := db.Find(&models).Error; err != nil {
		return nil, mapError("products.search", err)
	}
	products := make([]domain.Product, 0, len(models))
	for _, model := range models {
		products = append(products, model.toDomain())
	}
	return products, nil
}

// AdjustQuantity applies delta to the stock counter in a single conditional
// UPDATE so concurrent orders can never drive the quantity below zero.
func (r *ProductRepository) AdjustQuantity(ctx context.Context, productID string, delta int) error {
	result := r.registry.conn(ctx).
		Model(&productModel{}).
		Where("id = ?", productID).
		Where("quantity + ? >= 0", delta).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if result.Error != nil {
		return mapError("products.adjust_quantity", result.Error)
	}
	if result.RowsAffected == 0 {
		// Zero rows means either a missing product or insufficient stock.
		var count int64
		if err := r.registry.conn(ctx).Model(&productModel{}).Where("id = ?", productID).Count(&count).Error; err != nil {
			return mapError("products.adjust_quantity", err)
		}
		if count == 0 {
			return repositories.NewError("products.adjust_quantity", repositories.ErrorKindNotFound, "product not found", nil)
		}
		return repositories.NewError("products.adjust_quantity", repositories.ErrorKindConflict, "insufficient stock", nil)
	}
	return nil
}

var _ repositories.ProductRepository = (*ProductRepository)(nil)
