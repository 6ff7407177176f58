package postgres

import (
	"context"

	domain "github.com/paperloft/api/internal/domain"
	"github.com/paperloft/api/internal/repositories"
)

// CategoryRepository reads the category tree.
type CategoryRepository struct {
	registry *Registry
}

func (r *CategoryRepository) ListRoots(ctx context.Context) ([]domain.Category, error) {
	var models []categoryModel
	err := r.registry.conn(ctx).
		Where("parent_id IS NULL").
		Preload("Children").
		Order("name ASC").
		Find(&models).Error
	if err != nil {
		return nil, mapError("categories.list_roots", err)
	}
	categories := make([]domain.Category, 0, len(models))
	for _, model := range models {
		categories = append(categories, model.toDomain())
	}
	return categories, nil
}

func (r *CategoryRepository) FindByName(ctx context.Context, name string) (domain.Category, error) {
	var model categoryModel
	err := r.registry.conn(ctx).
		Preload("Children").
		Preload("Products").
		First(&model, "name = ?", name).Error
	if err != nil {
		return domain.Category{}, mapError("categories.find_by_name", err)
	}
	return model.toDomain(), nil
}

var _ repositories.CategoryRepository = (*CategoryRepository)(nil)
