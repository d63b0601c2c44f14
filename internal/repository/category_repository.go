package repository

import (
	"context"

	"gorm.io/gorm"

	"toolnav/internal/models"
)

// CategoryRepository defines data access for categories, including the
// ordering primitives used by the ordering engine.
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	List(ctx context.Context, activeOnly bool) ([]models.Category, error)
	CountLinks(ctx context.Context, id uint) (int64, error)
	MaxSortOrder(ctx context.Context) (int, error)
	SwapWithNeighbor(ctx context.Context, id uint, up bool) (bool, error)
}

// GormCategoryRepository implements CategoryRepository with GORM.
type GormCategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

func (r *GormCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *GormCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

// Delete removes the category and closes the sort_order gap it leaves,
// keeping the remaining sequence dense.
func (r *GormCategoryRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Category{}, id).Error; err != nil {
			return err
		}
		return tx.Model(&models.Category{}).
			Where("sort_order > ?", category.SortOrder).
			UpdateColumn("sort_order", gorm.Expr("sort_order - 1")).Error
	})
}

func (r *GormCategoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *GormCategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *GormCategoryRepository) List(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	var categories []models.Category
	query := r.db.WithContext(ctx).Order("sort_order")
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	if err := query.Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *GormCategoryRepository) CountLinks(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Link{}).Where("category_id = ?", id).Count(&count).Error
	return count, err
}

func (r *GormCategoryRepository) MaxSortOrder(ctx context.Context) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&models.Category{}).
		Select("COALESCE(MAX(sort_order), 0)").Scan(&max).Error
	return max, err
}

// SwapWithNeighbor swaps the category's sort_order with its positional
// neighbor among active categories, inside one transaction. It returns
// false when the category already sits at the boundary; that is a no-op
// success, not an error. Inactive categories are skipped entirely.
func (r *GormCategoryRepository) SwapWithNeighbor(ctx context.Context, id uint, up bool) (bool, error) {
	moved := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, id).Error; err != nil {
			return err
		}

		neighborQuery := tx.Where("active = ?", true)
		if up {
			neighborQuery = neighborQuery.Where("sort_order < ?", category.SortOrder).Order("sort_order DESC")
		} else {
			neighborQuery = neighborQuery.Where("sort_order > ?", category.SortOrder).Order("sort_order ASC")
		}

		var neighbor models.Category
		if err := neighborQuery.First(&neighbor).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil // boundary, nothing to do
			}
			return err
		}

		if err := tx.Model(&models.Category{}).Where("id = ?", category.ID).
			Update("sort_order", neighbor.SortOrder).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Category{}).Where("id = ?", neighbor.ID).
			Update("sort_order", category.SortOrder).Error; err != nil {
			return err
		}
		moved = true
		return nil
	})
	return moved, err
}
