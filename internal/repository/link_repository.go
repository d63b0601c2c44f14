package repository

import (
	"context"

	"gorm.io/gorm"

	"toolnav/internal/models"
)

// LinkFilter narrows List results. Zero values mean "no filter".
type LinkFilter struct {
	Search     string
	CategoryID uint
	Status     string
	TagName    string
	ActiveOnly bool
	Page       int
	PageSize   int
}

// LinkRepository defines data access for links, their tag associations
// and the click-recording primitive.
type LinkRepository interface {
	Create(ctx context.Context, link *models.Link) error
	Update(ctx context.Context, link *models.Link) error
	ReplaceTags(ctx context.Context, link *models.Link, tags []models.Tag) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*models.Link, error)
	GetByTitle(ctx context.Context, title string) (*models.Link, error)
	List(ctx context.Context, filter LinkFilter) ([]models.Link, int64, error)
	Related(ctx context.Context, link *models.Link, limit int) ([]models.Link, error)
	MaxSortOrder(ctx context.Context, categoryID uint) (int, error)
	SwapWithNeighbor(ctx context.Context, id uint, up bool) (bool, error)
	RecordClick(ctx context.Context, record *models.ClickRecord) error
}

// GormLinkRepository implements LinkRepository with GORM.
type GormLinkRepository struct {
	db *gorm.DB
}

func NewLinkRepository(db *gorm.DB) *GormLinkRepository {
	return &GormLinkRepository{db: db}
}

func (r *GormLinkRepository) Create(ctx context.Context, link *models.Link) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *GormLinkRepository) Update(ctx context.Context, link *models.Link) error {
	return r.db.WithContext(ctx).Omit("Tags", "Category").Save(link).Error
}

func (r *GormLinkRepository) ReplaceTags(ctx context.Context, link *models.Link, tags []models.Tag) error {
	return r.db.WithContext(ctx).Model(link).Association("Tags").Replace(tags)
}

// Delete removes the link together with its favorites and tag
// associations in one transaction, then closes the sort_order gap
// inside its category.
func (r *GormLinkRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var link models.Link
		if err := tx.First(&link, id).Error; err != nil {
			return err
		}
		if err := tx.Where("link_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&link).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Delete(&models.Link{}, id).Error; err != nil {
			return err
		}
		return tx.Model(&models.Link{}).
			Where("category_id = ? AND sort_order > ?", link.CategoryID, link.SortOrder).
			UpdateColumn("sort_order", gorm.Expr("sort_order - 1")).Error
	})
}

func (r *GormLinkRepository) GetByID(ctx context.Context, id uint) (*models.Link, error) {
	var link models.Link
	if err := r.db.WithContext(ctx).Preload("Category").Preload("Tags").First(&link, id).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *GormLinkRepository) GetByTitle(ctx context.Context, title string) (*models.Link, error) {
	var link models.Link
	if err := r.db.WithContext(ctx).Where("title = ?", title).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *GormLinkRepository) List(ctx context.Context, filter LinkFilter) ([]models.Link, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Link{})

	if filter.ActiveOnly {
		query = query.Where("links.status = ?", models.LinkStatusActive)
	} else if filter.Status != "" {
		query = query.Where("links.status = ?", filter.Status)
	}
	if filter.CategoryID != 0 {
		query = query.Where("links.category_id = ?", filter.CategoryID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("links.title LIKE ? OR links.description LIKE ? OR links.url LIKE ?",
			pattern, pattern, pattern)
	}
	if filter.TagName != "" {
		query = query.Joins("JOIN link_tags ON link_tags.link_id = links.id").
			Joins("JOIN tags ON tags.id = link_tags.tag_id").
			Where("tags.name = ?", filter.TagName)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var links []models.Link
	if err := query.Preload("Category").Preload("Tags").
		Order("links.sort_order").Order("links.id").Find(&links).Error; err != nil {
		return nil, 0, err
	}
	return links, total, nil
}

func (r *GormLinkRepository) Related(ctx context.Context, link *models.Link, limit int) ([]models.Link, error) {
	var links []models.Link
	err := r.db.WithContext(ctx).
		Where("category_id = ? AND id != ? AND status = ?", link.CategoryID, link.ID, models.LinkStatusActive).
		Order("click_count DESC").Order("id").
		Limit(limit).
		Find(&links).Error
	return links, err
}

func (r *GormLinkRepository) MaxSortOrder(ctx context.Context, categoryID uint) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&models.Link{}).
		Where("category_id = ?", categoryID).
		Select("COALESCE(MAX(sort_order), 0)").Scan(&max).Error
	return max, err
}

// SwapWithNeighbor swaps the link's sort_order with its neighbor inside
// the same category, in one transaction. Returns false at a boundary.
func (r *GormLinkRepository) SwapWithNeighbor(ctx context.Context, id uint, up bool) (bool, error) {
	moved := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var link models.Link
		if err := tx.First(&link, id).Error; err != nil {
			return err
		}

		neighborQuery := tx.Where("category_id = ?", link.CategoryID)
		if up {
			neighborQuery = neighborQuery.Where("sort_order < ?", link.SortOrder).Order("sort_order DESC")
		} else {
			neighborQuery = neighborQuery.Where("sort_order > ?", link.SortOrder).Order("sort_order ASC")
		}

		var neighbor models.Link
		if err := neighborQuery.First(&neighbor).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}

		if err := tx.Model(&models.Link{}).Where("id = ?", link.ID).
			Update("sort_order", neighbor.SortOrder).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Link{}).Where("id = ?", neighbor.ID).
			Update("sort_order", link.SortOrder).Error; err != nil {
			return err
		}
		moved = true
		return nil
	})
	return moved, err
}

// RecordClick increments click_count and appends the click record in one
// transaction. The increment runs in SQL so concurrent clicks never
// overwrite each other.
func (r *GormLinkRepository) RecordClick(ctx context.Context, record *models.ClickRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Link{}).Where("id = ?", record.LinkID).
			UpdateColumn("click_count", gorm.Expr("click_count + ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(record).Error
	})
}
