package repository

import (
	"context"

	"gorm.io/gorm"

	"toolnav/internal/models"
)

// FavoriteRepository defines data access for per-user link favorites.
type FavoriteRepository interface {
	Create(ctx context.Context, userID, linkID uint) error
	Delete(ctx context.Context, userID, linkID uint) (int64, error)
	Exists(ctx context.Context, userID, linkID uint) (bool, error)
	ListLinks(ctx context.Context, userID uint) ([]models.Link, error)
}

// GormFavoriteRepository implements FavoriteRepository with GORM. The
// unique index on (user_id, link_id) is the race guard: a duplicate
// insert fails with gorm.ErrDuplicatedKey and the caller treats that as
// "already favorited".
type GormFavoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) *GormFavoriteRepository {
	return &GormFavoriteRepository{db: db}
}

func (r *GormFavoriteRepository) Create(ctx context.Context, userID, linkID uint) error {
	favorite := models.Favorite{UserID: userID, LinkID: linkID}
	return r.db.WithContext(ctx).Create(&favorite).Error
}

// Delete removes the favorite and reports how many rows went away, so
// the caller can tell a flip from a no-op.
func (r *GormFavoriteRepository) Delete(ctx context.Context, userID, linkID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND link_id = ?", userID, linkID).
		Delete(&models.Favorite{})
	return result.RowsAffected, result.Error
}

func (r *GormFavoriteRepository) Exists(ctx context.Context, userID, linkID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND link_id = ?", userID, linkID).
		Count(&count).Error
	return count > 0, err
}

// ListLinks returns the user's favorited links in ascending link id,
// the documented stable order.
func (r *GormFavoriteRepository) ListLinks(ctx context.Context, userID uint) ([]models.Link, error) {
	var links []models.Link
	err := r.db.WithContext(ctx).
		Joins("JOIN favorites ON favorites.link_id = links.id").
		Where("favorites.user_id = ?", userID).
		Preload("Category").Preload("Tags").
		Order("links.id").
		Find(&links).Error
	return links, err
}
