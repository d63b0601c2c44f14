package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"toolnav/internal/models"
)

// StatsRepository exposes the read-only aggregate queries behind the
// stats aggregator.
type StatsRepository interface {
	CountLinks(ctx context.Context, status string) (int64, error)
	CountCategories(ctx context.Context, activeOnly bool) (int64, error)
	CountTags(ctx context.Context) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
	TotalClicks(ctx context.Context) (int64, error)
	ClicksSince(ctx context.Context, since time.Time) (int64, error)
	PopularLinks(ctx context.Context, limit int) ([]models.Link, error)
}

// GormStatsRepository implements StatsRepository with GORM.
type GormStatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *GormStatsRepository {
	return &GormStatsRepository{db: db}
}

// CountLinks counts links, optionally restricted to one status.
func (r *GormStatsRepository) CountLinks(ctx context.Context, status string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Link{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *GormStatsRepository) CountCategories(ctx context.Context, activeOnly bool) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Category{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *GormStatsRepository) CountTags(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Tag{}).Count(&count).Error
	return count, err
}

func (r *GormStatsRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

// TotalClicks sums click_count over all links, so the total reflects
// exactly the increments applied by click recording.
func (r *GormStatsRepository) TotalClicks(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Link{}).
		Select("COALESCE(SUM(click_count), 0)").Scan(&total).Error
	return total, err
}

func (r *GormStatsRepository) ClicksSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ClickRecord{}).
		Where("created_at >= ?", since).Count(&count).Error
	return count, err
}

// PopularLinks returns the top active links by click_count, ties broken
// by ascending id.
func (r *GormStatsRepository) PopularLinks(ctx context.Context, limit int) ([]models.Link, error) {
	var links []models.Link
	err := r.db.WithContext(ctx).
		Where("status = ?", models.LinkStatusActive).
		Order("click_count DESC").Order("id ASC").
		Limit(limit).
		Find(&links).Error
	return links, err
}
