package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"toolnav/internal/models"
)

// TokenFilter narrows API token listings.
type TokenFilter struct {
	UserID uint
	Active *bool
}

// TokenRepository defines data access for API tokens.
type TokenRepository interface {
	Create(ctx context.Context, token *models.APIToken) error
	Update(ctx context.Context, token *models.APIToken) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*models.APIToken, error)
	GetByHash(ctx context.Context, hash string) (*models.APIToken, error)
	List(ctx context.Context, filter TokenFilter) ([]models.APIToken, error)
	TouchLastUsed(ctx context.Context, id uint, at time.Time) error
}

// GormTokenRepository implements TokenRepository with GORM.
type GormTokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *GormTokenRepository {
	return &GormTokenRepository{db: db}
}

func (r *GormTokenRepository) Create(ctx context.Context, token *models.APIToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *GormTokenRepository) Update(ctx context.Context, token *models.APIToken) error {
	return r.db.WithContext(ctx).Save(token).Error
}

func (r *GormTokenRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.APIToken{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormTokenRepository) GetByID(ctx context.Context, id uint) (*models.APIToken, error) {
	var token models.APIToken
	if err := r.db.WithContext(ctx).Preload("User").First(&token, id).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *GormTokenRepository) GetByHash(ctx context.Context, hash string) (*models.APIToken, error) {
	var token models.APIToken
	if err := r.db.WithContext(ctx).Preload("User").
		Where("secret_hash = ?", hash).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *GormTokenRepository) List(ctx context.Context, filter TokenFilter) ([]models.APIToken, error) {
	query := r.db.WithContext(ctx).Preload("User").Order("created_at DESC")
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	var tokens []models.APIToken
	if err := query.Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

// TouchLastUsed records token usage. Callers treat a failure here as
// best-effort bookkeeping, never as a validation failure.
func (r *GormTokenRepository) TouchLastUsed(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.APIToken{}).
		Where("id = ?", id).
		UpdateColumn("last_used_at", at).Error
}
