package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"toolnav/internal/models"
	"toolnav/internal/repository"
)

// ClickContext carries the request metadata stored with a click record.
type ClickContext struct {
	UserID    *uint
	IPAddress string
	UserAgent string
	Referer   string
}

// EngagementService records clicks and maintains per-user favorites.
type EngagementService struct {
	links     repository.LinkRepository
	favorites repository.FavoriteRepository
	timeout   time.Duration
	cache     CacheInvalidator
}

func NewEngagementService(
	links repository.LinkRepository,
	favorites repository.FavoriteRepository,
	timeout time.Duration,
	cache CacheInvalidator,
) *EngagementService {
	if cache == nil {
		cache = noopInvalidator{}
	}
	return &EngagementService{links: links, favorites: favorites, timeout: timeout, cache: cache}
}

// RecordClick increments the link's click count by exactly one and
// appends a click record. Every call counts — there is no dedup — and
// inactive or erroring links are tracked the same as active ones.
func (s *EngagementService) RecordClick(ctx context.Context, linkID uint, meta ClickContext) error {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()

	record := models.ClickRecord{
		LinkID:    linkID,
		UserID:    meta.UserID,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Referer:   meta.Referer,
	}
	if err := s.links.RecordClick(ctx, &record); err != nil {
		return storeError(err, "link not found")
	}
	s.cache.Invalidate()
	return nil
}

// Favorite puts the (user, link) pair into the favorited state. It is a
// no-op success when the pair already exists; the unique index resolves
// the create/check race, not a read-then-write.
func (s *EngagementService) Favorite(ctx context.Context, userID, linkID uint) error {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()

	if _, err := s.links.GetByID(ctx, linkID); err != nil {
		return storeError(err, "link not found")
	}
	if err := s.favorites.Create(ctx, userID, linkID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil // already in the target state
		}
		return storeError(err, "")
	}
	s.cache.Invalidate()
	return nil
}

// Unfavorite removes the pair; removing a pair that does not exist is a
// no-op success.
func (s *EngagementService) Unfavorite(ctx context.Context, userID, linkID uint) error {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()

	if _, err := s.favorites.Delete(ctx, userID, linkID); err != nil {
		return storeError(err, "")
	}
	s.cache.Invalidate()
	return nil
}

// ToggleFavorite flips the favorite state and reports the state that
// resulted. Every call flips; callers that need idempotent semantics
// use the explicit Favorite/Unfavorite operations instead.
func (s *EngagementService) ToggleFavorite(ctx context.Context, userID, linkID uint) (bool, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()

	if _, err := s.links.GetByID(ctx, linkID); err != nil {
		return false, storeError(err, "link not found")
	}

	exists, err := s.favorites.Exists(ctx, userID, linkID)
	if err != nil {
		return false, storeError(err, "")
	}

	if exists {
		if _, err := s.favorites.Delete(ctx, userID, linkID); err != nil {
			return false, storeError(err, "")
		}
		s.cache.Invalidate()
		return false, nil
	}

	if err := s.favorites.Create(ctx, userID, linkID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost a race with a concurrent favorite; the pair exists,
			// which is the state this call was moving toward
			return true, nil
		}
		return false, storeError(err, "")
	}
	s.cache.Invalidate()
	return true, nil
}

// IsFavorited reports the current favorite state for the pair.
func (s *EngagementService) IsFavorited(ctx context.Context, userID, linkID uint) (bool, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()
	exists, err := s.favorites.Exists(ctx, userID, linkID)
	if err != nil {
		return false, storeError(err, "")
	}
	return exists, nil
}

// ListFavorites returns every link the user currently has favorited, in
// ascending link id.
func (s *EngagementService) ListFavorites(ctx context.Context, userID uint) ([]models.Link, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()
	links, err := s.favorites.ListLinks(ctx, userID)
	if err != nil {
		return nil, storeError(err, "")
	}
	return links, nil
}
