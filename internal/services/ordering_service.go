package services

import (
	"context"
	"time"

	"toolnav/internal/models"
	"toolnav/internal/repository"
)

// OrderingService keeps category and link ordering dense: move-up and
// move-down are atomic adjacent swaps, and a move past the boundary is
// a successful no-op.
type OrderingService struct {
	categories repository.CategoryRepository
	links      repository.LinkRepository
	timeout    time.Duration
}

func NewOrderingService(categories repository.CategoryRepository, links repository.LinkRepository, timeout time.Duration) *OrderingService {
	return &OrderingService{categories: categories, links: links, timeout: timeout}
}

// MoveCategoryUp swaps the category with the active category directly
// above it. Returns whether anything moved.
func (s *OrderingService) MoveCategoryUp(ctx context.Context, id uint) (bool, error) {
	return s.moveCategory(ctx, id, true)
}

// MoveCategoryDown swaps the category with the active category directly
// below it.
func (s *OrderingService) MoveCategoryDown(ctx context.Context, id uint) (bool, error) {
	return s.moveCategory(ctx, id, false)
}

func (s *OrderingService) moveCategory(ctx context.Context, id uint, up bool) (bool, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()
	moved, err := s.categories.SwapWithNeighbor(ctx, id, up)
	if err != nil {
		return false, storeError(err, "category not found")
	}
	return moved, nil
}

// MoveLinkUp swaps the link with its predecessor inside the same
// category.
func (s *OrderingService) MoveLinkUp(ctx context.Context, id uint) (bool, error) {
	return s.moveLink(ctx, id, true)
}

// MoveLinkDown swaps the link with its successor inside the same
// category.
func (s *OrderingService) MoveLinkDown(ctx context.Context, id uint) (bool, error) {
	return s.moveLink(ctx, id, false)
}

func (s *OrderingService) moveLink(ctx context.Context, id uint, up bool) (bool, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()
	moved, err := s.links.SwapWithNeighbor(ctx, id, up)
	if err != nil {
		return false, storeError(err, "link not found")
	}
	return moved, nil
}

// OrderedCategories returns the active categories in display order.
func (s *OrderingService) OrderedCategories(ctx context.Context) ([]models.Category, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()
	categories, err := s.categories.List(ctx, true)
	if err != nil {
		return nil, storeError(err, "")
	}
	return categories, nil
}
