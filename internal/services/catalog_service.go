package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "toolnav/internal/errors"
	"toolnav/internal/models"
	"toolnav/internal/repository"
)

// CatalogService owns category, link and tag integrity: uniqueness,
// URL validity, referential checks and the delete policies.
type CatalogService struct {
	categories repository.CategoryRepository
	links      repository.LinkRepository
	tags       repository.TagRepository
	timeout    time.Duration
	cache      CacheInvalidator
}

func NewCatalogService(
	categories repository.CategoryRepository,
	links repository.LinkRepository,
	tags repository.TagRepository,
	timeout time.Duration,
	cache CacheInvalidator,
) *CatalogService {
	if cache == nil {
		cache = noopInvalidator{}
	}
	return &CatalogService{
		categories: categories,
		links:      links,
		tags:       tags,
		timeout:    timeout,
		cache:      cache,
	}
}

// CategoryInput carries the writable category fields.
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	Active      *bool  `json:"active"`
}

// LinkInput carries the writable link fields. Nil TagNames keeps the
// current tag set on update; a non-nil slice replaces it.
type LinkInput struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	CategoryID  uint     `json:"category_id"`
	Status      string   `json:"status"`
	TagNames    []string `json:"tag_names"`
}

// TagInput carries the writable tag fields.
type TagInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// CreateCategory appends a new category at the end of the ordering.
func (s *CatalogService) CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.Validation("category name is required")
	}
	if _, err := s.categories.GetByName(ctx, name); err == nil {
		return nil, apperrors.Conflict("category name %q already exists", name)
	} else if !isNotFoundStore(err) {
		return nil, storeError(err, "")
	}

	max, err := s.categories.MaxSortOrder(ctx)
	if err != nil {
		return nil, storeError(err, "")
	}

	category := models.Category{
		Name:        name,
		Description: input.Description,
		Icon:        input.Icon,
		Color:       input.Color,
		SortOrder:   max + 1,
		Active:      true,
	}
	if input.Active != nil {
		category.Active = *input.Active
	}
	if err := s.categories.Create(ctx, &category); err != nil {
		return nil, storeError(err, "")
	}
	s.cache.Invalidate()
	return &category, nil
}

// UpdateCategory mutates display fields and the active flag. Empty
// input fields keep the current value; sort_order is never touched
// here, that belongs to the ordering engine.
func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, input CategoryInput) (*models.Category, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()

	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "category not found")
	}

	if name := strings.TrimSpace(input.Name); name != "" && name != category.Name {
		if _, err := s.categories.GetByName(ctx, name); err == nil {
			return nil, apperrors.Conflict("category name %q already exists", name)
		} else if !isNotFoundStore(err) {
			return nil, storeError(err, "")
		}
		category.Name = name
	}
	if input.Description != "" {
		category.Description = input.Description
	}
	if input.Icon != "" {
		category.Icon = input.Icon
	}
	if input.Color != "" {
		category.Color = input.Color
	}
	if input.Active != nil {
		category.Active = *input.Active
	}

	if err := s.categories.Update(ctx, category); err != nil {
		return nil, storeError(err, "category not found")
	}
	s.cache.Invalidate()
	return category, nil
}

// DeleteCategory refuses to delete a category that still owns links:
// deletion never cascades, the caller must reassign them first.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()

	if _, err := s.categories.GetByID(ctx, id); err != nil {
		return storeError(err, "category not found")
	}
	count, err := s.categories.CountLinks(ctx, id)
	if err != nil {
		return storeError(err, "")
	}
	if count > 0 {
		return apperrors.Conflict("category still owns %d link(s), reassign or delete them first", count)
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return storeError(err, "category not found")
	}
	s.cache.Invalidate()
	return nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "category not found")
	}
	return category, nil
}

func (s *CatalogService) ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()
	categories, err := s.categories.List(ctx, activeOnly)
	if err != nil {
		return nil, storeError(err, "")
	}
	return categories, nil
}

// CreateLink validates the URL and category reference, resolves the tag
// names and appends the link at the end of its category.
func (s *CatalogService) CreateLink(ctx context.Context, input LinkInput) (*models.Link, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.Validation("link title is required")
	}
	if err := validateLinkURL(input.URL); err != nil {
		return nil, err
	}
	status := input.Status
	if status == "" {
		status = models.LinkStatusActive
	}
	if !validLinkStatus(status) {
		return nil, apperrors.Validation("invalid link status %q", status)
	}

	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		return nil, storeError(err, "category not found")
	}
	if _, err := s.links.GetByTitle(ctx, title); err == nil {
		return nil, apperrors.Conflict("link title %q already exists", title)
	} else if !isNotFoundStore(err) {
		return nil, storeError(err, "")
	}

	max, err := s.links.MaxSortOrder(ctx, input.CategoryID)
	if err != nil {
		return nil, storeError(err, "")
	}

	link := models.Link{
		Title:       title,
		URL:         input.URL,
		Description: input.Description,
		Icon:        input.Icon,
		Status:      status,
		CategoryID:  input.CategoryID,
		SortOrder:   max + 1,
	}
	if err := s.links.Create(ctx, &link); err != nil {
		return nil, storeError(err, "")
	}

	if len(input.TagNames) > 0 {
		tags, err := s.resolveTags(ctx, input.TagNames)
		if err != nil {
			return nil, err
		}
		if err := s.links.ReplaceTags(ctx, &link, tags); err != nil {
			return nil, storeError(err, "")
		}
	}

	s.cache.Invalidate()
	return s.GetLink(ctx, link.ID)
}

// UpdateLink applies partial updates; empty fields keep current values.
func (s *CatalogService) UpdateLink(ctx context.Context, id uint, input LinkInput) (*models.Link, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()

	link, err := s.links.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "link not found")
	}

	if title := strings.TrimSpace(input.Title); title != "" && title != link.Title {
		if _, err := s.links.GetByTitle(ctx, title); err == nil {
			return nil, apperrors.Conflict("link title %q already exists", title)
		} else if !isNotFoundStore(err) {
			return nil, storeError(err, "")
		}
		link.Title = title
	}
	if input.URL != "" {
		if err := validateLinkURL(input.URL); err != nil {
			return nil, err
		}
		link.URL = input.URL
	}
	if input.Description != "" {
		link.Description = input.Description
	}
	if input.Icon != "" {
		link.Icon = input.Icon
	}
	if input.Status != "" {
		if !validLinkStatus(input.Status) {
			return nil, apperrors.Validation("invalid link status %q", input.Status)
		}
		link.Status = input.Status
	}
	if input.CategoryID != 0 && input.CategoryID != link.CategoryID {
		if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
			return nil, storeError(err, "category not found")
		}
		max, err := s.links.MaxSortOrder(ctx, input.CategoryID)
		if err != nil {
			return nil, storeError(err, "")
		}
		link.CategoryID = input.CategoryID
		link.SortOrder = max + 1
	}

	if err := s.links.Update(ctx, link); err != nil {
		return nil, storeError(err, "link not found")
	}

	if input.TagNames != nil {
		tags, err := s.resolveTags(ctx, input.TagNames)
		if err != nil {
			return nil, err
		}
		if err := s.links.ReplaceTags(ctx, link, tags); err != nil {
			return nil, storeError(err, "")
		}
	}

	s.cache.Invalidate()
	return s.GetLink(ctx, link.ID)
}

// DeleteLink removes the link with its favorites and tag associations.
func (s *CatalogService) DeleteLink(ctx context.Context, id uint) error {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()
	if err := s.links.Delete(ctx, id); err != nil {
		return storeError(err, "link not found")
	}
	s.cache.Invalidate()
	return nil
}

func (s *CatalogService) GetLink(ctx context.Context, id uint) (*models.Link, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()
	link, err := s.links.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "link not found")
	}
	return link, nil
}

func (s *CatalogService) ListLinks(ctx context.Context, filter repository.LinkFilter) ([]models.Link, int64, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()
	links, total, err := s.links.List(ctx, filter)
	if err != nil {
		return nil, 0, storeError(err, "")
	}
	return links, total, nil
}

// RelatedLinks returns other active links from the same category,
// busiest first.
func (s *CatalogService) RelatedLinks(ctx context.Context, id uint, limit int) ([]models.Link, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()
	link, err := s.links.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "link not found")
	}
	related, err := s.links.Related(ctx, link, limit)
	if err != nil {
		return nil, storeError(err, "")
	}
	return related, nil
}

// AttachTags associates the named tags with a link, creating missing
// tags on the fly. Submitted names are deduplicated; matching is exact
// and case-sensitive, so "Ops" and "ops" are two different tags.
func (s *CatalogService) AttachTags(ctx context.Context, linkID uint, names []string) (*models.Link, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()

	link, err := s.links.GetByID(ctx, linkID)
	if err != nil {
		return nil, storeError(err, "link not found")
	}
	tags, err := s.resolveTags(ctx, names)
	if err != nil {
		return nil, err
	}

	existing := make(map[uint]bool, len(link.Tags))
	merged := link.Tags
	for _, tag := range link.Tags {
		existing[tag.ID] = true
	}
	for _, tag := range tags {
		if !existing[tag.ID] {
			merged = append(merged, tag)
		}
	}
	if err := s.links.ReplaceTags(ctx, link, merged); err != nil {
		return nil, storeError(err, "")
	}
	return s.GetLink(ctx, linkID)
}

// DetachTag removes one tag association from a link; the tag itself
// survives.
func (s *CatalogService) DetachTag(ctx context.Context, linkID uint, name string) (*models.Link, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()

	link, err := s.links.GetByID(ctx, linkID)
	if err != nil {
		return nil, storeError(err, "link not found")
	}
	kept := make([]models.Tag, 0, len(link.Tags))
	for _, tag := range link.Tags {
		if tag.Name != name {
			kept = append(kept, tag)
		}
	}
	if err := s.links.ReplaceTags(ctx, link, kept); err != nil {
		return nil, storeError(err, "")
	}
	return s.GetLink(ctx, linkID)
}

func (s *CatalogService) CreateTag(ctx context.Context, input TagInput) (*models.Tag, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.Validation("tag name is required")
	}
	if _, err := s.tags.GetByName(ctx, name); err == nil {
		return nil, apperrors.Conflict("tag name %q already exists", name)
	} else if !isNotFoundStore(err) {
		return nil, storeError(err, "")
	}

	tag := models.Tag{Name: name, Color: input.Color}
	if err := s.tags.Create(ctx, &tag); err != nil {
		return nil, storeError(err, "")
	}
	s.cache.Invalidate()
	return &tag, nil
}

func (s *CatalogService) UpdateTag(ctx context.Context, id uint, input TagInput) (*models.Tag, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()

	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "tag not found")
	}
	if name := strings.TrimSpace(input.Name); name != "" && name != tag.Name {
		if _, err := s.tags.GetByName(ctx, name); err == nil {
			return nil, apperrors.Conflict("tag name %q already exists", name)
		} else if !isNotFoundStore(err) {
			return nil, storeError(err, "")
		}
		tag.Name = name
	}
	if input.Color != "" {
		tag.Color = input.Color
	}
	if err := s.tags.Update(ctx, tag); err != nil {
		return nil, storeError(err, "tag not found")
	}
	return tag, nil
}

// DeleteTag removes the tag and its associations; tagged links stay.
func (s *CatalogService) DeleteTag(ctx context.Context, id uint) error {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()
	if err := s.tags.Delete(ctx, id); err != nil {
		return storeError(err, "tag not found")
	}
	s.cache.Invalidate()
	return nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()
	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "tag not found")
	}
	return tag, nil
}

func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, storeError(err, "")
	}
	return tags, nil
}

// resolveTags deduplicates the submitted names (first occurrence wins)
// and upserts each one by exact name.
func (s *CatalogService) resolveTags(ctx context.Context, names []string) ([]models.Tag, error) {
	seen := make(map[string]bool, len(names))
	tags := make([]models.Tag, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		tag, err := s.tags.FindOrCreateByName(ctx, name)
		if err != nil {
			return nil, storeError(err, "")
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

func validateLinkURL(raw string) error {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return apperrors.Validation("link url must be a well-formed absolute URL")
	}
	return nil
}

func validLinkStatus(status string) bool {
	switch status {
	case models.LinkStatusActive, models.LinkStatusInactive, models.LinkStatusError:
		return true
	}
	return false
}

// isNotFoundStore reports whether a repository read came back empty, as
// opposed to failing.
func isNotFoundStore(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
