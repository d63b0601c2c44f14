package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"toolnav/internal/middleware"
	"toolnav/internal/repository"
	"toolnav/internal/services"
)

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondValidation(c, "invalid id")
		return 0, false
	}
	return uint(id), true
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// ListCategoriesHandler returns the active categories in display order.
func (h *Handlers) ListCategoriesHandler(c *gin.Context) {
	categories, err := h.ordering.OrderedCategories(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, categories)
}

func (h *Handlers) GetCategoryHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	category, err := h.catalog.GetCategory(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, category)
}

type linkPage struct {
	Items    any   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

// ListLinksHandler serves the public link listing. Only active links
// are visible here; the admin listing exposes every status.
func (h *Handlers) ListLinksHandler(c *gin.Context) {
	filter := repository.LinkFilter{
		Search:     c.Query("search"),
		CategoryID: uint(intQuery(c, "category_id", 0)),
		TagName:    c.Query("tag"),
		ActiveOnly: true,
		Page:       intQuery(c, "page", 1),
		PageSize:   intQuery(c, "page_size", 0),
	}
	links, total, err := h.catalog.ListLinks(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, linkPage{Items: links, Total: total, Page: filter.Page, PageSize: filter.PageSize})
}

func (h *Handlers) GetLinkHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	link, err := h.catalog.GetLink(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, link)
}

func (h *Handlers) RelatedLinksHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	links, err := h.catalog.RelatedLinks(c.Request.Context(), id, intQuery(c, "limit", 5))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, links)
}

func (h *Handlers) GetTagHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	tag, err := h.catalog.GetTag(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, tag)
}

func (h *Handlers) ListTagsHandler(c *gin.Context) {
	tags, err := h.catalog.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, tags)
}

// OverviewHandler serves the public aggregate counters.
func (h *Handlers) OverviewHandler(c *gin.Context) {
	overview, err := h.stats.Overview(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, overview)
}

// PublicSettingsHandler exposes only the whitelisted settings.
func (h *Handlers) PublicSettingsHandler(c *gin.Context) {
	values, err := h.settings.Public(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, values)
}

// ClickHandler counts one visit. Every call counts; there is no
// per-user or per-IP dedup beyond the rate limiter in front.
func (h *Handlers) ClickHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	meta := services.ClickContext{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Referer:   c.Request.Referer(),
	}
	if userID := middleware.UserID(c); userID != 0 {
		meta.UserID = &userID
	}
	if err := h.engagement.RecordClick(c.Request.Context(), id, meta); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, "click recorded", nil)
}
