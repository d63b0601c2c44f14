package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"toolnav/internal/repository"
	"toolnav/internal/services"
)

// --- categories ---

func (h *Handlers) AdminListCategoriesHandler(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context(), false)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, categories)
}

func (h *Handlers) CreateCategoryHandler(c *gin.Context) {
	var input services.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, "invalid request body")
		return
	}
	category, err := h.catalog.CreateCategory(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondCreated(c, "category created", category)
}

func (h *Handlers) UpdateCategoryHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input services.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, "invalid request body")
		return
	}
	category, err := h.catalog.UpdateCategory(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, category)
}

func (h *Handlers) DeleteCategoryHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, "category deleted", nil)
}

// moveResponse reports whether a reorder actually happened; a move at
// the boundary is a no-op, not an error.
type moveResponse struct {
	Moved bool `json:"moved"`
}

func (h *Handlers) MoveCategoryUpHandler(c *gin.Context) {
	h.moveCategory(c, h.ordering.MoveCategoryUp)
}

func (h *Handlers) MoveCategoryDownHandler(c *gin.Context) {
	h.moveCategory(c, h.ordering.MoveCategoryDown)
}

func (h *Handlers) moveCategory(c *gin.Context, move func(ctx context.Context, id uint) (bool, error)) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	moved, err := move(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, moveResponse{Moved: moved})
}

// --- links ---

func (h *Handlers) CreateLinkHandler(c *gin.Context) {
	var input services.LinkInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, "invalid request body")
		return
	}
	link, err := h.catalog.CreateLink(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondCreated(c, "link created", link)
}

func (h *Handlers) UpdateLinkHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input services.LinkInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, "invalid request body")
		return
	}
	link, err := h.catalog.UpdateLink(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, link)
}

func (h *Handlers) DeleteLinkHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteLink(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, "link deleted", nil)
}

func (h *Handlers) MoveLinkUpHandler(c *gin.Context) {
	h.moveLink(c, h.ordering.MoveLinkUp)
}

func (h *Handlers) MoveLinkDownHandler(c *gin.Context) {
	h.moveLink(c, h.ordering.MoveLinkDown)
}

func (h *Handlers) moveLink(c *gin.Context, move func(ctx context.Context, id uint) (bool, error)) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	moved, err := move(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, moveResponse{Moved: moved})
}

type attachTagsRequest struct {
	Names []string `json:"names" binding:"required"`
}

func (h *Handlers) AttachTagsHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req attachTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "names are required")
		return
	}
	link, err := h.catalog.AttachTags(c.Request.Context(), id, req.Names)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, link)
}

func (h *Handlers) DetachTagHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	link, err := h.catalog.DetachTag(c.Request.Context(), id, c.Param("name"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, link)
}

// --- tags ---

func (h *Handlers) CreateTagHandler(c *gin.Context) {
	var input services.TagInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, "invalid request body")
		return
	}
	tag, err := h.catalog.CreateTag(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondCreated(c, "tag created", tag)
}

func (h *Handlers) UpdateTagHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input services.TagInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, "invalid request body")
		return
	}
	tag, err := h.catalog.UpdateTag(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, tag)
}

func (h *Handlers) DeleteTagHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteTag(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, "tag deleted", nil)
}

// --- users ---

func (h *Handlers) ListUsersHandler(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, users)
}

func (h *Handlers) CreateUserHandler(c *gin.Context) {
	var input services.UserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, "invalid request body")
		return
	}
	user, err := h.users.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondCreated(c, "user created", user)
}

func (h *Handlers) GetUserHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, user)
}

func (h *Handlers) UpdateUserHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input services.UserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, "invalid request body")
		return
	}
	user, err := h.users.Update(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, user)
}

func (h *Handlers) DeleteUserHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, "user deleted", nil)
}

// --- api tokens ---

type createTokenRequest struct {
	Name      string     `json:"name" binding:"required"`
	UserID    uint       `json:"user_id" binding:"required"`
	ExpiresAt *time.Time `json:"expires_at"`
}

func (h *Handlers) CreateTokenHandler(c *gin.Context) {
	var req createTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "name and user_id are required")
		return
	}
	created, err := h.tokens.Create(c.Request.Context(), req.Name, req.UserID, req.ExpiresAt)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	// The plaintext secret appears here and never again.
	respondCreated(c, "token created", created)
}

func (h *Handlers) ListTokensHandler(c *gin.Context) {
	filter := repository.TokenFilter{UserID: uint(intQuery(c, "user_id", 0))}
	if raw := c.Query("active"); raw != "" {
		active := raw == "true"
		filter.Active = &active
	}
	tokens, err := h.tokens.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, tokens)
}

func (h *Handlers) GetTokenHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	token, err := h.tokens.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, token)
}

func (h *Handlers) UpdateTokenHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var update services.TokenUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondValidation(c, "invalid request body")
		return
	}
	token, err := h.tokens.Update(c.Request.Context(), id, update)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, token)
}

func (h *Handlers) DeleteTokenHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.tokens.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, "token deleted", nil)
}

// --- settings and dashboard ---

func (h *Handlers) AllSettingsHandler(c *gin.Context) {
	values, err := h.settings.All(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, values)
}

func (h *Handlers) UpdateSettingsHandler(c *gin.Context) {
	var values map[string]string
	if err := c.ShouldBindJSON(&values); err != nil {
		respondValidation(c, "invalid request body")
		return
	}
	if err := h.settings.Update(c.Request.Context(), values); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, "settings updated", nil)
}

func (h *Handlers) DashboardHandler(c *gin.Context) {
	dashboard, popular, err := h.stats.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, gin.H{"stats": dashboard, "popular_links": popular})
}
