package api

import (
	"github.com/gin-gonic/gin"

	"toolnav/internal/middleware"
)

func (h *Handlers) ListFavoritesHandler(c *gin.Context) {
	links, err := h.engagement.ListFavorites(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, links)
}

func (h *Handlers) FavoriteHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.engagement.Favorite(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, "favorited", nil)
}

func (h *Handlers) UnfavoriteHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.engagement.Unfavorite(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, "unfavorited", nil)
}

// ToggleFavoriteHandler flips the favorite state and returns where it
// landed, so clients need no separate read.
func (h *Handlers) ToggleFavoriteHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	favorited, err := h.engagement.ToggleFavorite(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, gin.H{"favorited": favorited})
}

func (h *Handlers) IsFavoritedHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	favorited, err := h.engagement.IsFavorited(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, gin.H{"favorited": favorited})
}
