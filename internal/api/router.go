package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"toolnav/internal/config"
	"toolnav/internal/middleware"
	"toolnav/internal/services"
)

// Handlers bundles the services the HTTP layer delegates to.
type Handlers struct {
	catalog    *services.CatalogService
	ordering   *services.OrderingService
	engagement *services.EngagementService
	stats      *services.StatsService
	tokens     *services.TokenService
	auth       *services.AuthService
	users      *services.UserService
	settings   *services.SettingsService
	logger     *zap.Logger
}

func NewHandlers(
	catalog *services.CatalogService,
	ordering *services.OrderingService,
	engagement *services.EngagementService,
	stats *services.StatsService,
	tokens *services.TokenService,
	auth *services.AuthService,
	users *services.UserService,
	settings *services.SettingsService,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		catalog:    catalog,
		ordering:   ordering,
		engagement: engagement,
		stats:      stats,
		tokens:     tokens,
		auth:       auth,
		users:      users,
		settings:   settings,
		logger:     logger,
	}
}

// SetupRoutes wires the whole route table: public catalog reads, the
// click endpoint (rate limited), session auth, per-user favorites, and
// the admin surface.
func SetupRoutes(router *gin.Engine, h *Handlers, cfg *config.Config) {
	router.GET("/health", HealthCheckHandler)

	v1 := router.Group("/api/v1")

	// Public, read-only surface.
	v1.GET("/categories", h.ListCategoriesHandler)
	v1.GET("/categories/:id", h.GetCategoryHandler)
	v1.GET("/links", h.ListLinksHandler)
	v1.GET("/links/:id", h.GetLinkHandler)
	v1.GET("/links/:id/related", h.RelatedLinksHandler)
	v1.GET("/tags", h.ListTagsHandler)
	v1.GET("/tags/:id", h.GetTagHandler)
	v1.GET("/stats", h.OverviewHandler)
	v1.GET("/settings", h.PublicSettingsHandler)

	// Clicks accept anonymous traffic but attribute authenticated
	// callers when a credential is present.
	click := v1.Group("")
	click.Use(middleware.OptionalAuth(h.auth, h.tokens))
	if cfg.RateLimiter.Enabled {
		limiter := middleware.NewIPRateLimiter(
			cfg.RateLimiter.MaxRequests,
			cfg.RateLimiter.WindowMinutes,
			h.logger,
		)
		click.Use(middleware.RateLimit(limiter))
	}
	click.POST("/links/:id/click", h.ClickHandler)

	v1.POST("/auth/login", h.LoginHandler)
	v1.POST("/auth/register", h.RegisterHandler)

	// Authenticated surface.
	authed := v1.Group("")
	authed.Use(middleware.Auth(h.auth, h.tokens))
	authed.GET("/auth/me", h.MeHandler)
	authed.POST("/auth/logout", h.LogoutHandler)
	authed.GET("/favorites", h.ListFavoritesHandler)
	authed.POST("/favorites/:id", h.FavoriteHandler)
	authed.DELETE("/favorites/:id", h.UnfavoriteHandler)
	authed.POST("/favorites/:id/toggle", h.ToggleFavoriteHandler)
	authed.GET("/links/:id/favorited", h.IsFavoritedHandler)

	// Admin surface.
	admin := v1.Group("/admin")
	admin.Use(middleware.Auth(h.auth, h.tokens), middleware.AdminOnly())

	admin.GET("/categories", h.AdminListCategoriesHandler)
	admin.POST("/categories", h.CreateCategoryHandler)
	admin.PUT("/categories/:id", h.UpdateCategoryHandler)
	admin.DELETE("/categories/:id", h.DeleteCategoryHandler)
	admin.POST("/categories/:id/move-up", h.MoveCategoryUpHandler)
	admin.POST("/categories/:id/move-down", h.MoveCategoryDownHandler)

	admin.POST("/links", h.CreateLinkHandler)
	admin.PUT("/links/:id", h.UpdateLinkHandler)
	admin.DELETE("/links/:id", h.DeleteLinkHandler)
	admin.POST("/links/:id/move-up", h.MoveLinkUpHandler)
	admin.POST("/links/:id/move-down", h.MoveLinkDownHandler)
	admin.POST("/links/:id/tags", h.AttachTagsHandler)
	admin.DELETE("/links/:id/tags/:name", h.DetachTagHandler)

	admin.POST("/tags", h.CreateTagHandler)
	admin.PUT("/tags/:id", h.UpdateTagHandler)
	admin.DELETE("/tags/:id", h.DeleteTagHandler)

	admin.GET("/users", h.ListUsersHandler)
	admin.POST("/users", h.CreateUserHandler)
	admin.GET("/users/:id", h.GetUserHandler)
	admin.PUT("/users/:id", h.UpdateUserHandler)
	admin.DELETE("/users/:id", h.DeleteUserHandler)

	admin.GET("/tokens", h.ListTokensHandler)
	admin.POST("/tokens", h.CreateTokenHandler)
	admin.GET("/tokens/:id", h.GetTokenHandler)
	admin.PUT("/tokens/:id", h.UpdateTokenHandler)
	admin.DELETE("/tokens/:id", h.DeleteTokenHandler)

	admin.GET("/settings", h.AllSettingsHandler)
	admin.PUT("/settings", h.UpdateSettingsHandler)
	admin.GET("/dashboard", h.DashboardHandler)
}

// HealthCheckHandler reports process liveness.
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
