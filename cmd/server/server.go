package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"toolnav/cmd"
	"toolnav/internal/api"
	"toolnav/internal/config"
	"toolnav/internal/middleware"
	"toolnav/internal/models"
	"toolnav/internal/repository"
	"toolnav/internal/services"
)

// ServerCmd starts the HTTP API.
var ServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the toolnav HTTP server",
	Long: `Starts the HTTP API: runs database migrations, seeds default
settings and the initial admin account, then serves until interrupted.`,
	RunE: func(command *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	cmd.RootCmd.AddCommand(ServerCmd)
}

func run() error {
	cfg := cmd.Cfg

	logger, err := cmd.NewLogger(cfg.Log.Format, cfg.Server.Debug)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := cmd.OpenDatabase(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := cmd.CloseDatabase(db); err != nil {
			logger.Warn("close database", zap.Error(err))
		}
	}()

	if err := db.AutoMigrate(
		&models.Category{},
		&models.Link{},
		&models.Tag{},
		&models.User{},
		&models.Favorite{},
		&models.ClickRecord{},
		&models.APIToken{},
		&models.Setting{},
	); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	categoryRepo := repository.NewCategoryRepository(db)
	linkRepo := repository.NewLinkRepository(db)
	tagRepo := repository.NewTagRepository(db)
	userRepo := repository.NewUserRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	timeout := cfg.DBTimeout()
	statsService := services.NewStatsService(
		statsRepo,
		timeout,
		time.Duration(cfg.Stats.CacheTTLSeconds)*time.Second,
		cfg.Stats.PopularLimit,
	)
	catalogService := services.NewCatalogService(categoryRepo, linkRepo, tagRepo, timeout, statsService)
	orderingService := services.NewOrderingService(categoryRepo, linkRepo, timeout)
	engagementService := services.NewEngagementService(linkRepo, favoriteRepo, timeout, statsService)
	tokenService := services.NewTokenService(tokenRepo, userRepo, timeout)
	authService := services.NewAuthService(userRepo, settingRepo, cfg.Auth.JWTSecret, cfg.Auth.ExpireHours, timeout)
	userService := services.NewUserService(userRepo, timeout)
	settingsService := services.NewSettingsService(settingRepo, timeout)

	if err := seed(settingRepo, userService, cfg, logger); err != nil {
		return err
	}

	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(logger), gin.Recovery())

	handlers := api.NewHandlers(
		catalogService,
		orderingService,
		engagementService,
		statsService,
		tokenService,
		authService,
		userService,
		settingsService,
		logger,
	)
	api.SetupRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// seed installs default settings and, on an empty user table, the
// initial admin account from configuration.
func seed(settings repository.SettingRepository, users *services.UserService, cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DBTimeout())
	defer cancel()

	if err := settings.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}

	existing, err := users.List(ctx)
	if err != nil {
		return fmt.Errorf("check users: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	admin, err := users.Create(ctx, services.UserInput{
		Email:    cfg.Auth.AdminEmail,
		Username: cfg.Auth.AdminUsername,
		Password: cfg.Auth.AdminPassword,
		Role:     models.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("seed admin account: %w", err)
	}
	logger.Info("seeded admin account", zap.String("username", admin.Username))
	return nil
}
