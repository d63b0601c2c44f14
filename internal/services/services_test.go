package services

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"toolnav/internal/models"
	"toolnav/internal/repository"
)

const testTimeout = 5 * time.Second

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Category{},
		&models.Link{},
		&models.Tag{},
		&models.User{},
		&models.Favorite{},
		&models.ClickRecord{},
		&models.APIToken{},
		&models.Setting{},
	))
	return db
}

func newTestCatalog(t *testing.T, db *gorm.DB) *CatalogService {
	t.Helper()
	return NewCatalogService(
		repository.NewCategoryRepository(db),
		repository.NewLinkRepository(db),
		repository.NewTagRepository(db),
		testTimeout,
		nil,
	)
}

func newTestOrdering(t *testing.T, db *gorm.DB) *OrderingService {
	t.Helper()
	return NewOrderingService(
		repository.NewCategoryRepository(db),
		repository.NewLinkRepository(db),
		testTimeout,
	)
}

func newTestEngagement(t *testing.T, db *gorm.DB) *EngagementService {
	t.Helper()
	return NewEngagementService(
		repository.NewLinkRepository(db),
		repository.NewFavoriteRepository(db),
		testTimeout,
		nil,
	)
}

func mustCategory(t *testing.T, catalog *CatalogService, name string) *models.Category {
	t.Helper()
	category, err := catalog.CreateCategory(context.Background(), CategoryInput{Name: name})
	require.NoError(t, err)
	return category
}

func mustLink(t *testing.T, catalog *CatalogService, title string, categoryID uint, tags ...string) *models.Link {
	t.Helper()
	link, err := catalog.CreateLink(context.Background(), LinkInput{
		Title:      title,
		URL:        "https://example.com/" + title,
		CategoryID: categoryID,
		TagNames:   tags,
	})
	require.NoError(t, err)
	return link
}

func linkFilter(categoryID uint, search, tag string) repository.LinkFilter {
	return repository.LinkFilter{CategoryID: categoryID, Search: search, TagName: tag}
}

func mustUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()
	users := NewUserService(repository.NewUserRepository(db), testTimeout)
	user, err := users.Create(context.Background(), UserInput{
		Email:    username + "@example.com",
		Username: username,
		Password: "secret123",
		Role:     role,
	})
	require.NoError(t, err)
	return user
}
