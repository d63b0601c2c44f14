package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"toolnav/internal/config"
	"toolnav/internal/models"
	"toolnav/internal/repository"
	"toolnav/internal/services"
)

type testServer struct {
	router     *gin.Engine
	db         *gorm.DB
	catalog    *services.CatalogService
	engagement *services.EngagementService
	tokens     *services.TokenService
	users      *services.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
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

	categoryRepo := repository.NewCategoryRepository(db)
	linkRepo := repository.NewLinkRepository(db)
	tagRepo := repository.NewTagRepository(db)
	userRepo := repository.NewUserRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	require.NoError(t, settingRepo.SeedDefaults(context.Background()))

	timeout := 5 * time.Second
	stats := services.NewStatsService(statsRepo, timeout, time.Second, 5)
	catalog := services.NewCatalogService(categoryRepo, linkRepo, tagRepo, timeout, stats)
	ordering := services.NewOrderingService(categoryRepo, linkRepo, timeout)
	engagement := services.NewEngagementService(linkRepo, favoriteRepo, timeout, stats)
	tokens := services.NewTokenService(tokenRepo, userRepo, timeout)
	auth := services.NewAuthService(userRepo, settingRepo, "test-secret", 24, timeout)
	users := services.NewUserService(userRepo, timeout)
	settings := services.NewSettingsService(settingRepo, timeout)

	handlers := NewHandlers(catalog, ordering, engagement, stats, tokens, auth, users, settings, zap.NewNop())

	cfg := &config.Config{}
	cfg.RateLimiter.Enabled = false

	router := gin.New()
	SetupRoutes(router, handlers, cfg)

	return &testServer{
		router:     router,
		db:         db,
		catalog:    catalog,
		engagement: engagement,
		tokens:     tokens,
		users:      users,
	}
}

func (s *testServer) request(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, req)
	return recorder
}

func decodeEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) Response {
	t.Helper()
	var envelope Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	_, err := s.users.Create(context.Background(), services.UserInput{
		Email:    "root@example.com",
		Username: "root",
		Password: "secret123",
		Role:     models.RoleAdmin,
	})
	require.NoError(t, err)
	return s.login(t, "root", "secret123")
}

func (s *testServer) userToken(t *testing.T, username string) string {
	t.Helper()
	_, err := s.users.Create(context.Background(), services.UserInput{
		Email:    username + "@example.com",
		Username: username,
		Password: "secret123",
	})
	require.NoError(t, err)
	return s.login(t, username, "secret123")
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	recorder := s.request(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	envelope := decodeEnvelope(t, recorder)
	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	token, ok := data["token"].(string)
	require.True(t, ok)
	return token
}

func TestHealthCheck(t *testing.T) {
	server := newTestServer(t)
	recorder := server.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"status":"ok"}`, recorder.Body.String())
}

func TestEnvelopeShapes(t *testing.T) {
	server := newTestServer(t)

	recorder := server.request(t, http.MethodGet, "/api/v1/categories", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	assert.Zero(t, envelope.Code)
	assert.Equal(t, "success", envelope.Message)

	recorder = server.request(t, http.MethodGet, "/api/v1/links/999", "", nil)
	require.Equal(t, http.StatusNotFound, recorder.Code)
	envelope = decodeEnvelope(t, recorder)
	assert.Equal(t, http.StatusNotFound, envelope.Code)
	assert.NotEmpty(t, envelope.Message)
}

func TestAuthRequiredForProtectedRoutes(t *testing.T) {
	server := newTestServer(t)

	recorder := server.request(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = server.request(t, http.MethodGet, "/api/v1/auth/me", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestAdminRoutesRejectPlainUsers(t *testing.T) {
	server := newTestServer(t)
	token := server.userToken(t, "alice")

	recorder := server.request(t, http.MethodPost, "/api/v1/admin/categories", token, gin.H{
		"name": "Dev Tools",
	})
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestLoginAndMe(t *testing.T) {
	server := newTestServer(t)
	token := server.userToken(t, "alice")

	recorder := server.request(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	envelope := decodeEnvelope(t, recorder)
	data := envelope.Data.(map[string]any)
	assert.Equal(t, "alice", data["username"])
	// The password hash never serializes.
	assert.NotContains(t, data, "password_hash")
}

func TestAdminCategoryLifecycle(t *testing.T) {
	server := newTestServer(t)
	token := server.adminToken(t)

	recorder := server.request(t, http.MethodPost, "/api/v1/admin/categories", token, gin.H{
		"name": "Dev Tools",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)
	created := decodeEnvelope(t, recorder).Data.(map[string]any)
	id := uint(created["id"].(float64))
	assert.Equal(t, float64(1), created["sort_order"])

	recorder = server.request(t, http.MethodPost, "/api/v1/admin/categories", token, gin.H{
		"name": "Dev Tools",
	})
	assert.Equal(t, http.StatusConflict, recorder.Code)

	recorder = server.request(t, http.MethodGet, "/api/v1/categories", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = server.request(t, http.MethodDelete,
		"/api/v1/admin/categories/"+itoa(id), token, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestMoveEndpointsReportBoundary(t *testing.T) {
	server := newTestServer(t)
	token := server.adminToken(t)

	category, err := server.catalog.CreateCategory(context.Background(),
		services.CategoryInput{Name: "Solo"})
	require.NoError(t, err)

	recorder := server.request(t, http.MethodPost,
		"/api/v1/admin/categories/"+itoa(category.ID)+"/move-up", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	data := decodeEnvelope(t, recorder).Data.(map[string]any)
	assert.Equal(t, false, data["moved"])
}

func TestClickEndpointIsAnonymous(t *testing.T) {
	server := newTestServer(t)

	category, err := server.catalog.CreateCategory(context.Background(),
		services.CategoryInput{Name: "Dev Tools"})
	require.NoError(t, err)
	link, err := server.catalog.CreateLink(context.Background(), services.LinkInput{
		Title: "grafana", URL: "https://example.com", CategoryID: category.ID,
	})
	require.NoError(t, err)

	recorder := server.request(t, http.MethodPost,
		"/api/v1/links/"+itoa(link.ID)+"/click", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var reloaded models.Link
	require.NoError(t, server.db.First(&reloaded, link.ID).Error)
	assert.EqualValues(t, 1, reloaded.ClickCount)

	// An unknown link yields the not-found envelope, not a counter.
	recorder = server.request(t, http.MethodPost, "/api/v1/links/999/click", "", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestClickAttributesAuthenticatedUser(t *testing.T) {
	server := newTestServer(t)
	token := server.userToken(t, "alice")

	category, err := server.catalog.CreateCategory(context.Background(),
		services.CategoryInput{Name: "Dev Tools"})
	require.NoError(t, err)
	link, err := server.catalog.CreateLink(context.Background(), services.LinkInput{
		Title: "grafana", URL: "https://example.com", CategoryID: category.ID,
	})
	require.NoError(t, err)

	recorder := server.request(t, http.MethodPost,
		"/api/v1/links/"+itoa(link.ID)+"/click", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var record models.ClickRecord
	require.NoError(t, server.db.First(&record).Error)
	require.NotNil(t, record.UserID)
}

func TestAPITokenAuthenticates(t *testing.T) {
	server := newTestServer(t)
	user, err := server.users.Create(context.Background(), services.UserInput{
		Email:    "machine@example.com",
		Username: "machine",
		Password: "secret123",
	})
	require.NoError(t, err)

	created, err := server.tokens.Create(context.Background(), "ci", user.ID, nil)
	require.NoError(t, err)

	recorder := server.request(t, http.MethodGet, "/api/v1/auth/me", created.Secret, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	data := decodeEnvelope(t, recorder).Data.(map[string]any)
	assert.Equal(t, "machine", data["username"])

	// Deactivating the account kills the token path as well.
	inactive := false
	_, err = server.users.Update(context.Background(), user.ID, services.UserInput{Active: &inactive})
	require.NoError(t, err)
	recorder = server.request(t, http.MethodGet, "/api/v1/auth/me", created.Secret, nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestFavoritesFlow(t *testing.T) {
	server := newTestServer(t)
	token := server.userToken(t, "alice")

	category, err := server.catalog.CreateCategory(context.Background(),
		services.CategoryInput{Name: "Dev Tools"})
	require.NoError(t, err)
	link, err := server.catalog.CreateLink(context.Background(), services.LinkInput{
		Title: "grafana", URL: "https://example.com", CategoryID: category.ID,
	})
	require.NoError(t, err)

	recorder := server.request(t, http.MethodPost,
		"/api/v1/favorites/"+itoa(link.ID), token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = server.request(t, http.MethodGet, "/api/v1/favorites", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	items := decodeEnvelope(t, recorder).Data.([]any)
	assert.Len(t, items, 1)

	recorder = server.request(t, http.MethodPost,
		"/api/v1/favorites/"+itoa(link.ID)+"/toggle", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	data := decodeEnvelope(t, recorder).Data.(map[string]any)
	assert.Equal(t, false, data["favorited"])
}

func TestRegistrationSettingGatesEndpoint(t *testing.T) {
	server := newTestServer(t)

	recorder := server.request(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email": "bob@example.com", "username": "bob", "password": "secret123",
	})
	assert.Equal(t, http.StatusCreated, recorder.Code)

	require.NoError(t, repository.NewSettingRepository(server.db).
		Upsert(context.Background(), "enable_registration", "false"))

	recorder = server.request(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email": "carol@example.com", "username": "carol", "password": "secret123",
	})
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestPublicSettingsEndpointFilters(t *testing.T) {
	server := newTestServer(t)

	recorder := server.request(t, http.MethodGet, "/api/v1/settings", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	data := decodeEnvelope(t, recorder).Data.(map[string]any)
	assert.Contains(t, data, "site_name")
	assert.NotContains(t, data, "enable_link_check")
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
