package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "toolnav/internal/errors"
	"toolnav/internal/models"
)

func TestRecordClickIsAdditive(t *testing.T) {
	db := newTestDB(t)
	catalog := newTestCatalog(t, db)
	engagement := newTestEngagement(t, db)

	category := mustCategory(t, catalog, "Dev Tools")
	link := mustLink(t, catalog, "grafana", category.ID)

	for i := 0; i < 5; i++ {
		require.NoError(t, engagement.RecordClick(context.Background(), link.ID, ClickContext{
			IPAddress: "10.0.0.1",
			UserAgent: "test-agent",
		}))
	}

	var reloaded models.Link
	require.NoError(t, db.First(&reloaded, link.ID).Error)
	assert.EqualValues(t, 5, reloaded.ClickCount)

	var records int64
	require.NoError(t, db.Model(&models.ClickRecord{}).Where("link_id = ?", link.ID).Count(&records).Error)
	assert.EqualValues(t, 5, records)
}

func TestRecordClickCountsInactiveLinks(t *testing.T) {
	db := newTestDB(t)
	catalog := newTestCatalog(t, db)
	engagement := newTestEngagement(t, db)

	category := mustCategory(t, catalog, "Dev Tools")
	link := mustLink(t, catalog, "grafana", category.ID)
	_, err := catalog.UpdateLink(context.Background(), link.ID, LinkInput{Status: models.LinkStatusInactive})
	require.NoError(t, err)

	require.NoError(t, engagement.RecordClick(context.Background(), link.ID, ClickContext{}))

	var reloaded models.Link
	require.NoError(t, db.First(&reloaded, link.ID).Error)
	assert.EqualValues(t, 1, reloaded.ClickCount)
}

func TestRecordClickUnknownLink(t *testing.T) {
	db := newTestDB(t)
	engagement := newTestEngagement(t, db)

	err := engagement.RecordClick(context.Background(), 42, ClickContext{})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	var records int64
	require.NoError(t, db.Model(&models.ClickRecord{}).Count(&records).Error)
	assert.Zero(t, records)
}

func TestFavoriteIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	catalog := newTestCatalog(t, db)
	engagement := newTestEngagement(t, db)

	category := mustCategory(t, catalog, "Dev Tools")
	link := mustLink(t, catalog, "grafana", category.ID)
	user := mustUser(t, db, "alice", models.RoleUser)

	require.NoError(t, engagement.Favorite(context.Background(), user.ID, link.ID))
	// Second call is a no-op, not a conflict.
	require.NoError(t, engagement.Favorite(context.Background(), user.ID, link.ID))

	var count int64
	require.NoError(t, db.Model(&models.Favorite{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	favorited, err := engagement.IsFavorited(context.Background(), user.ID, link.ID)
	require.NoError(t, err)
	assert.True(t, favorited)
}

func TestFavoriteUnknownLink(t *testing.T) {
	db := newTestDB(t)
	engagement := newTestEngagement(t, db)
	user := mustUser(t, db, "alice", models.RoleUser)

	err := engagement.Favorite(context.Background(), user.ID, 42)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUnfavoriteAbsentIsNoOp(t *testing.T) {
	db := newTestDB(t)
	catalog := newTestCatalog(t, db)
	engagement := newTestEngagement(t, db)

	category := mustCategory(t, catalog, "Dev Tools")
	link := mustLink(t, catalog, "grafana", category.ID)
	user := mustUser(t, db, "alice", models.RoleUser)

	require.NoError(t, engagement.Unfavorite(context.Background(), user.ID, link.ID))

	require.NoError(t, engagement.Favorite(context.Background(), user.ID, link.ID))
	require.NoError(t, engagement.Unfavorite(context.Background(), user.ID, link.ID))

	favorited, err := engagement.IsFavorited(context.Background(), user.ID, link.ID)
	require.NoError(t, err)
	assert.False(t, favorited)
}

func TestToggleFavoriteReturnsResultingState(t *testing.T) {
	db := newTestDB(t)
	catalog := newTestCatalog(t, db)
	engagement := newTestEngagement(t, db)

	category := mustCategory(t, catalog, "Dev Tools")
	link := mustLink(t, catalog, "grafana", category.ID)
	user := mustUser(t, db, "alice", models.RoleUser)

	state, err := engagement.ToggleFavorite(context.Background(), user.ID, link.ID)
	require.NoError(t, err)
	assert.True(t, state)

	state, err = engagement.ToggleFavorite(context.Background(), user.ID, link.ID)
	require.NoError(t, err)
	assert.False(t, state)
}

func TestListFavoritesIsPerUser(t *testing.T) {
	db := newTestDB(t)
	catalog := newTestCatalog(t, db)
	engagement := newTestEngagement(t, db)

	category := mustCategory(t, catalog, "Dev Tools")
	a := mustLink(t, catalog, "grafana", category.ID)
	b := mustLink(t, catalog, "jaeger", category.ID)
	alice := mustUser(t, db, "alice", models.RoleUser)
	bob := mustUser(t, db, "bob", models.RoleUser)

	require.NoError(t, engagement.Favorite(context.Background(), alice.ID, b.ID))
	require.NoError(t, engagement.Favorite(context.Background(), alice.ID, a.ID))
	require.NoError(t, engagement.Favorite(context.Background(), bob.ID, a.ID))

	links, err := engagement.ListFavorites(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, links, 2)
	// Stable order: ascending link id.
	assert.Equal(t, "grafana", links[0].Title)
	assert.Equal(t, "jaeger", links[1].Title)

	links, err = engagement.ListFavorites(context.Background(), bob.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
}
