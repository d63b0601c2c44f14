package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "toolnav/internal/errors"
	"toolnav/internal/models"
	"toolnav/internal/repository"
)

func newTestUsers(t *testing.T, db *gorm.DB) *UserService {
	t.Helper()
	return NewUserService(repository.NewUserRepository(db), testTimeout)
}

func TestCreateUserValidatesRole(t *testing.T) {
	db := newTestDB(t)
	users := newTestUsers(t, db)

	_, err := users.Create(context.Background(), UserInput{
		Email: "a@example.com", Username: "alice", Password: "secret123", Role: "superuser",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	user, err := users.Create(context.Background(), UserInput{
		Email: "a@example.com", Username: "alice", Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "secret123", user.PasswordHash)
}

func TestUpdateUserConflicts(t *testing.T) {
	db := newTestDB(t)
	users := newTestUsers(t, db)
	mustUser(t, db, "alice", models.RoleUser)
	bob := mustUser(t, db, "bob", models.RoleUser)

	_, err := users.Update(context.Background(), bob.ID, UserInput{Username: "alice"})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	_, err = users.Update(context.Background(), bob.ID, UserInput{Email: "alice@example.com"})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	renamed, err := users.Update(context.Background(), bob.ID, UserInput{Username: "robert"})
	require.NoError(t, err)
	assert.Equal(t, "robert", renamed.Username)
}

func TestLastAdminCannotBeRemoved(t *testing.T) {
	db := newTestDB(t)
	users := newTestUsers(t, db)
	admin := mustUser(t, db, "root", models.RoleAdmin)
	mustUser(t, db, "alice", models.RoleUser)

	err := users.Delete(context.Background(), admin.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	_, err = users.Update(context.Background(), admin.ID, UserInput{Role: models.RoleUser})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	// With a second admin both operations pass.
	second := mustUser(t, db, "root2", models.RoleAdmin)
	_, err = users.Update(context.Background(), second.ID, UserInput{Role: models.RoleUser})
	require.NoError(t, err)
	require.Error(t, users.Delete(context.Background(), admin.ID))

	mustUser(t, db, "root3", models.RoleAdmin)
	require.NoError(t, users.Delete(context.Background(), admin.ID))
}

func TestDeleteUserDropsFavoritesAndTokens(t *testing.T) {
	db := newTestDB(t)
	users := newTestUsers(t, db)
	catalog := newTestCatalog(t, db)
	engagement := newTestEngagement(t, db)
	tokens := newTestTokens(t, db)

	user := mustUser(t, db, "alice", models.RoleUser)
	category := mustCategory(t, catalog, "Dev Tools")
	link := mustLink(t, catalog, "grafana", category.ID)

	require.NoError(t, engagement.Favorite(context.Background(), user.ID, link.ID))
	_, err := tokens.Create(context.Background(), "ci", user.ID, nil)
	require.NoError(t, err)

	require.NoError(t, users.Delete(context.Background(), user.ID))

	var favorites, apiTokens int64
	require.NoError(t, db.Model(&models.Favorite{}).Count(&favorites).Error)
	require.NoError(t, db.Model(&models.APIToken{}).Count(&apiTokens).Error)
	assert.Zero(t, favorites)
	assert.Zero(t, apiTokens)
}
