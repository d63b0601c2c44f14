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

func newTestAuth(t *testing.T, db *gorm.DB) *AuthService {
	t.Helper()
	return NewAuthService(
		repository.NewUserRepository(db),
		repository.NewSettingRepository(db),
		"test-secret",
		24,
		testTimeout,
	)
}

func TestLoginIssuesParsableSession(t *testing.T) {
	db := newTestDB(t)
	auth := newTestAuth(t, db)
	user := mustUser(t, db, "alice", models.RoleAdmin)

	session, err := auth.Login(context.Background(), "alice", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
	assert.Equal(t, user.ID, session.User.ID)

	claims, err := auth.ParseSession(session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestLoginRejectionsAreUniform(t *testing.T) {
	db := newTestDB(t)
	auth := newTestAuth(t, db)
	user := mustUser(t, db, "alice", models.RoleUser)

	_, err := auth.Login(context.Background(), "alice", "wrong-password")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
	wrongPassword := apperrors.MessageOf(err)

	_, err = auth.Login(context.Background(), "nobody", "secret123")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Equal(t, wrongPassword, apperrors.MessageOf(err))

	// A deactivated account fails the same way.
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("active", false).Error)
	_, err = auth.Login(context.Background(), "alice", "secret123")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Equal(t, wrongPassword, apperrors.MessageOf(err))
}

func TestRegisterRespectsSetting(t *testing.T) {
	db := newTestDB(t)
	auth := newTestAuth(t, db)
	settings := repository.NewSettingRepository(db)
	require.NoError(t, settings.SeedDefaults(context.Background()))

	session, err := auth.Register(context.Background(), "bob@example.com", "bob", "secret123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, session.User.Role)
	assert.NotEmpty(t, session.Token)

	require.NoError(t, settings.Upsert(context.Background(), "enable_registration", "false"))
	_, err = auth.Register(context.Background(), "carol@example.com", "carol", "secret123")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
}

func TestRegisterDuplicateIsConflict(t *testing.T) {
	db := newTestDB(t)
	auth := newTestAuth(t, db)

	_, err := auth.Register(context.Background(), "bob@example.com", "bob", "secret123")
	require.NoError(t, err)

	_, err = auth.Register(context.Background(), "bob@example.com", "bob2", "secret123")
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	_, err = auth.Register(context.Background(), "other@example.com", "bob", "secret123")
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestRegisterValidation(t *testing.T) {
	db := newTestDB(t)
	auth := newTestAuth(t, db)

	cases := []struct {
		name     string
		email    string
		username string
		password string
	}{
		{"bad email", "not-an-email", "bob", "secret123"},
		{"short username", "bob@example.com", "bo", "secret123"},
		{"short password", "bob@example.com", "bob", "12345"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := auth.Register(context.Background(), tc.email, tc.username, tc.password)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
		})
	}
}

func TestParseSessionRejectsTampering(t *testing.T) {
	db := newTestDB(t)
	auth := newTestAuth(t, db)
	mustUser(t, db, "alice", models.RoleUser)

	session, err := auth.Login(context.Background(), "alice", "secret123")
	require.NoError(t, err)

	_, err = auth.ParseSession(session.Token + "x")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))

	// A token signed with a different secret is rejected too.
	other := NewAuthService(
		repository.NewUserRepository(db),
		repository.NewSettingRepository(db),
		"other-secret",
		24,
		testTimeout,
	)
	foreign, err := other.Login(context.Background(), "alice", "secret123")
	require.NoError(t, err)
	_, err = auth.ParseSession(foreign.Token)
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
}
