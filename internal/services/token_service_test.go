package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "toolnav/internal/errors"
	"toolnav/internal/models"
	"toolnav/internal/repository"
)

func newTestTokens(t *testing.T, db *gorm.DB) *TokenService {
	t.Helper()
	return NewTokenService(
		repository.NewTokenRepository(db),
		repository.NewUserRepository(db),
		testTimeout,
	)
}

func TestCreateTokenReturnsSecretOnce(t *testing.T) {
	db := newTestDB(t)
	tokens := newTestTokens(t, db)
	user := mustUser(t, db, "alice", models.RoleUser)

	created, err := tokens.Create(context.Background(), "ci pipeline", user.ID, nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(created.Secret, models.SecretPrefix))
	// Prefix plus 32 random bytes hex-encoded.
	assert.Len(t, created.Secret, len(models.SecretPrefix)+64)

	// The stored row never carries the plaintext.
	var stored models.APIToken
	require.NoError(t, db.First(&stored, created.Token.ID).Error)
	assert.NotEqual(t, created.Secret, stored.SecretHash)
	assert.Len(t, stored.SecretHash, 64)
}

func TestCreateTokenValidation(t *testing.T) {
	db := newTestDB(t)
	tokens := newTestTokens(t, db)
	user := mustUser(t, db, "alice", models.RoleUser)

	_, err := tokens.Create(context.Background(), "", user.ID, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	past := time.Now().Add(-time.Hour)
	_, err = tokens.Create(context.Background(), "expired at birth", user.ID, &past)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = tokens.Create(context.Background(), "orphan", 9999, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestValidateTokenHappyPath(t *testing.T) {
	db := newTestDB(t)
	tokens := newTestTokens(t, db)
	user := mustUser(t, db, "alice", models.RoleUser)

	created, err := tokens.Create(context.Background(), "ci", user.ID, nil)
	require.NoError(t, err)

	token, err := tokens.Validate(context.Background(), created.Secret)
	require.NoError(t, err)
	assert.Equal(t, created.Token.ID, token.ID)
	require.NotNil(t, token.User)
	assert.Equal(t, user.ID, token.User.ID)

	// Validation touches last_used_at.
	var stored models.APIToken
	require.NoError(t, db.First(&stored, token.ID).Error)
	assert.NotNil(t, stored.LastUsedAt)
}

func TestValidateTokenRejectionsAreUniform(t *testing.T) {
	db := newTestDB(t)
	tokens := newTestTokens(t, db)
	user := mustUser(t, db, "alice", models.RoleUser)

	soon := time.Now().Add(50 * time.Millisecond)
	expiring, err := tokens.Create(context.Background(), "short lived", user.ID, &soon)
	require.NoError(t, err)

	deactivated, err := tokens.Create(context.Background(), "switched off", user.ID, nil)
	require.NoError(t, err)
	off := false
	_, err = tokens.Update(context.Background(), deactivated.Token.ID, TokenUpdate{Active: &off})
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)

	// Unknown, expired and deactivated all fail identically; the
	// caller cannot probe which case it hit.
	for _, secret := range []string{
		models.SecretPrefix + strings.Repeat("ab", 32),
		expiring.Secret,
		deactivated.Secret,
	} {
		_, err := tokens.Validate(context.Background(), secret)
		require.Error(t, err)
		assert.True(t, apperrors.IsUnauthorized(err))
		assert.Equal(t, "invalid token", apperrors.MessageOf(err))
	}
}

func TestTokenUpdateAndDelete(t *testing.T) {
	db := newTestDB(t)
	tokens := newTestTokens(t, db)
	user := mustUser(t, db, "alice", models.RoleUser)

	created, err := tokens.Create(context.Background(), "ci", user.ID, nil)
	require.NoError(t, err)

	name := "ci deploy"
	updated, err := tokens.Update(context.Background(), created.Token.ID, TokenUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "ci deploy", updated.Name)

	require.NoError(t, tokens.Delete(context.Background(), created.Token.ID))
	err = tokens.Delete(context.Background(), created.Token.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = tokens.Validate(context.Background(), created.Secret)
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestListTokensFilters(t *testing.T) {
	db := newTestDB(t)
	tokens := newTestTokens(t, db)
	alice := mustUser(t, db, "alice", models.RoleUser)
	bob := mustUser(t, db, "bob", models.RoleUser)

	_, err := tokens.Create(context.Background(), "alice ci", alice.ID, nil)
	require.NoError(t, err)
	created, err := tokens.Create(context.Background(), "bob ci", bob.ID, nil)
	require.NoError(t, err)
	off := false
	_, err = tokens.Update(context.Background(), created.Token.ID, TokenUpdate{Active: &off})
	require.NoError(t, err)

	all, err := tokens.List(context.Background(), repository.TokenFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := tokens.List(context.Background(), repository.TokenFilter{UserID: alice.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "alice ci", mine[0].Name)

	active := true
	live, err := tokens.List(context.Background(), repository.TokenFilter{Active: &active})
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, "alice ci", live[0].Name)
}
