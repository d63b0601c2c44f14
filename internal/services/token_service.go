package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	apperrors "toolnav/internal/errors"
	"toolnav/internal/models"
	"toolnav/internal/repository"
)

// secretBytes gives 256 bits of entropy per token secret.
const secretBytes = 32

// TokenService issues and validates long-lived API tokens. The secret
// is handed out exactly once at creation; only its sha256 is stored, so
// a leaked database cannot mint valid credentials.
type TokenService struct {
	tokens  repository.TokenRepository
	users   repository.UserRepository
	timeout time.Duration
}

func NewTokenService(tokens repository.TokenRepository, users repository.UserRepository, timeout time.Duration) *TokenService {
	return &TokenService{tokens: tokens, users: users, timeout: timeout}
}

// CreatedToken pairs the persisted token with its one-time plaintext.
type CreatedToken struct {
	Token  *models.APIToken `json:"token"`
	Secret string           `json:"secret"`
}

// Create mints a token for the given user. The returned Secret is the
// only copy that will ever exist in plaintext.
func (s *TokenService) Create(ctx context.Context, name string, userID uint, expiresAt *time.Time) (*CreatedToken, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()

	if name == "" {
		return nil, apperrors.Validation("token name is required")
	}
	if expiresAt != nil && !expiresAt.After(time.Now()) {
		return nil, apperrors.Validation("token expiry must be in the future")
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, storeError(err, "user not found")
	}

	secret, err := generateSecret()
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	token := models.APIToken{
		Name:       name,
		SecretHash: hashSecret(secret),
		UserID:     userID,
		ExpiresAt:  expiresAt,
		Active:     true,
	}
	if err := s.tokens.Create(ctx, &token); err != nil {
		return nil, storeError(err, "")
	}
	return &CreatedToken{Token: &token, Secret: secret}, nil
}

// Validate accepts a presented secret and returns its token when it is
// active and unexpired. Every rejection is the same Unauthorized — the
// caller cannot tell a missing token from an expired or deactivated
// one. A successful validation touches last_used_at best-effort; a
// failed touch never fails the validation.
func (s *TokenService) Validate(ctx context.Context, secret string) (*models.APIToken, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()

	token, err := s.tokens.GetByHash(ctx, hashSecret(secret))
	if err != nil {
		if isNotFoundStore(err) {
			return nil, apperrors.Unauthorized("invalid token")
		}
		return nil, storeError(err, "")
	}
	if !token.IsValid() {
		return nil, apperrors.Unauthorized("invalid token")
	}

	_ = s.tokens.TouchLastUsed(ctx, token.ID, time.Now())
	return token, nil
}

// TokenUpdate carries the mutable token fields; nil means keep.
type TokenUpdate struct {
	Name      *string    `json:"name"`
	Active    *bool      `json:"active"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// Update mutates name, active flag or expiry. The secret is immutable;
// a lost secret means a new token.
func (s *TokenService) Update(ctx context.Context, id uint, update TokenUpdate) (*models.APIToken, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()

	token, err := s.tokens.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "token not found")
	}
	if update.Name != nil {
		if *update.Name == "" {
			return nil, apperrors.Validation("token name is required")
		}
		token.Name = *update.Name
	}
	if update.Active != nil {
		token.Active = *update.Active
	}
	if update.ExpiresAt != nil {
		token.ExpiresAt = update.ExpiresAt
	}
	if err := s.tokens.Update(ctx, token); err != nil {
		return nil, storeError(err, "token not found")
	}
	return token, nil
}

func (s *TokenService) Delete(ctx context.Context, id uint) error {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()
	return storeError(s.tokens.Delete(ctx, id), "token not found")
}

func (s *TokenService) Get(ctx context.Context, id uint) (*models.APIToken, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()
	token, err := s.tokens.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "token not found")
	}
	return token, nil
}

func (s *TokenService) List(ctx context.Context, filter repository.TokenFilter) ([]models.APIToken, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()
	tokens, err := s.tokens.List(ctx, filter)
	if err != nil {
		return nil, storeError(err, "")
	}
	return tokens, nil
}

func generateSecret() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating token secret: %w", err)
	}
	return models.SecretPrefix + hex.EncodeToString(buf), nil
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
