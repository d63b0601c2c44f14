package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "toolnav/internal/errors"
	"toolnav/internal/models"
	"toolnav/internal/repository"
)

// SessionClaims is the JWT payload of an interactive session.
type SessionClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService authenticates users and issues short-lived session
// credentials.
//
// Sessions are stateless HS256 JWTs: there is no server-side revocation
// list, so logout is a client-side discard and a "logged out" credential
// stays technically valid until its expiry window closes.
type AuthService struct {
	users       repository.UserRepository
	settings    repository.SettingRepository
	secret      []byte
	expireHours int
	timeout     time.Duration
}

func NewAuthService(users repository.UserRepository, settings repository.SettingRepository, secret string, expireHours int, timeout time.Duration) *AuthService {
	if expireHours <= 0 {
		expireHours = 24
	}
	return &AuthService{
		users:       users,
		settings:    settings,
		secret:      []byte(secret),
		expireHours: expireHours,
		timeout:     timeout,
	}
}

// Session is the login/registration result handed to the client.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login verifies username and password and issues a session. bcrypt's
// comparison is constant-time, and the same Unauthorized comes back for
// an unknown user and a wrong password.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()

	if username == "" || password == "" {
		return nil, apperrors.Validation("username and password are required")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if isNotFoundStore(err) {
			return nil, apperrors.Unauthorized("invalid username or password")
		}
		return nil, storeError(err, "")
	}
	if !user.Active {
		return nil, apperrors.Unauthorized("invalid username or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperrors.Unauthorized("invalid username or password")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &Session{Token: token, User: user}, nil
}

// Register creates a self-service account when registration is enabled
// in the site settings. New accounts always get the user role.
func (s *AuthService) Register(ctx context.Context, email, username, password string) (*Session, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()

	if s.settings != nil {
		setting, err := s.settings.Get(ctx, "enable_registration")
		if err == nil && setting.Value != "true" {
			return nil, apperrors.Forbidden("registration is disabled")
		}
	}

	user, err := newUser(email, username, password, models.RoleUser)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("email or username already exists")
		}
		return nil, storeError(err, "")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &Session{Token: token, User: user}, nil
}

// ParseSession validates a session credential and returns its claims.
func (s *AuthService) ParseSession(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.Unauthorized("invalid or expired session")
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, apperrors.Unauthorized("invalid or expired session")
	}
	return claims, nil
}

// CurrentUser loads the account behind a validated session.
func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*models.User, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user not found")
	}
	return user, nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.expireHours) * time.Hour)),
			Issuer:    "toolnav",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// newUser validates account fields and hashes the password.
func newUser(email, username, password, role string) (*models.User, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.Validation("a valid email is required")
	}
	if len(username) < 3 {
		return nil, apperrors.Validation("username must be at least 3 characters")
	}
	if len(password) < 6 {
		return nil, apperrors.Validation("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}, nil
}
