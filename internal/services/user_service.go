package services

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "toolnav/internal/errors"
	"toolnav/internal/models"
	"toolnav/internal/repository"
)

// UserService covers the admin-side account management.
type UserService struct {
	users   repository.UserRepository
	timeout time.Duration
}

func NewUserService(users repository.UserRepository, timeout time.Duration) *UserService {
	return &UserService{users: users, timeout: timeout}
}

// UserInput carries the writable account fields. Empty Password keeps
// the current credential on update.
type UserInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Active   *bool  `json:"active"`
}

func (s *UserService) Create(ctx context.Context, input UserInput) (*models.User, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()

	role := input.Role
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, apperrors.Validation("invalid role %q", role)
	}

	user, err := newUser(input.Email, input.Username, input.Password, role)
	if err != nil {
		return nil, err
	}
	if input.Active != nil {
		user.Active = *input.Active
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("email or username already exists")
		}
		return nil, storeError(err, "")
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id uint, input UserInput) (*models.User, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "user not found")
	}

	if input.Email != "" && input.Email != user.Email {
		if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
			return nil, apperrors.Conflict("email already exists")
		} else if !isNotFoundStore(err) {
			return nil, storeError(err, "")
		}
		user.Email = input.Email
	}
	if input.Username != "" && input.Username != user.Username {
		if _, err := s.users.GetByUsername(ctx, input.Username); err == nil {
			return nil, apperrors.Conflict("username already exists")
		} else if !isNotFoundStore(err) {
			return nil, storeError(err, "")
		}
		user.Username = input.Username
	}
	if input.Password != "" {
		if len(input.Password) < 6 {
			return nil, apperrors.Validation("password must be at least 6 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		user.PasswordHash = string(hash)
	}
	if input.Role != "" {
		if input.Role != models.RoleUser && input.Role != models.RoleAdmin {
			return nil, apperrors.Validation("invalid role %q", input.Role)
		}
		if user.IsAdmin() && input.Role != models.RoleAdmin {
			if err := s.ensureNotLastAdmin(ctx); err != nil {
				return nil, err
			}
		}
		user.Role = input.Role
	}
	if input.Active != nil {
		user.Active = *input.Active
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, storeError(err, "user not found")
	}
	return user, nil
}

// Delete removes an account with its favorites and tokens. The last
// remaining admin cannot be deleted.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return storeError(err, "user not found")
	}
	if user.IsAdmin() {
		if err := s.ensureNotLastAdmin(ctx); err != nil {
			return err
		}
	}
	return storeError(s.users.Delete(ctx, id), "user not found")
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "user not found")
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	ctx, cancel := boundedCtx(ctx, s.timeout)
	defer cancel()
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, storeError(err, "")
	}
	return users, nil
}

func (s *UserService) ensureNotLastAdmin(ctx context.Context) error {
	admins, err := s.users.CountAdmins(ctx)
	if err != nil {
		return storeError(err, "")
	}
	if admins <= 1 {
		return apperrors.Conflict("cannot remove the last admin account")
	}
	return nil
}
