package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_orders/internal/models"
	"github.com/Skotchmaster/shop_orders/internal/user/repo"
	"github.com/Skotchmaster/shop_orders/internal/user/transport"
	pkgdb "github.com/Skotchmaster/shop_orders/pkg/db"
	pkghash "github.com/Skotchmaster/shop_orders/pkg/hash"
)

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already registered")

	ErrMissingFields = fmt.Errorf("%w: missing required fields", ErrValidation)
	ErrInvalidRole   = fmt.Errorf("%w: invalid role", ErrValidation)
)

type UserService struct {
	Repo *repo.GormRepo
}

func parseRole(s string) (models.Role, error) {
	if s == "" {
		return models.RoleBuyer, nil
	}
	role := models.Role(strings.ToLower(s))
	if !role.Valid() {
		return "", ErrInvalidRole
	}
	return role, nil
}

func (s *UserService) CreateUser(ctx context.Context, req transport.CreateUserRequest) (*models.User, error) {
	email := strings.TrimSpace(req.Email)
	if strings.TrimSpace(req.Name) == "" || email == "" || req.Password == "" {
		return nil, ErrMissingFields
	}
	role, err := parseRole(req.Role)
	if err != nil {
		return nil, err
	}

	if _, err := s.Repo.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pwHash, err := pkghash.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: pwHash,
		Role:         role,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if pkgdb.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.Repo.GetUser(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return user, err
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.Repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrNotFound
	}
	return users, nil
}

func (s *UserService) PatchUser(ctx context.Context, id uint, req transport.PatchUserRequest) (*models.User, error) {
	var patch repo.UserPatch
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		patch.Name = &name
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email == "" {
			return nil, ErrMissingFields
		}
		patch.Email = &email
	}
	if req.Password != nil {
		if *req.Password == "" {
			return nil, ErrMissingFields
		}
		pwHash, err := pkghash.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		patch.PasswordHash = &pwHash
	}
	if req.Role != nil {
		role := models.Role(strings.ToLower(*req.Role))
		if !role.Valid() {
			return nil, ErrInvalidRole
		}
		patch.Role = &role
	}

	user, err := s.Repo.PatchUser(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
		case pkgdb.IsUniqueViolation(err):
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	err := s.Repo.DeleteUser(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return err
}
