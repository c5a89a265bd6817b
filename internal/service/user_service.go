package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"vismay-core/internal/auth"
	"vismay-core/internal/model"
	"vismay-core/internal/repository"
)

// UserService covers administrative user management. Self-service flows
// (login, password change) live on AuthService.
type UserService struct {
	users  *repository.UserRepository
	tokens *repository.TokenRepository
	hasher auth.Hasher
}

func NewUserService(users *repository.UserRepository, tokens *repository.TokenRepository, hasher auth.Hasher) *UserService {
	return &UserService{users: users, tokens: tokens, hasher: hasher}
}

func (s *UserService) List(ctx context.Context, page int, limit int) ([]model.AuthUser, int, error) {
	return s.users.List(ctx, page, limit)
}

func (s *UserService) Get(ctx context.Context, id string) (model.AuthUser, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.AuthUser{}, err
	}
	return user.Public(), nil
}

func (s *UserService) Create(ctx context.Context, req model.CreateUserRequest) (model.AuthUser, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if req.Username == "" || req.Email == "" || req.FirstName == "" || req.RoleID == "" {
		return model.AuthUser{}, model.ErrInvalidInput
	}
	if len(req.Password) < 8 {
		return model.AuthUser{}, model.ErrInvalidInput
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.AuthUser{}, err
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		TenantID:     req.TenantID,
		RoleID:       req.RoleID,
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return model.AuthUser{}, err
	}

	return s.Get(ctx, user.ID)
}

func (s *UserService) Update(ctx context.Context, id string, req model.UpdateUserRequest) (model.AuthUser, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.AuthUser{}, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.RoleID != nil {
		user.RoleID = *req.RoleID
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.users.Update(ctx, user); err != nil {
		return model.AuthUser{}, err
	}

	// A role change or deactivation only lands on the next refresh for live
	// sessions; dropping refresh tokens shortens that window to the access
	// token lifetime.
	if req.RoleID != nil || (req.IsActive != nil && !*req.IsActive) {
		if err := s.tokens.DeleteAllForUser(ctx, id); err != nil {
			return model.AuthUser{}, err
		}
	}

	return s.Get(ctx, id)
}

// Disable soft-deletes the user and ends their sessions.
func (s *UserService) Disable(ctx context.Context, id string) error {
	if err := s.users.Disable(ctx, id); err != nil {
		return err
	}
	return s.tokens.DeleteAllForUser(ctx, id)
}
