package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"workmarket/domain"
)

// UserService is the stand-in for the external identity provider:
// registration hands out a bearer token, ByToken resolves it back to a
// user and fails closed.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type RegisterInput struct {
	Email       string      `json:"email"`
	DisplayName string      `json:"display_name"`
	Role        domain.Role `json:"role"`
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", domain.ErrValidation)
	}
	if !domain.ValidRole(in.Role) {
		return nil, fmt.Errorf("%w: role must be %q or %q", domain.ErrValidation, domain.RoleJobPoster, domain.RoleContractor)
	}

	user := &domain.User{
		Email:       email,
		DisplayName: strings.TrimSpace(in.DisplayName),
		Role:        in.Role,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: email already registered", domain.ErrValidation)
		}
		return nil, storeErr(err)
	}
	return user, nil
}

// ByToken resolves a bearer token. Any miss or backend failure is
// reported as NotAuthenticated.
func (s *UserService) ByToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrNotAuthenticated
	}
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, "token = ?", token).Error; err != nil {
		return nil, domain.ErrNotAuthenticated
	}
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr(err)
	}
	return &user, nil
}
