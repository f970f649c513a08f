package usecase

import (
	"context"
	"errors"
	"strings"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"
)

type userUsecase struct {
	users domain.UserRepository
}

func NewUserUsecase(users domain.UserRepository) domain.UserUsecase {
	return &userUsecase{users: users}
}

func (u *userUsecase) Register(ctx context.Context, userID, email, name string, role domain.Role) (*domain.User, error) {
	if userID == "" {
		return nil, apperror.Unauthenticated("Authentication required")
	}
	// admins are provisioned by operators, never self-registered
	if role != domain.RoleSeeker && role != domain.RoleEmployer {
		return nil, apperror.Validation("Role must be seeker or employer")
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, apperror.Validation("An email address is required")
	}

	user := &domain.User{
		ID:    userID,
		Email: email,
		Name:  strings.TrimSpace(name),
		Role:  role,
	}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, apperror.AlreadyExists("User is already registered")
		}
		return nil, storeErr(err, "User not found")
	}
	return user, nil
}

func (u *userUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := u.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	return user, nil
}

func (u *userUsecase) UpdateProfile(ctx context.Context, name string) (*domain.User, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation("Name is required")
	}
	if err := u.users.UpdateProfile(ctx, p.UserID, name); err != nil {
		return nil, storeErr(err, "User not found")
	}
	return u.GetCurrentUser(ctx, p.UserID)
}
