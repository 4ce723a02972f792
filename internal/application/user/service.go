package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/temple-booking/internal/domain"
	"github.com/temple-booking/internal/pkg/id"
	"github.com/temple-booking/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
}

type userStore interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
}

type service struct {
	repo       userStore
	bcryptCost int
}

type ServiceDeps struct {
	UserRepo   userStore
	BcryptCost int
}

func NewService(deps ServiceDeps) Service {
	cost := deps.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &service{repo: deps.UserRepo, bcryptCost: cost}
}

func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Mobile = strings.TrimSpace(req.Mobile)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if err := taken(s.repo.GetByUsername(ctx, req.Username)); err != nil {
		return nil, fmt.Errorf("username: %w", err)
	}
	if err := taken(s.repo.GetByEmail(ctx, req.Email)); err != nil {
		return nil, fmt.Errorf("email: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		UserID:       id.New(),
		Username:     req.Username,
		Email:        req.Email,
		Mobile:       req.Mobile,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Put(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// taken turns a successful lookup into a conflict and passes through
// anything other than NotFound.
func taken(_ *domain.User, err error) error {
	switch {
	case err == nil:
		return fmt.Errorf("already registered: %w", domain.ErrConflict)
	case errors.Is(err, domain.ErrNotFound):
		return nil
	}
	return err
}
