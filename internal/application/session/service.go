package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/temple-booking/internal/domain"
	"github.com/temple-booking/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

// LoginResult carries the bearer token and the account it was issued for.
// Admin logins have no stored account; User is a synthetic admin record.
type LoginResult struct {
	Bearer string       `json:"bearer"`
	User   *domain.User `json:"user"`
}

type Service interface {
	Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error)
	AdminLogin(ctx context.Context, req domain.AdminLoginRequest) (*LoginResult, error)
}

type userStore interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type tokenSigner interface {
	Sign(userID, email, role string) (string, error)
}

// AdminCredentials are the configured administrator login.
type AdminCredentials struct {
	Username string
	Password string
	Email    string
}

type service struct {
	userRepo userStore
	signer   tokenSigner
	admin    AdminCredentials
}

type ServiceDeps struct {
	UserRepo    userStore
	JWTProvider tokenSigner
	Admin       AdminCredentials
}

func NewService(deps ServiceDeps) Service {
	return &service{userRepo: deps.UserRepo, signer: deps.JWTProvider, admin: deps.Admin}
}

var errInvalidCredentials = fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	ident := strings.TrimSpace(req.Identifier)
	u, err := s.userRepo.GetByUsername(ctx, ident)
	if errors.Is(err, domain.ErrNotFound) {
		u, err = s.userRepo.GetByEmail(ctx, strings.ToLower(ident))
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errInvalidCredentials
	}
	bearer, err := s.signer.Sign(u.UserID, u.Email, u.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Bearer: bearer, User: u}, nil
}

func (s *service) AdminLogin(_ context.Context, req domain.AdminLoginRequest) (*LoginResult, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.admin.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.admin.Password)) == 1
	if !userOK || !passOK {
		return nil, errInvalidCredentials
	}
	email := s.admin.Email
	if email == "" {
		email = s.admin.Username
	}
	bearer, err := s.signer.Sign(s.admin.Username, email, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Bearer: bearer,
		User:   &domain.User{UserID: s.admin.Username, Username: s.admin.Username, Email: email, Role: domain.RoleAdmin},
	}, nil
}
