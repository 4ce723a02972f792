package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/temple-booking/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) Sign(userID, email, role string) (string, error) {
	args := m.Called(userID, email, role)
	return args.String(0), args.Error(1)
}

func newService(us *mockUserStore, sg *mockSigner) Service {
	return NewService(ServiceDeps{
		UserRepo:    us,
		JWTProvider: sg,
		Admin:       AdminCredentials{Username: "root", Password: "s3cret-pass", Email: "admin@temple.org"},
	})
}

func storedUser(t *testing.T) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{UserID: "u1", Username: "asha", Email: "a@x.com", Role: domain.RoleUser, PasswordHash: string(hash)}
}

// --- Login ---

func TestLogin_ByUsername(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "asha").Return(storedUser(t), nil)
	sg := &mockSigner{}
	sg.On("Sign", "u1", "a@x.com", domain.RoleUser).Return("tok", nil)

	res, err := newService(us, sg).Login(context.Background(), domain.LoginRequest{Identifier: "asha", Password: "password123"})

	require.NoError(t, err)
	assert.Equal(t, "tok", res.Bearer)
	assert.Equal(t, "u1", res.User.UserID)
	sg.AssertExpectations(t)
}

func TestLogin_FallsBackToEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "A@x.com").Return(nil, domain.ErrNotFound)
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(storedUser(t), nil)
	sg := &mockSigner{}
	sg.On("Sign", "u1", "a@x.com", domain.RoleUser).Return("tok", nil)

	_, err := newService(us, sg).Login(context.Background(), domain.LoginRequest{Identifier: "A@x.com", Password: "password123"})

	require.NoError(t, err)
	us.AssertExpectations(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "asha").Return(storedUser(t), nil)
	sg := &mockSigner{}

	_, err := newService(us, sg).Login(context.Background(), domain.LoginRequest{Identifier: "asha", Password: "nope-nope"})

	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	sg.AssertNotCalled(t, "Sign", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_UnknownUser(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)
	us.On("GetByEmail", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	_, err := newService(us, &mockSigner{}).Login(context.Background(), domain.LoginRequest{Identifier: "ghost", Password: "whatever"})

	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_StoreFailureIsNotUnauthorized(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "asha").Return(nil, domain.ErrPersistence)

	_, err := newService(us, &mockSigner{}).Login(context.Background(), domain.LoginRequest{Identifier: "asha", Password: "password123"})

	assert.True(t, errors.Is(err, domain.ErrPersistence))
	assert.False(t, errors.Is(err, domain.ErrUnauthorized))
}

// --- AdminLogin ---

func TestAdminLogin_Success(t *testing.T) {
	sg := &mockSigner{}
	sg.On("Sign", "root", "admin@temple.org", domain.RoleAdmin).Return("admin-tok", nil)

	res, err := newService(nil, sg).AdminLogin(context.Background(), domain.AdminLoginRequest{Username: "root", Password: "s3cret-pass"})

	require.NoError(t, err)
	assert.Equal(t, "admin-tok", res.Bearer)
	assert.Equal(t, domain.RoleAdmin, res.User.Role)
}

func TestAdminLogin_BadPassword(t *testing.T) {
	_, err := newService(nil, &mockSigner{}).AdminLogin(context.Background(), domain.AdminLoginRequest{Username: "root", Password: "admin123"})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestAdminLogin_MissingFields(t *testing.T) {
	_, err := newService(nil, &mockSigner{}).AdminLogin(context.Background(), domain.AdminLoginRequest{Username: "root"})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}
