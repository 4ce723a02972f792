package handler

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/temple-booking/internal/config"
	"github.com/temple-booking/internal/domain"
	jwtinfra "github.com/temple-booking/internal/infrastructure/jwt"
	"github.com/temple-booking/internal/transport/http/middleware"
)

// --- mock ---

type mockUserSvc struct{ mock.Mock }

func (m *mockUserSvc) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

// newTestJWTProvider generates a fresh RSA key pair and returns a *jwtinfra.Provider.
func newTestJWTProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privKey)})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0600))

	pubBytes, err := x509.MarshalPKIXPublicKey(&privKey.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0600))

	p, err := jwtinfra.NewProvider(&config.Config{
		JWTPrivateKeyPath: privPath,
		JWTPublicKeyPath:  pubPath,
		JWTExpiry:         24 * time.Hour,
	})
	require.NoError(t, err)
	return p
}

// bearerReq builds a request with a signed Bearer token for the given email and role.
func bearerReq(t *testing.T, p *jwtinfra.Provider, method, target, email, role string, body []byte) *http.Request {
	t.Helper()
	token, err := p.Sign("u1", email, role)
	require.NoError(t, err)
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

// withChiParam injects a chi URL param into the request context.
func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// serveAuthed wraps the handler with middleware.Auth before serving.
func serveAuthed(p *jwtinfra.Provider, h http.Handler, w http.ResponseWriter, r *http.Request) {
	middleware.Auth(p)(h).ServeHTTP(w, r)
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorEnvelope {
	t.Helper()
	var env ErrorEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	assert.False(t, env.OK)
	return env
}

// --- Register tests ---

func TestRegister_InvalidBody(t *testing.T) {
	h := NewUserHandler(&mockUserSvc{})
	r := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewBufferString("not-json"))
	rr := httptest.NewRecorder()
	h.Register(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, domain.KindValidation, decodeError(t, rr).ErrorKind)
}

func TestRegister_ServiceConflict(t *testing.T) {
	svc := &mockUserSvc{}
	svc.On("Register", mock.Anything, mock.Anything).Return(nil, domain.ErrConflict)
	h := NewUserHandler(svc)
	body, _ := json.Marshal(domain.CreateUserRequest{
		Username: "asha", Password: "secret123", Email: "asha@example.com", Mobile: "999",
	})
	r := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Register(rr, r)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, domain.KindConflict, decodeError(t, rr).ErrorKind)
	svc.AssertExpectations(t)
}

func TestRegister_HappyPathHidesHash(t *testing.T) {
	svc := &mockUserSvc{}
	svc.On("Register", mock.Anything, mock.Anything).Return(&domain.User{UserID: "u1", Username: "asha", PasswordHash: "$2a$secret"}, nil)
	h := NewUserHandler(svc)
	body, _ := json.Marshal(domain.CreateUserRequest{
		Username: "asha", Password: "secret123", Email: "asha@example.com", Mobile: "999",
	})
	r := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Register(rr, r)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"ok":true`)
	assert.NotContains(t, rr.Body.String(), "secret")
	svc.AssertExpectations(t)
}

func TestHttpError_PersistenceIsOpaque(t *testing.T) {
	rr := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	httpError(rr, r, errors.New("dynamodb: connection reset"))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	env := decodeError(t, rr)
	assert.Equal(t, domain.KindPersistence, env.ErrorKind)
	assert.NotContains(t, env.Message, "dynamodb")
}
