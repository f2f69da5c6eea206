package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/drivingschool/backend/internal/auth"
	"github.com/drivingschool/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockAuthService is a mock implementation of AuthService
type mockAuthService struct {
	err           error
	registerReq   *models.RegisterRequest
	refreshedWith string
	loggedOut     string
}

func (m *mockAuthService) Register(ctx context.Context, req *models.RegisterRequest) (string, string, error) {
	m.registerReq = req
	if m.err != nil {
		return "", "", m.err
	}
	return "access", "refresh", nil
}

func (m *mockAuthService) Login(ctx context.Context, req *models.LoginRequest) (string, string, error) {
	if m.err != nil {
		return "", "", m.err
	}
	return "access", "refresh", nil
}

func (m *mockAuthService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	m.refreshedWith = refreshToken
	if m.err != nil {
		return "", "", m.err
	}
	return "access-2", "refresh-2", nil
}

func (m *mockAuthService) Logout(ctx context.Context, refreshToken string) error {
	m.loggedOut = refreshToken
	return m.err
}

func setupAuthRouter(svc AuthService) *chi.Mux {
	h := NewAuthHandler(svc, time.Hour, 24*time.Hour, true, testLogger())
	return newRouter(h.RegisterRoutes)
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		svc            *mockAuthService
		expectedStatus int
	}{
		{
			name:           "success",
			body:           models.RegisterRequest{Email: "ann@example.com", FullName: "Ann", Password: "Password123!"},
			svc:            &mockAuthService{},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing fields",
			body:           map[string]string{"email": "ann@example.com"},
			svc:            &mockAuthService{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed json",
			body:           "{",
			svc:            &mockAuthService{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "email exists",
			body:           models.RegisterRequest{Email: "ann@example.com", FullName: "Ann", Password: "Password123!"},
			svc:            &mockAuthService{err: models.ErrEmailExists},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "password policy",
			body:           models.RegisterRequest{Email: "ann@example.com", FullName: "Ann", Password: "weak"},
			svc:            &mockAuthService{err: models.NewValidationError("password too weak")},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, setupAuthRouter(tt.svc), http.MethodPost, "/auth/register", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusCreated {
				return
			}
			var resp TokenResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, "access", resp.AccessToken)
			access := cookieByName(w.Result().Cookies(), auth.AccessTokenCookie)
			require.NotNil(t, access)
			assert.Equal(t, "access", access.Value)
			assert.True(t, access.HttpOnly)
			assert.True(t, access.Secure)
			assert.Equal(t, 3600, access.MaxAge)
			refresh := cookieByName(w.Result().Cookies(), auth.RefreshTokenCookie)
			require.NotNil(t, refresh)
			assert.Equal(t, 86400, refresh.MaxAge)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	w := doRequest(t, setupAuthRouter(&mockAuthService{}), http.MethodPost, "/auth/login",
		models.LoginRequest{Email: "ann@example.com", Password: "Password123!"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, setupAuthRouter(&mockAuthService{err: models.ErrInvalidCredentials}), http.MethodPost, "/auth/login",
		models.LoginRequest{Email: "ann@example.com", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, models.ErrInvalidCredentials.Error(), decodeError(t, w))
}

func TestAuthHandler_Refresh(t *testing.T) {
	t.Run("token from body", func(t *testing.T) {
		svc := &mockAuthService{}
		w := doRequest(t, setupAuthRouter(svc), http.MethodPost, "/auth/refresh", RefreshRequest{RefreshToken: "r1"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "r1", svc.refreshedWith)
		refresh := cookieByName(w.Result().Cookies(), auth.RefreshTokenCookie)
		require.NotNil(t, refresh)
		assert.Equal(t, "refresh-2", refresh.Value)
	})

	t.Run("token from cookie", func(t *testing.T) {
		svc := &mockAuthService{}
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(""))
		req.AddCookie(&http.Cookie{Name: auth.RefreshTokenCookie, Value: "r-cookie"})
		w := httptest.NewRecorder()

		setupAuthRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "r-cookie", svc.refreshedWith)
	})

	t.Run("missing token", func(t *testing.T) {
		w := doRequest(t, setupAuthRouter(&mockAuthService{}), http.MethodPost, "/auth/refresh", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid token clears cookies", func(t *testing.T) {
		w := doRequest(t, setupAuthRouter(&mockAuthService{err: models.ErrInvalidToken}), http.MethodPost, "/auth/refresh", RefreshRequest{RefreshToken: "old"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		access := cookieByName(w.Result().Cookies(), auth.AccessTokenCookie)
		require.NotNil(t, access)
		assert.Equal(t, -1, access.MaxAge)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	svc := &mockAuthService{}
	w := doRequest(t, setupAuthRouter(svc), http.MethodPost, "/auth/logout", RefreshRequest{RefreshToken: "r1"})

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "r1", svc.loggedOut)
	assert.NotNil(t, cookieByName(w.Result().Cookies(), auth.RefreshTokenCookie))
}
