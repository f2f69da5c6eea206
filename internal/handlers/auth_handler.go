package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/drivingschool/backend/internal/auth"
	"github.com/drivingschool/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for authentication business logic.
type AuthService interface {
	// Method Register validates the credentials, creates a learner and returns access and refresh tokens.
	//
	// If the credentials are invalid or the email is taken, the error will be returned together with empty strings.
	Register(ctx context.Context, req *models.RegisterRequest) (string, string, error)
	// Method Login checks the credentials and returns access and refresh tokens.
	//
	// Unknown email or wrong password give models.ErrInvalidCredentials.
	Login(ctx context.Context, req *models.LoginRequest) (string, string, error)
	// Method Refresh rotates "refreshToken" and returns a new token pair.
	//
	// If the token is invalid, expired or unknown, models.ErrInvalidToken will be returned.
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
	// Method Logout revokes "refreshToken".
	Logout(ctx context.Context, refreshToken string) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService   AuthService
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	secureCookies bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, accessExpiry, refreshExpiry time.Duration, secureCookies bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler:   newBaseHandler(logger),
		authService:   authService,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		secureCookies: secureCookies,
	}
}

// RegisterRoutes registers all auth handler routes
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
		r.Post("/logout", h.Logout)
	})
}

// TokenResponse carries a freshly issued token pair
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshRequest represents a token refresh or logout request
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Register handles POST /auth/register
// @Summary Register a learner
// @Description Creates a student account. Tokens are returned in the body and as HTTP-only cookies.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration data"
// @Success 201 {object} TokenResponse
// @Failure 400 {object} map[string]string "Invalid request body or password policy"
// @Failure 409 {object} map[string]string "Email already exists"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	accessToken, refreshToken, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.setTokenCookies(w, accessToken, refreshToken)
	h.respondJSON(w, http.StatusCreated, TokenResponse{AccessToken: accessToken, RefreshToken: refreshToken})
}

// Login handles POST /auth/login
// @Summary Login
// @Description Authenticates with email and password. Tokens are returned in the body and as HTTP-only cookies.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	accessToken, refreshToken, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.setTokenCookies(w, accessToken, refreshToken)
	h.respondJSON(w, http.StatusOK, TokenResponse{AccessToken: accessToken, RefreshToken: refreshToken})
}

// Refresh handles POST /auth/refresh
// @Summary Refresh tokens
// @Description Rotates the refresh token. The token can be sent in the body or as the refresh_token cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest false "Refresh token (optional when using the cookie)"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} map[string]string "Refresh token required"
// @Failure 401 {object} map[string]string "Invalid or expired refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken := h.refreshTokenFrom(r)
	if refreshToken == "" {
		h.respondError(w, http.StatusBadRequest, "refresh token required")
		return
	}

	accessToken, newRefreshToken, err := h.authService.Refresh(r.Context(), refreshToken)
	if err != nil {
		h.clearTokenCookies(w)
		h.handleServiceError(w, r, err)
		return
	}

	h.setTokenCookies(w, accessToken, newRefreshToken)
	h.respondJSON(w, http.StatusOK, TokenResponse{AccessToken: accessToken, RefreshToken: newRefreshToken})
}

// Logout handles POST /auth/logout
// @Summary Logout
// @Description Revokes the refresh token and clears the session cookies.
// @Tags auth
// @Accept json
// @Param request body RefreshRequest false "Refresh token (optional when using the cookie)"
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if refreshToken := h.refreshTokenFrom(r); refreshToken != "" {
		if err := h.authService.Logout(r.Context(), refreshToken); err != nil {
			h.logger.Warn("failed to revoke refresh token", zap.Error(err))
		}
	}
	h.clearTokenCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

// refreshTokenFrom reads the refresh token from the body, falling back to the cookie
func (h *AuthHandler) refreshTokenFrom(r *http.Request) string {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}
	if cookie, err := r.Cookie(auth.RefreshTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// setTokenCookies sets access and refresh tokens as HTTP-only cookies
func (h *AuthHandler) setTokenCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, h.cookie(auth.AccessTokenCookie, accessToken, int(h.accessExpiry.Seconds())))
	http.SetCookie(w, h.cookie(auth.RefreshTokenCookie, refreshToken, int(h.refreshExpiry.Seconds())))
}

func (h *AuthHandler) clearTokenCookies(w http.ResponseWriter) {
	http.SetCookie(w, h.cookie(auth.AccessTokenCookie, "", -1))
	http.SetCookie(w, h.cookie(auth.RefreshTokenCookie, "", -1))
}

func (h *AuthHandler) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
