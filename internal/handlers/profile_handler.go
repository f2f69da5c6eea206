package handlers

import (
	"context"
	"net/http"

	"github.com/drivingschool/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProfileService is the interface that wraps methods for profile business logic
type ProfileService interface {
	// Method GetProfile returns the profile of the user.
	//
	// If user with such ID does not exist, models.ErrUserNotFound will be returned together with "nil" value.
	GetProfile(ctx context.Context, userID int) (*models.User, error)
	// Method UpdateProfile applies the non-nil fields of "req" and returns the updated profile.
	UpdateProfile(ctx context.Context, userID int, req *models.UpdateProfileRequest) (*models.User, error)
}

// ProfileHandler handles profile HTTP requests
type ProfileHandler struct {
	BaseHandler
	profileService ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    newBaseHandler(logger),
		profileService: profileService,
	}
}

// RegisterRoutes registers all profile handler routes
func (h *ProfileHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/profile", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.GetProfile)
		r.Patch("/", h.UpdateProfile)
	})
}

// GetProfile handles GET /profile
// @Summary Get own profile
// @Tags profile
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.User
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 404 {object} map[string]string "User not found"
// @Router /profile [get]
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	user, err := h.profileService.GetProfile(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PATCH /profile
// @Summary Update own profile
// @Description Only the fields present in the body are changed.
// @Tags profile
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} models.User
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Authentication required"
// @Router /profile [patch]
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.profileService.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, user)
}
