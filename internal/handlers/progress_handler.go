package handlers

import (
	"context"
	"net/http"

	"github.com/drivingschool/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProgressService is the interface that wraps methods for learner progress
type ProgressService interface {
	// Method GetProgress returns the lesson counter and skill checklist of the user.
	GetProgress(ctx context.Context, userID int) (*models.ProgressResponse, error)
	// Method GetLearnerProgress returns the progress of another learner.
	//
	// If user with such ID does not exist, models.ErrUserNotFound will be returned together with "nil" value.
	GetLearnerProgress(ctx context.Context, userID int) (*models.ProgressResponse, error)
	// Method SetSkill marks a checklist entry of the user.
	//
	// If the entry does not belong to the user, models.ErrSkillNotFound will be returned together with "nil" value.
	SetSkill(ctx context.Context, userID, skillID int, completed bool) (*models.ProgressResponse, error)
	// Method SetTotalLessons changes a learner's lesson target.
	SetTotalLessons(ctx context.Context, userID, totalLessons int) (*models.ProgressResponse, error)
}

// ProgressHandler handles progress HTTP requests
type ProgressHandler struct {
	BaseHandler
	service ProgressService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(service ProgressService, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler: newBaseHandler(logger),
		service:     service,
	}
}

// RegisterRoutes registers all progress handler routes
func (h *ProgressHandler) RegisterRoutes(r chi.Router, authMiddleware, staffMiddleware func(http.Handler) http.Handler) {
	r.Route("/progress", func(r chi.Router) {
		r.With(authMiddleware).Get("/", h.GetProgress)
		r.With(authMiddleware).Patch("/skills/{id}", h.SetSkill)
		r.With(staffMiddleware).Get("/users/{userId}", h.GetLearnerProgress)
		r.With(staffMiddleware).Put("/users/{userId}/total", h.SetTotalLessons)
	})
}

// GetProgress handles GET /progress
// @Summary Own progress
// @Tags progress
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.ProgressResponse
// @Failure 401 {object} map[string]string "Authentication required"
// @Router /progress [get]
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	progress, err := h.service.GetProgress(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, progress)
}

// SetSkill handles PATCH /progress/skills/{id}
// @Summary Tick or untick a checklist skill
// @Tags progress
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Skill item ID"
// @Param request body models.UpdateSkillRequest true "Completion flag"
// @Success 200 {object} models.ProgressResponse
// @Failure 404 {object} map[string]string "Skill not found"
// @Router /progress/skills/{id} [patch]
func (h *ProgressHandler) SetSkill(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	skillID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.UpdateSkillRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	progress, err := h.service.SetSkill(r.Context(), userID, skillID, req.Completed)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, progress)
}

// GetLearnerProgress handles GET /progress/users/{userId}
// @Summary Progress of a learner
// @Tags progress
// @Produce json
// @Security ApiKeyAuth
// @Param userId path int true "Learner ID"
// @Success 200 {object} models.ProgressResponse
// @Failure 403 {object} map[string]string "Insufficient permissions"
// @Failure 404 {object} map[string]string "User not found"
// @Router /progress/users/{userId} [get]
func (h *ProgressHandler) GetLearnerProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userId")
	if !ok {
		return
	}

	progress, err := h.service.GetLearnerProgress(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, progress)
}

// SetTotalLessons handles PUT /progress/users/{userId}/total
// @Summary Set a learner's lesson target
// @Tags progress
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param userId path int true "Learner ID"
// @Param request body models.SetTotalLessonsRequest true "Lesson target"
// @Success 200 {object} models.ProgressResponse
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 404 {object} map[string]string "User not found"
// @Router /progress/users/{userId}/total [put]
func (h *ProgressHandler) SetTotalLessons(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userId")
	if !ok {
		return
	}

	var req models.SetTotalLessonsRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	progress, err := h.service.SetTotalLessons(r.Context(), userID, req.TotalLessons)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, progress)
}
