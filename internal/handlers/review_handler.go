package handlers

import (
	"context"
	"net/http"

	"github.com/drivingschool/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReviewService is the interface that wraps methods for instructor reviews
type ReviewService interface {
	// Method ListByInstructor returns a page of the instructor's reviews, newest first.
	ListByInstructor(ctx context.Context, instructorID, page, count int) ([]models.Review, error)
	// Method ListRecent returns the newest reviews across all instructors.
	ListRecent(ctx context.Context, limit int) ([]models.Review, error)
	// Method Create stores a review; the user must have completed a lesson with the instructor.
	//
	// Otherwise models.ErrReviewNotAllowed will be returned together with "nil" value.
	Create(ctx context.Context, userID int, req *models.CreateReviewRequest) (*models.Review, error)
}

// ReviewHandler handles review HTTP requests
type ReviewHandler struct {
	BaseHandler
	service ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(service ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler: newBaseHandler(logger),
		service:     service,
	}
}

// RegisterRoutes registers all review handler routes
func (h *ReviewHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/reviews", func(r chi.Router) {
		r.Get("/", h.ListByInstructor)
		r.Get("/recent", h.ListRecent)
		r.With(authMiddleware).Post("/", h.Create)
	})
}

// ListByInstructor handles GET /reviews
// @Summary Reviews of an instructor
// @Tags reviews
// @Produce json
// @Param instructorId query int true "Instructor ID"
// @Param page query int false "Page number starting at 1"
// @Param count query int false "Page size (default 10, max 50)"
// @Success 200 {array} models.Review
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Failure 404 {object} map[string]string "Instructor not found"
// @Router /reviews [get]
func (h *ReviewHandler) ListByInstructor(w http.ResponseWriter, r *http.Request) {
	id, err := queryInt(r, "instructorId", 0)
	if err != nil || id < 1 {
		h.respondError(w, http.StatusBadRequest, "instructorId is required")
		return
	}
	page, err := queryInt(r, "page", 1)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid page parameter")
		return
	}
	count, err := queryInt(r, "count", 0)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid count parameter")
		return
	}

	reviews, err := h.service.ListByInstructor(r.Context(), id, page, count)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, reviews)
}

// ListRecent handles GET /reviews/recent
// @Summary Latest reviews for testimonials
// @Tags reviews
// @Produce json
// @Param limit query int false "How many reviews (default 6, max 20)"
// @Success 200 {array} models.Review
// @Router /reviews/recent [get]
func (h *ReviewHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid limit parameter")
		return
	}

	reviews, err := h.service.ListRecent(r.Context(), limit)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, reviews)
}

// Create handles POST /reviews
// @Summary Review an instructor
// @Description Requires a completed lesson with the instructor.
// @Tags reviews
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.CreateReviewRequest true "Review"
// @Success 201 {object} models.Review
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 403 {object} map[string]string "No completed lesson with this instructor"
// @Failure 404 {object} map[string]string "Instructor not found"
// @Router /reviews [post]
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req models.CreateReviewRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	review, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, review)
}
