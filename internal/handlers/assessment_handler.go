package handlers

import (
	"context"
	"net/http"

	"github.com/drivingschool/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AssessmentService is the interface that wraps methods for the anxiety assessment
type AssessmentService interface {
	// Method GetQuestions returns the fixed questionnaire.
	GetQuestions() []models.AssessmentQuestion
	// Method Submit scores the answers, stores the result on the profile and recommends instructors.
	//
	// Answers that do not cover every question exactly once with values 1..5 give a *models.ValidationError.
	Submit(ctx context.Context, userID int, req *models.SubmitAssessmentRequest) (*models.AssessmentResult, error)
}

// AssessmentHandler handles anxiety assessment HTTP requests
type AssessmentHandler struct {
	BaseHandler
	service AssessmentService
}

// NewAssessmentHandler creates a new assessment handler
func NewAssessmentHandler(service AssessmentService, logger *zap.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		BaseHandler: newBaseHandler(logger),
		service:     service,
	}
}

// RegisterRoutes registers all assessment handler routes
func (h *AssessmentHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/assessment", func(r chi.Router) {
		r.Get("/questions", h.GetQuestions)
		r.With(authMiddleware).Post("/", h.Submit)
	})
}

// GetQuestions handles GET /assessment/questions
// @Summary Get the assessment questionnaire
// @Description Each statement is answered from 1 (strongly disagree) to 5 (strongly agree).
// @Tags assessment
// @Produce json
// @Success 200 {array} models.AssessmentQuestion
// @Router /assessment/questions [get]
func (h *AssessmentHandler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.service.GetQuestions())
}

// Submit handles POST /assessment
// @Summary Submit assessment answers
// @Description Scores driving anxiety 0..100, stores it on the profile and recommends instructors.
// @Tags assessment
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.SubmitAssessmentRequest true "Answers"
// @Success 200 {object} models.AssessmentResult
// @Failure 400 {object} map[string]string "Invalid answers"
// @Failure 401 {object} map[string]string "Authentication required"
// @Router /assessment [post]
func (h *AssessmentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req models.SubmitAssessmentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.service.Submit(r.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}
