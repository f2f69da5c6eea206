package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/drivingschool/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// InstructorService is the interface that wraps methods for the instructor catalogue
type InstructorService interface {
	// Method List returns active instructors filtered by transmission and specialty.
	// Store failures are answered with a built-in default list.
	List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, error)
	// Method Get returns a single instructor.
	//
	// If instructor with such ID does not exist, models.ErrInstructorNotFound will be returned together with "nil" value.
	Get(ctx context.Context, id int) (*models.Instructor, error)
	// Method Create adds an instructor to the catalogue.
	Create(ctx context.Context, req *models.CreateUpdateInstructorRequest) (*models.Instructor, error)
	// Method Update replaces the editable fields of an instructor.
	Update(ctx context.Context, id int, req *models.CreateUpdateInstructorRequest) (*models.Instructor, error)
	// Method Availability returns the free lesson slots of an instructor on "date" (YYYY-MM-DD).
	Availability(ctx context.Context, id int, date string) (*models.Availability, error)
}

// InstructorHandler handles instructor catalogue HTTP requests
type InstructorHandler struct {
	BaseHandler
	service InstructorService
}

// NewInstructorHandler creates a new instructor handler
func NewInstructorHandler(service InstructorService, logger *zap.Logger) *InstructorHandler {
	return &InstructorHandler{
		BaseHandler: newBaseHandler(logger),
		service:     service,
	}
}

// RegisterRoutes registers all instructor handler routes
func (h *InstructorHandler) RegisterRoutes(r chi.Router, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/instructors", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Get("/{id}/availability", h.Availability)
		r.With(adminMiddleware).Post("/", h.Create)
		r.With(adminMiddleware).Put("/{id}", h.Update)
	})
}

// List handles GET /instructors
// @Summary List instructors
// @Tags instructors
// @Produce json
// @Param transmission query string false "manual or automatic"
// @Param specialty query string false "Specialty, e.g. nervous-drivers"
// @Success 200 {array} models.Instructor
// @Failure 400 {object} map[string]string "Invalid transmission"
// @Router /instructors [get]
func (h *InstructorHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := models.InstructorFilter{
		Transmission: models.Transmission(strings.ToLower(r.URL.Query().Get("transmission"))),
		Specialty:    strings.ToLower(r.URL.Query().Get("specialty")),
	}
	switch filter.Transmission {
	case "", models.TransmissionManual, models.TransmissionAutomatic:
	default:
		h.respondError(w, http.StatusBadRequest, "transmission must be manual or automatic")
		return
	}

	instructors, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, instructors)
}

// Get handles GET /instructors/{id}
// @Summary Get an instructor
// @Tags instructors
// @Produce json
// @Param id path int true "Instructor ID"
// @Success 200 {object} models.Instructor
// @Failure 400 {object} map[string]string "Invalid id"
// @Failure 404 {object} map[string]string "Instructor not found"
// @Router /instructors/{id} [get]
func (h *InstructorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	instructor, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, instructor)
}

// Availability handles GET /instructors/{id}/availability
// @Summary Free lesson slots of an instructor
// @Tags instructors
// @Produce json
// @Param id path int true "Instructor ID"
// @Param date query string true "Date in YYYY-MM-DD format"
// @Success 200 {object} models.Availability
// @Failure 400 {object} map[string]string "Invalid id or date"
// @Failure 404 {object} map[string]string "Instructor not found"
// @Router /instructors/{id}/availability [get]
func (h *InstructorHandler) Availability(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		h.respondError(w, http.StatusBadRequest, "date is required")
		return
	}

	availability, err := h.service.Availability(r.Context(), id, date)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, availability)
}

// Create handles POST /instructors
// @Summary Add an instructor
// @Tags instructors
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.CreateUpdateInstructorRequest true "Instructor"
// @Success 201 {object} models.Instructor
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 403 {object} map[string]string "Insufficient permissions"
// @Router /instructors [post]
func (h *InstructorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUpdateInstructorRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	instructor, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, instructor)
}

// Update handles PUT /instructors/{id}
// @Summary Update an instructor
// @Description Omitting "active" keeps the current flag.
// @Tags instructors
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Instructor ID"
// @Param request body models.CreateUpdateInstructorRequest true "Instructor"
// @Success 200 {object} models.Instructor
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 404 {object} map[string]string "Instructor not found"
// @Router /instructors/{id} [put]
func (h *InstructorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.CreateUpdateInstructorRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	instructor, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, instructor)
}
