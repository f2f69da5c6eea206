package handlers

import (
	"context"
	"net/http"

	"github.com/drivingschool/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BookingService is the interface that wraps methods for lesson bookings
type BookingService interface {
	// Method Create books a lesson slot for the user.
	//
	// If the slot is already held, models.ErrSlotTaken will be returned together with "nil" value.
	Create(ctx context.Context, userID int, req *models.CreateBookingRequest) (*models.Booking, error)
	// Method ListMine returns the bookings of the user.
	ListMine(ctx context.Context, userID int) ([]models.Booking, error)
	// Method ListByDate returns every booking on "date" for staff.
	ListByDate(ctx context.Context, date string) ([]models.Booking, error)
	// Method Get returns a booking visible to the user with "role".
	Get(ctx context.Context, userID int, role models.Role, id int) (*models.Booking, error)
	// Method Cancel cancels the user's own booking more than 24 hours before the lesson.
	Cancel(ctx context.Context, userID, id int) (*models.Booking, error)
	// Method UpdateStatus lets staff confirm, complete or cancel a booking.
	UpdateStatus(ctx context.Context, id int, status models.BookingStatus) (*models.Booking, error)
}

// BookingHandler handles booking HTTP requests
type BookingHandler struct {
	BaseHandler
	service BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(service BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{
		BaseHandler: newBaseHandler(logger),
		service:     service,
	}
}

// RegisterRoutes registers all booking handler routes
func (h *BookingHandler) RegisterRoutes(r chi.Router, authMiddleware, staffMiddleware func(http.Handler) http.Handler) {
	r.Route("/bookings", func(r chi.Router) {
		r.With(staffMiddleware).Get("/schedule", h.ListByDate)
		r.With(staffMiddleware).Patch("/{id}/status", h.UpdateStatus)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/", h.Create)
			r.Get("/", h.ListMine)
			r.Get("/{id}", h.Get)
			r.Post("/{id}/cancel", h.Cancel)
		})
	})
}

// Create handles POST /bookings
// @Summary Book a lesson
// @Description Lessons start on the hour between 09:00 and 16:00.
// @Tags bookings
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.CreateBookingRequest true "Booking"
// @Success 201 {object} models.Booking
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 404 {object} map[string]string "Instructor not found"
// @Failure 409 {object} map[string]string "Slot already booked or instructor inactive"
// @Router /bookings [post]
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req models.CreateBookingRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	booking, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, booking)
}

// ListMine handles GET /bookings
// @Summary Own bookings
// @Tags bookings
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Booking
// @Failure 401 {object} map[string]string "Authentication required"
// @Router /bookings [get]
func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	bookings, err := h.service.ListMine(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, bookings)
}

// ListByDate handles GET /bookings/schedule
// @Summary Day schedule for staff
// @Tags bookings
// @Produce json
// @Security ApiKeyAuth
// @Param date query string true "Date in YYYY-MM-DD format"
// @Success 200 {array} models.Booking
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 403 {object} map[string]string "Insufficient permissions"
// @Router /bookings/schedule [get]
func (h *BookingHandler) ListByDate(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.ListByDate(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, bookings)
}

// Get handles GET /bookings/{id}
// @Summary Get a booking
// @Tags bookings
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Booking ID"
// @Success 200 {object} models.Booking
// @Failure 404 {object} map[string]string "Booking not found"
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	booking, err := h.service.Get(r.Context(), userID, role, id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, booking)
}

// Cancel handles POST /bookings/{id}/cancel
// @Summary Cancel own booking
// @Description Allowed for pending or confirmed bookings more than 24 hours before the lesson.
// @Tags bookings
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Booking ID"
// @Success 200 {object} models.Booking
// @Failure 404 {object} map[string]string "Booking not found"
// @Failure 409 {object} map[string]string "Too late or not cancellable"
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	booking, err := h.service.Cancel(r.Context(), userID, id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, booking)
}

// UpdateStatus handles PATCH /bookings/{id}/status
// @Summary Change booking status
// @Description Completing a booking adds a lesson to the learner's progress.
// @Tags bookings
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Booking ID"
// @Param request body models.UpdateBookingStatusRequest true "New status"
// @Success 200 {object} models.Booking
// @Failure 400 {object} map[string]string "Invalid status transition"
// @Failure 403 {object} map[string]string "Insufficient permissions"
// @Failure 404 {object} map[string]string "Booking not found"
// @Router /bookings/{id}/status [patch]
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.UpdateBookingStatusRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	booking, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, booking)
}
