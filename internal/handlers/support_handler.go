package handlers

import (
	"context"
	"net/http"

	"github.com/drivingschool/backend/internal/auth"
	"github.com/drivingschool/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SupportService is the interface that wraps methods for the contact form
type SupportService interface {
	// Method Create stores a message, alerts staff and acknowledges it by email. "userID" is nil for visitors.
	Create(ctx context.Context, userID *int, req *models.CreateSupportMessageRequest) (*models.SupportMessage, error)
	// Method List returns a page of messages filtered by "status"; an empty status matches all.
	List(ctx context.Context, status models.SupportStatus, page, count int) ([]models.SupportMessage, error)
	// Method Resolve closes a message.
	//
	// If message with such ID does not exist, models.ErrSupportNotFound will be returned.
	Resolve(ctx context.Context, id int) error
}

// SupportHandler handles support HTTP requests
type SupportHandler struct {
	BaseHandler
	service SupportService
}

// NewSupportHandler creates a new support handler
func NewSupportHandler(service SupportService, logger *zap.Logger) *SupportHandler {
	return &SupportHandler{
		BaseHandler: newBaseHandler(logger),
		service:     service,
	}
}

// RegisterRoutes registers all support handler routes
func (h *SupportHandler) RegisterRoutes(r chi.Router, optionalAuthMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/support", func(r chi.Router) {
		r.With(optionalAuthMiddleware).Post("/", h.Create)
		r.With(adminMiddleware).Get("/", h.List)
		r.With(adminMiddleware).Post("/{id}/resolve", h.Resolve)
	})
}

// Create handles POST /support
// @Summary Send a contact form message
// @Description Open to visitors; signed-in users are linked to the message.
// @Tags support
// @Accept json
// @Produce json
// @Param request body models.CreateSupportMessageRequest true "Message"
// @Success 201 {object} models.SupportMessage
// @Failure 400 {object} map[string]string "Invalid request body"
// @Router /support [post]
func (h *SupportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSupportMessageRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	var userID *int
	if id, ok := auth.GetUserID(r.Context()); ok {
		userID = &id
	}

	message, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, message)
}

// List handles GET /support
// @Summary List support messages
// @Tags support
// @Produce json
// @Security ApiKeyAuth
// @Param status query string false "open or resolved"
// @Param page query int false "Page number starting at 1"
// @Param count query int false "Page size (default 20, max 100)"
// @Success 200 {array} models.SupportMessage
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Failure 403 {object} map[string]string "Insufficient permissions"
// @Router /support [get]
func (h *SupportHandler) List(w http.ResponseWriter, r *http.Request) {
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

	messages, err := h.service.List(r.Context(), models.SupportStatus(r.URL.Query().Get("status")), page, count)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, messages)
}

// Resolve handles POST /support/{id}/resolve
// @Summary Resolve a support message
// @Tags support
// @Security ApiKeyAuth
// @Param id path int true "Message ID"
// @Success 204
// @Failure 404 {object} map[string]string "Message not found"
// @Router /support/{id}/resolve [post]
func (h *SupportHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Resolve(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
