package handlers

import (
	"context"
	"net/http"

	"github.com/drivingschool/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PaymentService is the interface that wraps methods for lesson package payments
type PaymentService interface {
	// Method ListPackages returns the package catalogue with static payment links.
	ListPackages() []models.LessonPackage
	// Method Checkout returns a URL where the user pays for "packageID".
	//
	// Unknown packages give models.ErrPackageNotFound; models.ErrPaymentsUnavailable when nothing is configured.
	Checkout(ctx context.Context, userID int, packageID string) (*models.CheckoutResponse, error)
}

// PaymentHandler handles payment HTTP requests
type PaymentHandler struct {
	BaseHandler
	service PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(service PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler: newBaseHandler(logger),
		service:     service,
	}
}

// RegisterRoutes registers all payment handler routes
func (h *PaymentHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/payments", func(r chi.Router) {
		r.Get("/packages", h.ListPackages)
		r.With(authMiddleware).Post("/checkout", h.Checkout)
	})
}

// ListPackages handles GET /payments/packages
// @Summary Lesson packages
// @Tags payments
// @Produce json
// @Success 200 {array} models.LessonPackage
// @Router /payments/packages [get]
func (h *PaymentHandler) ListPackages(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.service.ListPackages())
}

// Checkout handles POST /payments/checkout
// @Summary Start a payment
// @Description Returns a hosted checkout URL, or the package's static payment link when online checkout is unavailable.
// @Tags payments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.CheckoutRequest true "Package"
// @Success 200 {object} models.CheckoutResponse
// @Failure 404 {object} map[string]string "Package not found"
// @Failure 503 {object} map[string]string "Payments not configured"
// @Router /payments/checkout [post]
func (h *PaymentHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req models.CheckoutRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.Checkout(r.Context(), userID, req.PackageID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}
