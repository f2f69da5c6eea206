package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/drivingschool/backend/internal/auth"
	"github.com/drivingschool/backend/internal/models"
	"github.com/drivingschool/backend/internal/validation"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BaseHandler carries helpers shared by every handler
type BaseHandler struct {
	logger    *zap.Logger
	validator *validation.Validator
}

func newBaseHandler(logger *zap.Logger) BaseHandler {
	return BaseHandler{logger: logger, validator: validation.New()}
}

// respondJSON sends a JSON response
func (h *BaseHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// respondError sends an error JSON response
func (h *BaseHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// handleServiceError maps domain errors to HTTP statuses. Unknown errors are logged and hidden.
func (h *BaseHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr):
		h.respondError(w, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, models.ErrInvalidCredentials), errors.Is(err, models.ErrInvalidToken):
		h.respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, models.ErrForbidden), errors.Is(err, models.ErrReviewNotAllowed):
		h.respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrInstructorNotFound),
		errors.Is(err, models.ErrBookingNotFound),
		errors.Is(err, models.ErrSkillNotFound),
		errors.Is(err, models.ErrSupportNotFound),
		errors.Is(err, models.ErrPackageNotFound):
		h.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrEmailExists),
		errors.Is(err, models.ErrSlotTaken),
		errors.Is(err, models.ErrInstructorInactive),
		errors.Is(err, models.ErrCancellationTooLate),
		errors.Is(err, models.ErrBookingNotCancelable),
		errors.Is(err, models.ErrBookingStatusChanged):
		h.respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrPaymentsUnavailable):
		h.respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		h.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeAndValidate reads a JSON body into dst and validates its struct tags.
// On failure the response is written and false is returned.
func (h *BaseHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// currentUser returns the authenticated user id and role, answering 401 when missing
func (h *BaseHandler) currentUser(w http.ResponseWriter, r *http.Request) (int, models.Role, bool) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return 0, 0, false
	}
	role, _ := auth.GetRole(r.Context())
	return userID, models.Role(role), true
}

// pathID parses a positive integer URL parameter, answering 400 when invalid
func (h *BaseHandler) pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id < 1 {
		h.respondError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter; missing values give def
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
