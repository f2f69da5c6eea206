package models

import "errors"

// Sentinel errors shared by repositories, services and handlers.
// Handlers map them to HTTP status codes with errors.Is.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrTokenNotFound        = errors.New("token not found")
	ErrInstructorNotFound   = errors.New("instructor not found")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrSkillNotFound        = errors.New("skill not found")
	ErrSupportNotFound      = errors.New("support message not found")
	ErrPackageNotFound      = errors.New("lesson package not found")
	ErrProgressNotFound     = errors.New("progress not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidToken         = errors.New("invalid or expired refresh token")
	ErrInstructorInactive   = errors.New("instructor is not taking bookings")
	ErrEmailExists          = errors.New("email already exists")
	ErrSlotTaken            = errors.New("time slot is already booked")
	ErrCancellationTooLate  = errors.New("lesson can no longer be cancelled")
	ErrBookingNotCancelable = errors.New("booking cannot be cancelled in its current status")
	ErrBookingStatusChanged = errors.New("booking status was changed by another request")
	ErrReviewNotAllowed     = errors.New("a completed lesson with this instructor is required to leave a review")
	ErrForbidden            = errors.New("insufficient permissions")
	ErrPaymentsUnavailable  = errors.New("online payments are not configured")
)

// ValidationError is returned by services when the input is rejected.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with the given message
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}
