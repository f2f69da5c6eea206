package models

import "time"

// SupportStatus is the state of a support message
type SupportStatus string

const (
	SupportStatusOpen     SupportStatus = "open"
	SupportStatusResolved SupportStatus = "resolved"
)

// SupportMessage is a contact form submission
type SupportMessage struct {
	ID        int           `json:"id"`
	UserID    *int          `json:"userId,omitempty"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Message   string        `json:"message"`
	Status    SupportStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}

// CreateSupportMessageRequest represents a contact form submission
type CreateSupportMessageRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Message string `json:"message" validate:"required,max=4000"`
}
