package models

import "time"

// Role is the access level of an account
type Role int

// Role constants. RoleMiddleware compares them numerically.
const (
	RoleStudent    Role = 1
	RoleInstructor Role = 2
	RoleAdmin      Role = 3
)

// AnxietyLevel is the result bucket of the driving anxiety assessment
type AnxietyLevel string

const (
	AnxietyLevelNone     AnxietyLevel = "none"
	AnxietyLevelLow      AnxietyLevel = "low"
	AnxietyLevelModerate AnxietyLevel = "moderate"
	AnxietyLevelHigh     AnxietyLevel = "high"
)

// Transmission is the gearbox type a learner trains on or an instructor teaches
type Transmission string

const (
	TransmissionManual    Transmission = "manual"
	TransmissionAutomatic Transmission = "automatic"
)

// User represents a learner, instructor or admin account together with its profile
type User struct {
	ID                    int          `json:"id"`
	Email                 string       `json:"email"`
	FullName              string       `json:"fullName"`
	PasswordHash          string       `json:"-"` // Never serialize password hash
	Role                  Role         `json:"role"`
	Phone                 string       `json:"phone,omitempty"`
	TelegramChatID        string       `json:"telegramChatId,omitempty"`
	PreferredTransmission Transmission `json:"preferredTransmission,omitempty"`
	AnxietyLevel          AnxietyLevel `json:"anxietyLevel"`
	AnxietyScore          *int         `json:"anxietyScore,omitempty"`
	CreatedAt             time.Time    `json:"createdAt"`
}

// RegisterRequest represents a sign-up request
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	FullName string `json:"fullName" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginRequest represents a sign-in request
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest represents a partial profile update.
// Nil fields are left unchanged.
type UpdateProfileRequest struct {
	FullName              *string       `json:"fullName,omitempty" validate:"omitempty,min=1,max=100"`
	Phone                 *string       `json:"phone,omitempty" validate:"omitempty,max=32"`
	TelegramChatID        *string       `json:"telegramChatId,omitempty" validate:"omitempty,max=64"`
	PreferredTransmission *Transmission `json:"preferredTransmission,omitempty" validate:"omitempty,oneof=manual automatic"`
}
