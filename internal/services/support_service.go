package services

import (
	"context"
	"strings"

	"github.com/drivingschool/backend/internal/models"
	"go.uber.org/zap"
)

// SupportRepository is the interface that wraps methods for SupportMessages table data access
type SupportRepository interface {
	// Method Create stores a contact form submission; its ID is filled on success.
	Create(ctx context.Context, message *models.SupportMessage) error
	// Method List returns a page of messages with "status", newest first. An empty status matches all.
	List(ctx context.Context, status models.SupportStatus, limit, offset int) ([]models.SupportMessage, error)
	// Method Resolve marks a message as resolved.
	//
	// If message with such ID does not exist, models.ErrSupportNotFound will be returned.
	Resolve(ctx context.Context, id int) error
}

const (
	defaultSupportPageSize = 20
	maxSupportPageSize     = 100
)

type supportService struct {
	repo   SupportRepository
	queue  NotificationQueue
	logger *zap.Logger
}

// NewSupportService creates a new support service
func NewSupportService(repo SupportRepository, queue NotificationQueue, logger *zap.Logger) *supportService {
	return &supportService{
		repo:   repo,
		queue:  queue,
		logger: logger,
	}
}

// Create stores a contact form message, alerts staff and acknowledges it by email.
// userID is nil for visitors who are not signed in.
func (s *supportService) Create(ctx context.Context, userID *int, req *models.CreateSupportMessageRequest) (*models.SupportMessage, error) {
	message := &models.SupportMessage{
		UserID:  userID,
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Message: strings.TrimSpace(req.Message),
		Status:  models.SupportStatusOpen,
	}
	if message.Name == "" {
		return nil, models.NewValidationError("name cannot be empty")
	}
	if !emailRegex.MatchString(message.Email) {
		return nil, models.NewValidationError("invalid email format")
	}
	if message.Message == "" {
		return nil, models.NewValidationError("message cannot be empty")
	}

	if err := s.repo.Create(ctx, message); err != nil {
		return nil, err
	}

	notify(ctx, s.queue, s.logger, models.Notification{
		Type: models.NotificationSupportMessage,
		Data: map[string]any{
			"id":      message.ID,
			"name":    message.Name,
			"email":   message.Email,
			"message": message.Message,
		},
	})
	sendEmail(ctx, s.queue, s.logger, models.EmailMessage{
		To:       message.Email,
		Template: models.EmailTemplateSupportAck,
		Data: map[string]string{
			"Name":    message.Name,
			"Message": message.Message,
		},
	})

	return message, nil
}

// List returns a page of support messages for admins
func (s *supportService) List(ctx context.Context, status models.SupportStatus, page, count int) ([]models.SupportMessage, error) {
	switch status {
	case "", models.SupportStatusOpen, models.SupportStatusResolved:
	default:
		return nil, models.NewValidationError("status must be open or resolved")
	}
	if page < 1 {
		page = 1
	}
	if count < 1 {
		count = defaultSupportPageSize
	}
	count = min(count, maxSupportPageSize)

	return s.repo.List(ctx, status, count, (page-1)*count)
}

// Resolve closes a support message
func (s *supportService) Resolve(ctx context.Context, id int) error {
	return s.repo.Resolve(ctx, id)
}
