package services

import (
	"context"

	"github.com/drivingschool/backend/internal/models"
	"go.uber.org/zap"
)

// NotificationQueue is the interface that wraps background delivery of notifications and emails
type NotificationQueue interface {
	// Method EnqueueNotification queues a chat-bot notification. An empty ChatID targets the school's admin chat.
	EnqueueNotification(ctx context.Context, n models.Notification) error
	// Method EnqueueEmail queues a templated email.
	EnqueueEmail(ctx context.Context, msg models.EmailMessage) error
}

// notify queues a notification; failures are logged and never reach the caller
func notify(ctx context.Context, queue NotificationQueue, logger *zap.Logger, n models.Notification) {
	if queue == nil {
		return
	}
	if err := queue.EnqueueNotification(ctx, n); err != nil {
		logger.Warn("failed to enqueue notification", zap.String("type", string(n.Type)), zap.Error(err))
	}
}

// sendEmail queues an email; failures are logged and never reach the caller
func sendEmail(ctx context.Context, queue NotificationQueue, logger *zap.Logger, msg models.EmailMessage) {
	if queue == nil {
		return
	}
	if err := queue.EnqueueEmail(ctx, msg); err != nil {
		logger.Warn("failed to enqueue email", zap.String("template", string(msg.Template)), zap.Error(err))
	}
}
