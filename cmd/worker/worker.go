package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/drivingschool/backend/internal/mailer"
	"github.com/drivingschool/backend/internal/metrics"
	"github.com/drivingschool/backend/internal/models"
	"github.com/drivingschool/backend/internal/tasks"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// NotificationSender defines the interface for the chat-bot relay client
type NotificationSender interface {
	// Configured reports whether the relay endpoint is set
	Configured() bool
	// Send posts the notification to the relay
	//
	// A non-2xx response from the relay is returned as an error.
	Send(ctx context.Context, n models.Notification) error
}

// EmailSender defines the interface for the SMTP mailer
type EmailSender interface {
	// Send renders the message template and delivers it
	//
	// If the template is unknown, mailer.ErrUnknownTemplate is returned.
	Send(msg models.EmailMessage) error
}

// Worker handles task processing
type Worker struct {
	logger   *zap.Logger
	notifier NotificationSender
	mailer   EmailSender
}

// NewWorker creates a new worker instance
func NewWorker(logger *zap.Logger, notifier NotificationSender, mailer EmailSender) *Worker {
	return &Worker{
		logger:   logger,
		notifier: notifier,
		mailer:   mailer,
	}
}

// HandleTelegramNotification delivers a chat-bot notification
func (w *Worker) HandleTelegramNotification(ctx context.Context, t *asynq.Task) (err error) {
	defer func() { metrics.RecordTask(t.Type(), err) }()

	n, err := tasks.ParseNotification(t)
	if err != nil {
		w.logger.Error("Dropping malformed notification task", zap.Error(err))
		return err
	}

	// Without a relay endpoint there is nowhere to deliver; retrying would not help
	if !w.notifier.Configured() {
		w.logger.Warn("Telegram relay is not configured, notification skipped",
			zap.String("type", string(n.Type)),
		)
		return nil
	}

	if err := w.notifier.Send(ctx, n); err != nil {
		w.logger.Error("Failed to deliver notification",
			zap.String("type", string(n.Type)),
			zap.String("chat_id", n.ChatID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to deliver notification: %w", err)
	}

	w.logger.Info("Notification delivered", zap.String("type", string(n.Type)))
	return nil
}

// HandleEmail renders and sends an email
func (w *Worker) HandleEmail(ctx context.Context, t *asynq.Task) (err error) {
	defer func() { metrics.RecordTask(t.Type(), err) }()

	msg, err := tasks.ParseEmail(t)
	if err != nil {
		w.logger.Error("Dropping malformed email task", zap.Error(err))
		return err
	}

	if msg.To == "" {
		w.logger.Warn("Email task has no recipient, skipped", zap.String("template", string(msg.Template)))
		return fmt.Errorf("email recipient is empty: %w", asynq.SkipRetry)
	}

	if err := w.mailer.Send(msg); err != nil {
		w.logger.Error("Failed to send email",
			zap.String("template", string(msg.Template)),
			zap.Error(err),
		)
		if errors.Is(err, mailer.ErrUnknownTemplate) {
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return err
	}

	w.logger.Info("Email sent", zap.String("template", string(msg.Template)))
	return nil
}
