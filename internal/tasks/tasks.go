// Package tasks defines the background jobs exchanged between the API, the scheduler and the worker
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/drivingschool/backend/internal/models"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Task type names
const (
	TypeTelegramNotification = "notification:telegram"
	TypeEmail                = "email:send"
)

// Queue names and their worker priorities
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
)

// Queues is the asynq queue configuration used by the worker
var Queues = map[string]int{
	QueueCritical: 5,
	QueueDefault:  1,
}

// MaxRetry is the retry budget of every task
const MaxRetry = 5

// reminderRetention keeps finished reminder tasks around so their ids stay reserved
const reminderRetention = 36 * time.Hour

// NewTelegramNotificationTask builds a chat-bot notification task
func NewTelegramNotificationTask(n models.Notification) (*asynq.Task, error) {
	payload, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("failed to encode notification: %w", err)
	}
	return asynq.NewTask(TypeTelegramNotification, payload), nil
}

// NewEmailTask builds an email delivery task
func NewEmailTask(msg models.EmailMessage) (*asynq.Task, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode email: %w", err)
	}
	return asynq.NewTask(TypeEmail, payload), nil
}

// ParseNotification decodes a notification task payload
func ParseNotification(t *asynq.Task) (models.Notification, error) {
	var n models.Notification
	if err := json.Unmarshal(t.Payload(), &n); err != nil {
		return n, fmt.Errorf("invalid notification payload: %w: %w", err, asynq.SkipRetry)
	}
	return n, nil
}

// ParseEmail decodes an email task payload
func ParseEmail(t *asynq.Task) (models.EmailMessage, error) {
	var msg models.EmailMessage
	if err := json.Unmarshal(t.Payload(), &msg); err != nil {
		return msg, fmt.Errorf("invalid email payload: %w: %w", err, asynq.SkipRetry)
	}
	return msg, nil
}

// Client is the subset of *asynq.Client used to enqueue tasks
type Client interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer puts notification and email tasks on the queue
type Enqueuer struct {
	client      Client
	adminChatID string
	logger      *zap.Logger
}

// NewEnqueuer creates an Enqueuer. Notifications without a chat id go to adminChatID.
func NewEnqueuer(client Client, adminChatID string, logger *zap.Logger) *Enqueuer {
	return &Enqueuer{
		client:      client,
		adminChatID: adminChatID,
		logger:      logger,
	}
}

// EnqueueNotification queues a chat-bot notification
func (e *Enqueuer) EnqueueNotification(ctx context.Context, n models.Notification) error {
	if n.ChatID == "" {
		n.ChatID = e.adminChatID
	}
	task, err := NewTelegramNotificationTask(n)
	if err != nil {
		return err
	}
	return e.enqueue(ctx, task, asynq.Queue(QueueCritical), asynq.MaxRetry(MaxRetry))
}

// EnqueueEmail queues an email
func (e *Enqueuer) EnqueueEmail(ctx context.Context, msg models.EmailMessage) error {
	task, err := NewEmailTask(msg)
	if err != nil {
		return err
	}
	return e.enqueue(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(MaxRetry))
}

// EnqueueReminder queues the reminder email and chat-bot message of a booking.
// Task ids are derived from the booking so repeated runs for the same lesson are no-ops.
func (e *Enqueuer) EnqueueReminder(ctx context.Context, r models.ReminderBooking) error {
	email, err := NewEmailTask(ReminderEmail(r))
	if err != nil {
		return err
	}
	if err := e.enqueue(ctx, email,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(MaxRetry),
		asynq.TaskID(ReminderTaskID("email", r)),
		asynq.Retention(reminderRetention),
	); err != nil {
		return err
	}

	chatID := r.TelegramChatID
	if chatID == "" {
		chatID = e.adminChatID
	}
	notification, err := NewTelegramNotificationTask(models.Notification{
		Type:   models.NotificationLessonReminder,
		ChatID: chatID,
		Data: map[string]any{
			"reference":      r.Reference,
			"studentName":    r.UserName,
			"instructorName": r.InstructorName,
			"lessonDate":     r.LessonDate,
			"lessonTime":     r.LessonTime,
			"lessonType":     r.LessonType,
		},
	})
	if err != nil {
		return err
	}
	return e.enqueue(ctx, notification,
		asynq.Queue(QueueCritical),
		asynq.MaxRetry(MaxRetry),
		asynq.TaskID(ReminderTaskID("telegram", r)),
		asynq.Retention(reminderRetention),
	)
}

func (e *Enqueuer) enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) error {
	info, err := e.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		e.logger.Debug("task already enqueued", zap.String("type", task.Type()))
		return nil
	}
	if err != nil {
		e.logger.Error("failed to enqueue task", zap.String("type", task.Type()), zap.Error(err))
		return fmt.Errorf("failed to enqueue %s: %w", task.Type(), err)
	}
	e.logger.Debug("task enqueued", zap.String("type", task.Type()), zap.String("task_id", info.ID), zap.String("queue", info.Queue))
	return nil
}

// ReminderTaskID is the deterministic id of a reminder task for a booking
func ReminderTaskID(channel string, r models.ReminderBooking) string {
	return fmt.Sprintf("reminder:%s:%d:%s", channel, r.BookingID, r.LessonDate)
}

// ReminderEmail builds the reminder email for a booking
func ReminderEmail(r models.ReminderBooking) models.EmailMessage {
	return models.EmailMessage{
		To:       r.UserEmail,
		Template: models.EmailTemplateLessonReminder,
		Data: map[string]string{
			"Name":       r.UserName,
			"Reference":  r.Reference,
			"Date":       r.LessonDate,
			"Time":       r.LessonTime,
			"LessonType": r.LessonType,
			"Instructor": r.InstructorName,
		},
	}
}
