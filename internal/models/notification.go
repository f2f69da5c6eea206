package models

// NotificationType names the event a chat-bot notification describes
type NotificationType string

const (
	NotificationBookingCreated   NotificationType = "booking_created"
	NotificationBookingCancelled NotificationType = "booking_cancelled"
	NotificationSupportMessage   NotificationType = "support_message"
	NotificationLessonReminder   NotificationType = "lesson_reminder"
)

// Notification is the body POSTed to the chat-bot endpoint
type Notification struct {
	Type   NotificationType `json:"type"`
	ChatID string           `json:"chatId"`
	Data   map[string]any   `json:"data"`
}

// EmailTemplate names an email rendered by the worker
type EmailTemplate string

const (
	EmailTemplateLessonReminder EmailTemplate = "lesson_reminder"
	EmailTemplateSupportAck     EmailTemplate = "support_ack"
)

// EmailMessage is an email queued for delivery
type EmailMessage struct {
	To       string            `json:"to"`
	Template EmailTemplate     `json:"template"`
	Data     map[string]string `json:"data"`
}
