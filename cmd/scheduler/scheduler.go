package main

import (
	"context"
	"fmt"
	"time"

	"github.com/drivingschool/backend/internal/models"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// tokenCleanupSpec runs the refresh token cleanup once a night
const tokenCleanupSpec = "30 3 * * *"

// jobTimeout bounds a single scheduler run
const jobTimeout = 5 * time.Minute

// ReminderBookingRepository defines methods for reading upcoming lessons
type ReminderBookingRepository interface {
	// ListConfirmedForDate returns confirmed bookings on "date" (YYYY-MM-DD) joined with learner and instructor details
	ListConfirmedForDate(ctx context.Context, date string) ([]models.ReminderBooking, error)
}

// ReminderQueue defines methods for queueing lesson reminders
type ReminderQueue interface {
	// EnqueueReminder queues the reminder email and chat-bot message of a booking.
	// Queueing the same booking twice on a day is a no-op.
	EnqueueReminder(ctx context.Context, r models.ReminderBooking) error
}

// TokenRepository defines methods for refresh token housekeeping
type TokenRepository interface {
	// DeleteExpiredTokens removes tokens issued before "expiryTime" and returns how many were removed
	DeleteExpiredTokens(ctx context.Context, expiryTime time.Time) (int, error)
}

// Scheduler runs the periodic reminder and cleanup jobs
type Scheduler struct {
	cron          *cron.Cron
	bookings      ReminderBookingRepository
	queue         ReminderQueue
	tokens        TokenRepository
	refreshExpiry time.Duration
	location      *time.Location
	now           func() time.Time
	logger        *zap.Logger
}

// NewScheduler creates a new scheduler instance. Cron specs are evaluated in "location".
func NewScheduler(
	bookings ReminderBookingRepository,
	queue ReminderQueue,
	tokens TokenRepository,
	refreshExpiry time.Duration,
	location *time.Location,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		cron:          cron.New(cron.WithLocation(location)),
		bookings:      bookings,
		queue:         queue,
		tokens:        tokens,
		refreshExpiry: refreshExpiry,
		location:      location,
		now:           time.Now,
		logger:        logger,
	}
}

// Start registers the jobs and starts the cron loop
func (s *Scheduler) Start(reminderSpec string) error {
	if _, err := s.cron.AddFunc(reminderSpec, s.runReminders); err != nil {
		return fmt.Errorf("invalid reminder cron expression %q: %w", reminderSpec, err)
	}
	if _, err := s.cron.AddFunc(tokenCleanupSpec, s.runTokenCleanup); err != nil {
		return fmt.Errorf("invalid token cleanup cron expression: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started",
		zap.String("reminder_cron", reminderSpec),
		zap.String("timezone", s.location.String()),
	)
	return nil
}

// Stop stops the cron loop and waits for running jobs
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) runReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.SendReminders(ctx); err != nil {
		s.logger.Error("Reminder run failed", zap.Error(err))
	}
}

func (s *Scheduler) runTokenCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.CleanExpiredTokens(ctx); err != nil {
		s.logger.Error("Token cleanup failed", zap.Error(err))
	}
}

// SendReminders queues reminders for every confirmed lesson tomorrow and returns how many were queued.
// A booking that fails to queue is logged and skipped.
func (s *Scheduler) SendReminders(ctx context.Context) (int, error) {
	tomorrow := s.now().In(s.location).AddDate(0, 0, 1).Format(models.DateLayout)

	bookings, err := s.bookings.ListConfirmedForDate(ctx, tomorrow)
	if err != nil {
		return 0, fmt.Errorf("failed to list bookings for %s: %w", tomorrow, err)
	}

	queued := 0
	for _, b := range bookings {
		if err := s.queue.EnqueueReminder(ctx, b); err != nil {
			s.logger.Error("Failed to queue reminder", zap.Int("booking_id", b.BookingID), zap.Error(err))
			continue
		}
		queued++
	}

	s.logger.Info("Lesson reminders queued",
		zap.String("date", tomorrow),
		zap.Int("bookings", len(bookings)),
		zap.Int("queued", queued),
	)
	return queued, nil
}

// CleanExpiredTokens removes refresh tokens older than the refresh expiry
func (s *Scheduler) CleanExpiredTokens(ctx context.Context) (int, error) {
	expiryTime := s.now().Add(-s.refreshExpiry)

	deleted, err := s.tokens.DeleteExpiredTokens(ctx, expiryTime)
	if err != nil {
		return 0, err
	}

	// 0 deleted rows is not an error
	s.logger.Info("Token cleaning completed", zap.Int("deleted_count", deleted))
	return deleted, nil
}
