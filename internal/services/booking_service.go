package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/drivingschool/backend/internal/metrics"
	"github.com/drivingschool/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingRepository is the interface that wraps methods for Bookings table data access
type BookingRepository interface {
	// Method Create inserts a booking; its ID is filled on success.
	//
	// If a non-cancelled booking already holds the instructor slot, models.ErrSlotTaken will be returned.
	Create(ctx context.Context, booking *models.Booking) error
	// Method GetByID returns a booking with its instructor name.
	//
	// If booking with such ID does not exist, models.ErrBookingNotFound will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.Booking, error)
	// Method ListByUser returns every booking of the learner ordered by lesson start.
	ListByUser(ctx context.Context, userID int) ([]models.Booking, error)
	// Method ListByDate returns every booking on "date" (YYYY-MM-DD) ordered by slot.
	ListByDate(ctx context.Context, date string) ([]models.Booking, error)
	// Method ExistsActiveAtSlot reports whether a non-cancelled booking holds the slot.
	ExistsActiveAtSlot(ctx context.Context, instructorID int, date, slot string) (bool, error)
	// Method UpdateStatus moves a booking from "from" to "to" only while its stored status is still "from".
	//
	// If booking with such ID does not exist, models.ErrBookingNotFound will be returned.
	// If the stored status is no longer "from", models.ErrBookingStatusChanged will be returned.
	UpdateStatus(ctx context.Context, id int, from, to models.BookingStatus) error
}

// ProgressCounter is the interface that wraps the lesson counter update done when a lesson is completed
type ProgressCounter interface {
	// Method IncrementCompleted adds one completed lesson to the learner's counter.
	IncrementCompleted(ctx context.Context, userID int) error
}

// cancellationNotice is how long before the lesson a learner may still cancel
const cancellationNotice = 24 * time.Hour

var lessonTypes = map[models.LessonType]bool{
	models.LessonTypeStandard:       true,
	models.LessonTypeHighway:        true,
	models.LessonTypeParking:        true,
	models.LessonTypeTestPrep:       true,
	models.LessonTypeAnxietySupport: true,
}

// statusTransitions lists the statuses staff may move a booking to
var statusTransitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingStatusPending:   {models.BookingStatusConfirmed, models.BookingStatusCompleted, models.BookingStatusCancelled},
	models.BookingStatusConfirmed: {models.BookingStatusCompleted, models.BookingStatusCancelled},
}

type bookingService struct {
	bookingRepo    BookingRepository
	instructorRepo InstructorRepository
	userRepo       UserRepository
	progress       ProgressCounter
	queue          NotificationQueue
	location       *time.Location
	now            func() time.Time
	logger         *zap.Logger
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookingRepo BookingRepository,
	instructorRepo InstructorRepository,
	userRepo UserRepository,
	progress ProgressCounter,
	queue NotificationQueue,
	location *time.Location,
	logger *zap.Logger,
) *bookingService {
	return &bookingService{
		bookingRepo:    bookingRepo,
		instructorRepo: instructorRepo,
		userRepo:       userRepo,
		progress:       progress,
		queue:          queue,
		location:       location,
		now:            time.Now,
		logger:         logger,
	}
}

// Create books a lesson slot for the user
func (s *bookingService) Create(ctx context.Context, userID int, req *models.CreateBookingRequest) (*models.Booking, error) {
	if !lessonTypes[req.LessonType] {
		return nil, models.NewValidationError("lesson type must be one of standard, highway, parking, test-prep, anxiety-support")
	}
	if !isLessonSlot(req.LessonTime) {
		return nil, models.NewValidationError("lessons start on the hour between 09:00 and 16:00")
	}

	booking := &models.Booking{
		UserID:       userID,
		InstructorID: req.InstructorID,
		LessonDate:   req.LessonDate,
		LessonTime:   req.LessonTime,
		LessonType:   req.LessonType,
		Status:       models.BookingStatusPending,
		Notes:        strings.TrimSpace(req.Notes),
	}

	startsAt, err := booking.StartsAt(s.location)
	if err != nil {
		return nil, models.NewValidationError("lesson date must be in YYYY-MM-DD format")
	}
	if !startsAt.After(s.now()) {
		return nil, models.NewValidationError("lesson must be in the future")
	}

	instructor, err := s.instructorRepo.GetByID(ctx, req.InstructorID)
	if err != nil {
		return nil, err
	}
	if !instructor.Active {
		return nil, models.ErrInstructorInactive
	}

	taken, err := s.bookingRepo.ExistsActiveAtSlot(ctx, booking.InstructorID, booking.LessonDate, booking.LessonTime)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.ErrSlotTaken
	}

	booking.Reference = newBookingReference()
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}
	booking.InstructorName = instructor.FullName
	booking.CreatedAt = s.now()

	metrics.RecordBooking(string(booking.LessonType))
	s.logger.Info("lesson booked",
		zap.Int("booking_id", booking.ID),
		zap.String("reference", booking.Reference),
		zap.Int("user_id", userID),
		zap.Int("instructor_id", booking.InstructorID),
	)

	notify(ctx, s.queue, s.logger, s.bookingNotification(ctx, models.NotificationBookingCreated, booking))
	return booking, nil
}

// ListMine returns the bookings of the user
func (s *bookingService) ListMine(ctx context.Context, userID int) ([]models.Booking, error) {
	return s.bookingRepo.ListByUser(ctx, userID)
}

// ListByDate returns every booking on a date for staff
func (s *bookingService) ListByDate(ctx context.Context, date string) ([]models.Booking, error) {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return nil, models.NewValidationError("date must be in YYYY-MM-DD format")
	}
	return s.bookingRepo.ListByDate(ctx, date)
}

// Get returns a booking. Learners only see their own bookings; staff see all.
func (s *bookingService) Get(ctx context.Context, userID int, role models.Role, id int) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID && role < models.RoleInstructor {
		return nil, models.ErrBookingNotFound
	}
	return booking, nil
}

// Cancel cancels the user's own pending or confirmed booking more than 24 hours ahead
func (s *bookingService) Cancel(ctx context.Context, userID, id int) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, models.ErrBookingNotFound
	}
	if booking.Status != models.BookingStatusPending && booking.Status != models.BookingStatusConfirmed {
		return nil, models.ErrBookingNotCancelable
	}

	startsAt, err := booking.StartsAt(s.location)
	if err != nil {
		return nil, err
	}
	if startsAt.Sub(s.now()) <= cancellationNotice {
		return nil, models.ErrCancellationTooLate
	}

	if err := s.bookingRepo.UpdateStatus(ctx, id, booking.Status, models.BookingStatusCancelled); err != nil {
		return nil, err
	}
	booking.Status = models.BookingStatusCancelled

	notify(ctx, s.queue, s.logger, s.bookingNotification(ctx, models.NotificationBookingCancelled, booking))
	return booking, nil
}

// UpdateStatus lets staff confirm, complete or cancel a booking.
// Completing a lesson increments the learner's progress counter.
func (s *bookingService) UpdateStatus(ctx context.Context, id int, status models.BookingStatus) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range statusTransitions[booking.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, models.NewValidationError(fmt.Sprintf("cannot change booking from %s to %s", booking.Status, status))
	}

	if err := s.bookingRepo.UpdateStatus(ctx, id, booking.Status, status); err != nil {
		return nil, err
	}
	booking.Status = status

	switch status {
	case models.BookingStatusCompleted:
		if err := s.progress.IncrementCompleted(ctx, booking.UserID); err != nil {
			return nil, fmt.Errorf("booking completed but progress was not updated: %w", err)
		}
	case models.BookingStatusCancelled:
		notify(ctx, s.queue, s.logger, s.bookingNotification(ctx, models.NotificationBookingCancelled, booking))
	}

	return booking, nil
}

func (s *bookingService) bookingNotification(ctx context.Context, typ models.NotificationType, b *models.Booking) models.Notification {
	data := map[string]any{
		"bookingId":      b.ID,
		"reference":      b.Reference,
		"instructorName": b.InstructorName,
		"lessonDate":     b.LessonDate,
		"lessonTime":     b.LessonTime,
		"lessonType":     b.LessonType,
	}
	if user, err := s.userRepo.GetByID(ctx, b.UserID); err == nil {
		data["studentName"] = user.FullName
		data["studentEmail"] = user.Email
		data["studentPhone"] = user.Phone
	} else {
		s.logger.Warn("failed to load student for notification", zap.Int("user_id", b.UserID), zap.Error(err))
	}
	return models.Notification{Type: typ, Data: data}
}

// newBookingReference returns an 8 character upper-case reference code
func newBookingReference() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
