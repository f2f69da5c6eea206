package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/drivingschool/backend/internal/models"
	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// slotUniqueKey is the unique index guarding live bookings of an instructor slot
const slotUniqueKey = "uq_bookings_slot"

type bookingRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *sql.DB, logger *zap.Logger) *bookingRepository {
	return &bookingRepository{
		db:     db,
		logger: logger,
	}
}

const bookingSelect = `
		SELECT b.id, b.reference, b.user_id, b.instructor_id, i.full_name, b.lesson_date,
			b.lesson_time, b.lesson_type, b.status, b.notes, b.created_at
		FROM bookings b
		JOIN instructors i ON i.id = b.instructor_id
`

// Create inserts a booking. A concurrent booking of the same live slot yields ErrSlotTaken.
func (r *bookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (reference, user_id, instructor_id, lesson_date, lesson_time, lesson_type, status, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		booking.Reference,
		booking.UserID,
		booking.InstructorID,
		booking.LessonDate,
		booking.LessonTime,
		booking.LessonType,
		booking.Status,
		booking.Notes,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry && strings.Contains(mysqlErr.Message, slotUniqueKey) {
			return models.ErrSlotTaken
		}
		r.logger.Error("failed to create booking", zap.Error(err), zap.Int("user_id", booking.UserID))
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	booking.ID = int(id)
	return nil
}

// GetByID returns a booking with its instructor name
func (r *bookingRepository) GetByID(ctx context.Context, id int) (*models.Booking, error) {
	query := bookingSelect + ` WHERE b.id = ?`

	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrBookingNotFound
	}
	if err != nil {
		r.logger.Error("failed to get booking", zap.Error(err), zap.Int("booking_id", id))
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return booking, nil
}

// ListByUser returns all bookings of a learner, soonest lesson first
func (r *bookingRepository) ListByUser(ctx context.Context, userID int) ([]models.Booking, error) {
	query := bookingSelect + `
		WHERE b.user_id = ?
		ORDER BY b.lesson_date, b.lesson_time
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to query bookings", zap.Error(err), zap.Int("user_id", userID))
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// ListByDate returns every booking on a date, ordered by slot
func (r *bookingRepository) ListByDate(ctx context.Context, date string) ([]models.Booking, error) {
	query := bookingSelect + `
		WHERE b.lesson_date = ?
		ORDER BY b.lesson_time, i.full_name
	`

	rows, err := r.db.QueryContext(ctx, query, date)
	if err != nil {
		r.logger.Error("failed to query bookings by date", zap.Error(err), zap.String("date", date))
		return nil, fmt.Errorf("failed to query bookings by date: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// ExistsActiveAtSlot reports whether a non-cancelled booking holds the slot
func (r *bookingRepository) ExistsActiveAtSlot(ctx context.Context, instructorID int, date, slot string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE instructor_id = ? AND lesson_date = ? AND lesson_time = ? AND status <> ?
		)
	`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, instructorID, date, slot, models.BookingStatusCancelled).Scan(&exists); err != nil {
		r.logger.Error("failed to check slot", zap.Error(err), zap.Int("instructor_id", instructorID))
		return false, fmt.Errorf("failed to check slot: %w", err)
	}

	return exists, nil
}

// BookedSlots returns the HH:MM slots held by non-cancelled bookings on a date
func (r *bookingRepository) BookedSlots(ctx context.Context, instructorID int, date string) ([]string, error) {
	query := `
		SELECT lesson_time FROM bookings
		WHERE instructor_id = ? AND lesson_date = ? AND status <> ?
		ORDER BY lesson_time
	`

	rows, err := r.db.QueryContext(ctx, query, instructorID, date, models.BookingStatusCancelled)
	if err != nil {
		r.logger.Error("failed to query booked slots", zap.Error(err), zap.Int("instructor_id", instructorID))
		return nil, fmt.Errorf("failed to query booked slots: %w", err)
	}
	defer rows.Close()

	slots := []string{}
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			r.logger.Error("failed to scan slot", zap.Error(err))
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return slots, nil
}

// UpdateStatus moves a booking from "from" to "to". The write only applies while the stored status is still "from".
func (r *bookingRepository) UpdateStatus(ctx context.Context, id int, from, to models.BookingStatus) error {
	query := `UPDATE bookings SET status = ? WHERE id = ? AND status = ?`

	result, err := r.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		r.logger.Error("failed to update booking status", zap.Error(err), zap.Int("booking_id", id))
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM bookings WHERE id = ?)`, id).Scan(&exists); err != nil {
		r.logger.Error("failed to check booking", zap.Error(err), zap.Int("booking_id", id))
		return fmt.Errorf("failed to check booking: %w", err)
	}
	if !exists {
		return models.ErrBookingNotFound
	}
	return models.ErrBookingStatusChanged
}

// ListConfirmedForDate returns confirmed bookings on a date joined with learner contact details
func (r *bookingRepository) ListConfirmedForDate(ctx context.Context, date string) ([]models.ReminderBooking, error) {
	query := `
		SELECT b.id, b.reference, b.lesson_date, b.lesson_time, b.lesson_type,
			i.full_name, u.email, u.full_name, u.telegram_chat_id
		FROM bookings b
		JOIN instructors i ON i.id = b.instructor_id
		JOIN users u ON u.id = b.user_id
		WHERE b.lesson_date = ? AND b.status = ?
		ORDER BY b.lesson_time
	`

	rows, err := r.db.QueryContext(ctx, query, date, models.BookingStatusConfirmed)
	if err != nil {
		r.logger.Error("failed to query reminder bookings", zap.Error(err), zap.String("date", date))
		return nil, fmt.Errorf("failed to query reminder bookings: %w", err)
	}
	defer rows.Close()

	reminders := []models.ReminderBooking{}
	for rows.Next() {
		var (
			reminder   models.ReminderBooking
			lessonDate time.Time
		)
		if err := rows.Scan(
			&reminder.BookingID,
			&reminder.Reference,
			&lessonDate,
			&reminder.LessonTime,
			&reminder.LessonType,
			&reminder.InstructorName,
			&reminder.UserEmail,
			&reminder.UserName,
			&reminder.TelegramChatID,
		); err != nil {
			r.logger.Error("failed to scan reminder booking", zap.Error(err))
			return nil, fmt.Errorf("failed to scan reminder booking: %w", err)
		}
		reminder.LessonDate = lessonDate.Format(models.DateLayout)
		reminders = append(reminders, reminder)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return reminders, nil
}

func (r *bookingRepository) collect(rows *sql.Rows) ([]models.Booking, error) {
	bookings := []models.Booking{}
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.logger.Error("failed to scan booking", zap.Error(err))
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *booking)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return bookings, nil
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var (
		booking    models.Booking
		lessonDate time.Time
	)
	err := row.Scan(
		&booking.ID,
		&booking.Reference,
		&booking.UserID,
		&booking.InstructorID,
		&booking.InstructorName,
		&lessonDate,
		&booking.LessonTime,
		&booking.LessonType,
		&booking.Status,
		&booking.Notes,
		&booking.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	booking.LessonDate = lessonDate.Format(models.DateLayout)
	return &booking, nil
}
