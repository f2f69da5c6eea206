package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/drivingschool/backend/internal/models"
	"go.uber.org/zap"
)

type reviewRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *sql.DB, logger *zap.Logger) *reviewRepository {
	return &reviewRepository{
		db:     db,
		logger: logger,
	}
}

const reviewSelect = `
		SELECT r.id, r.instructor_id, r.user_id, u.full_name, r.rating, r.comment, r.created_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
`

// ListByInstructor returns a page of reviews for an instructor, newest first
func (r *reviewRepository) ListByInstructor(ctx context.Context, instructorID, limit, offset int) ([]models.Review, error) {
	query := reviewSelect + `
		WHERE r.instructor_id = ?
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, instructorID, limit, offset)
	if err != nil {
		r.logger.Error("failed to query reviews", zap.Error(err), zap.Int("instructor_id", instructorID))
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// ListRecent returns the newest reviews across all instructors
func (r *reviewRepository) ListRecent(ctx context.Context, limit int) ([]models.Review, error) {
	query := reviewSelect + `
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		r.logger.Error("failed to query recent reviews", zap.Error(err))
		return nil, fmt.Errorf("failed to query recent reviews: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// Create inserts a new review
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO reviews (instructor_id, user_id, rating, comment)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, review.InstructorID, review.UserID, review.Rating, review.Comment)
	if err != nil {
		r.logger.Error("failed to create review", zap.Error(err), zap.Int("user_id", review.UserID))
		return fmt.Errorf("failed to create review: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	review.ID = int(id)
	return nil
}

// HasCompletedBooking reports whether the user finished at least one lesson with the instructor
func (r *reviewRepository) HasCompletedBooking(ctx context.Context, userID, instructorID int) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE user_id = ? AND instructor_id = ? AND status = ?
		)
	`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, instructorID, models.BookingStatusCompleted).Scan(&exists); err != nil {
		r.logger.Error("failed to check completed booking", zap.Error(err), zap.Int("user_id", userID))
		return false, fmt.Errorf("failed to check completed booking: %w", err)
	}

	return exists, nil
}

func (r *reviewRepository) collect(rows *sql.Rows) ([]models.Review, error) {
	reviews := []models.Review{}
	for rows.Next() {
		var review models.Review
		if err := rows.Scan(
			&review.ID,
			&review.InstructorID,
			&review.UserID,
			&review.AuthorName,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
		); err != nil {
			r.logger.Error("failed to scan review", zap.Error(err))
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return reviews, nil
}
