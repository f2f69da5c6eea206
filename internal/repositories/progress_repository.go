package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/drivingschool/backend/internal/models"
	"go.uber.org/zap"
)

type progressRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProgressRepository creates a new lesson progress repository
func NewProgressRepository(db *sql.DB, logger *zap.Logger) *progressRepository {
	return &progressRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts an empty counter for the user; an existing counter is kept
func (r *progressRepository) Create(ctx context.Context, userID, totalLessons int) error {
	query := `INSERT IGNORE INTO lesson_progress (user_id, lessons_completed, total_lessons) VALUES (?, 0, ?)`

	if _, err := r.db.ExecContext(ctx, query, userID, totalLessons); err != nil {
		r.logger.Error("failed to create progress", zap.Error(err), zap.Int("user_id", userID))
		return fmt.Errorf("failed to create progress: %w", err)
	}

	return nil
}

// GetByUserID returns the lesson counter of a user
func (r *progressRepository) GetByUserID(ctx context.Context, userID int) (*models.LessonProgress, error) {
	query := `
		SELECT user_id, lessons_completed, total_lessons, updated_at
		FROM lesson_progress
		WHERE user_id = ?
	`

	progress := &models.LessonProgress{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&progress.UserID,
		&progress.LessonsCompleted,
		&progress.TotalLessons,
		&progress.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrProgressNotFound
	}
	if err != nil {
		r.logger.Error("failed to get progress", zap.Error(err), zap.Int("user_id", userID))
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	progress.ComputePercent()
	return progress, nil
}

// IncrementCompleted adds one completed lesson, creating the counter when missing
func (r *progressRepository) IncrementCompleted(ctx context.Context, userID int) error {
	query := `
		INSERT INTO lesson_progress (user_id, lessons_completed, total_lessons)
		VALUES (?, 1, ?)
		ON DUPLICATE KEY UPDATE lessons_completed = lessons_completed + 1
	`

	if _, err := r.db.ExecContext(ctx, query, userID, models.DefaultTotalLessons); err != nil {
		r.logger.Error("failed to increment progress", zap.Error(err), zap.Int("user_id", userID))
		return fmt.Errorf("failed to increment progress: %w", err)
	}

	return nil
}

// SetTotalLessons changes the lesson target, creating the counter when missing
func (r *progressRepository) SetTotalLessons(ctx context.Context, userID, totalLessons int) error {
	query := `
		INSERT INTO lesson_progress (user_id, lessons_completed, total_lessons)
		VALUES (?, 0, ?)
		ON DUPLICATE KEY UPDATE total_lessons = VALUES(total_lessons)
	`

	if _, err := r.db.ExecContext(ctx, query, userID, totalLessons); err != nil {
		r.logger.Error("failed to set total lessons", zap.Error(err), zap.Int("user_id", userID))
		return fmt.Errorf("failed to set total lessons: %w", err)
	}

	return nil
}
